package relay

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// Config holds host level settings shared by the relay tooling.
type Config struct {
	Flags *pflag.FlagSet
	// DataDir is where per-tenant configuration records are stored.
	DataDir string
}

func (cfg *Config) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Data Directory: %s ", cfg.DataDir)

	return sb.String()
}

// Valid validates a supplied configuration
func (cfg *Config) Valid() error {

	if cfg.DataDir == "" {
		return fmt.Errorf("supplied data directory was empty")
	}

	if info, err := os.Stat(cfg.DataDir); err != nil || !info.IsDir() {
		return fmt.Errorf("supplied data directory (%s) was not valid", cfg.DataDir)
	}

	return nil
}
