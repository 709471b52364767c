package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opslog/relay/relay"
	"github.com/opslog/relay/relay/connectors"
	"github.com/opslog/relay/relay/registry"
)

import (
	// We need to import this so that the package wide init() functions of
	// every in-tree connector get called.
	_ "github.com/opslog/relay/relay/connectors/all"
)

var (
	logger *log.Logger
)

// init() function for main package
func init() {

	// Setup logger
	logger = log.New()

	formatter := relay.MakeConnectorLogFormatter("Relay", "main")
	logger.SetFormatter(&formatter)
	logger.SetOutput(os.Stdout)

	registry.RegisterPrometheusMetrics()
}

// registerConnectors loads every in-tree connector descriptor into the host
// catalog. A single invalid descriptor aborts startup, nothing is partially
// registered.
func registerConnectors(catalog *registry.Registry) error {
	for _, id := range connectors.IDs() {
		desc, err := connectors.DescriptorByID(id)
		if err != nil {
			return err
		}
		if err := catalog.Register(desc); err != nil {
			return fmt.Errorf("registerConnectors(): %w", err)
		}
		logger.Infof("Registered connector %s", desc)
	}
	return nil
}

func makeRelayCmd() *cobra.Command {
	cfg := &relay.Config{}
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "relay manages log-forwarding connector descriptors",
		Long:  "relay loads, validates and catalogs the connector descriptors of the log-forwarding platform, and dry-runs operator configuration against them.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// From docs:
			// BindEnv takes one or more parameters. The first parameter is
			// the key name, the rest are the name of the environment
			// variables to bind to this key.
			if err := viper.BindEnv("data-dir", "RELAY_DATA_DIR"); err != nil {
				return err
			}
			cfg.Flags = cmd.Flags()
			if !cfg.Flags.Changed("data-dir") && viper.IsSet("data-dir") {
				cfg.DataDir = viper.GetString("data-dir")
			}
			return registerConnectors(registry.Default())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&cfg.DataDir, "data-dir", "d", "", "path to the relay data directory")

	cmd.AddCommand(makeListCmd())
	cmd.AddCommand(makeValidateCmd())
	cmd.AddCommand(makeCheckConfigCmd(cfg))

	return cmd
}

func main() {
	if err := makeRelayCmd().Execute(); err != nil {
		logger.WithError(err).Error("exiting")
		os.Exit(1)
	}
	os.Exit(0)
}
