package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/opslog/relay/relay"
	"github.com/opslog/relay/relay/record"
)

func makeCheckConfigCmd(cfg *relay.Config) *cobra.Command {
	var tenant string
	var save bool

	cmd := &cobra.Command{
		Use:   "check-config <descriptor-file> <values-file>",
		Short: "dry-runs connector activation against operator supplied values",
		Long: "builds a configuration record from a values file (a flat yaml mapping of field key to value) and runs the activation check, " +
			"reporting every mandatory field still missing a value. Secrets are masked in all output. " +
			"With --save the record is persisted to the data directory, password values sealed with the key from RELAY_SEAL_KEY.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckConfigCmd(os.Stdout, cfg, args[0], args[1], tenant, save)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&tenant, "tenant", "default", "tenant the configuration record belongs to")
	cmd.Flags().BoolVar(&save, "save", false, "persist the record to the data directory after a successful activation check")

	return cmd
}

func runCheckConfigCmd(out io.Writer, cfg *relay.Config, descPath string, valuesPath string, tenant string, save bool) error {
	data, err := os.ReadFile(descPath)
	if err != nil {
		return fmt.Errorf("could not read descriptor file: %w", err)
	}
	desc, err := relay.ParseDescriptor(data)
	if err != nil {
		return fmt.Errorf("descriptor rejected: %w", err)
	}
	// Whatever gets logged from here on, password values stay masked.
	logger.AddHook(relay.MakeSecretScrubHook(desc))

	valuesData, err := os.ReadFile(valuesPath)
	if err != nil {
		return fmt.Errorf("could not read values file: %w", err)
	}
	var values map[string]string
	if err := yaml.Unmarshal(valuesData, &values); err != nil {
		return fmt.Errorf("values file (%s) was mal-formed yaml: %w", valuesPath, err)
	}

	rec := record.New(desc, tenant)
	if err := rec.Apply(values); err != nil {
		return err
	}

	if err := rec.Activate(); err != nil {
		return fmt.Errorf("activation check failed: %w", err)
	}
	fmt.Fprintf(out, "record for %s activates cleanly\n", desc)

	text, err := yaml.Marshal(rec)
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(text))

	if !save {
		return nil
	}

	if err := cfg.Valid(); err != nil {
		return err
	}
	sealKey, err := readSealKey()
	if err != nil {
		return err
	}
	store, err := record.MakeStore(cfg.DataDir, sealKey)
	if err != nil {
		return err
	}
	if err := store.Save(rec); err != nil {
		return err
	}
	logger.Infof("Saved record %s", rec.ID())
	return nil
}

// readSealKey reads the base64 encoded record sealing key from the
// RELAY_SEAL_KEY environment variable.
func readSealKey() ([record.SealKeySize]byte, error) {
	var key [record.SealKeySize]byte

	if err := viper.BindEnv("seal-key", "RELAY_SEAL_KEY"); err != nil {
		return key, err
	}
	encoded := viper.GetString("seal-key")
	if encoded == "" {
		return key, fmt.Errorf("RELAY_SEAL_KEY is not set, cannot seal secrets at rest")
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return key, fmt.Errorf("RELAY_SEAL_KEY was not valid base64: %w", err)
	}
	if len(raw) != record.SealKeySize {
		return key, fmt.Errorf("RELAY_SEAL_KEY must decode to %d bytes, got %d", record.SealKeySize, len(raw))
	}
	copy(key[:], raw)
	return key, nil
}
