package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/opslog/relay/relay"
)

func makeValidateCmd() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "validate <descriptor-file>",
		Short: "validates a connector descriptor file",
		Long:  "validates a connector descriptor file the same way the host does at registration time, and reports the violated constraint if it would be rejected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateCmd(os.Stdout, args[0])
		},
		SilenceUsage: true,
	}

	return cmd
}

func runValidateCmd(out io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read descriptor file: %w", err)
	}

	desc, err := relay.ParseDescriptor(data)
	if err != nil {
		return fmt.Errorf("descriptor rejected: %w", err)
	}

	fmt.Fprintf(out, "descriptor %s is valid\n", desc)
	if mandatory := desc.MandatoryFields(); len(mandatory) > 0 {
		fmt.Fprint(out, "operator must supply before activation:\n")
		for _, field := range mandatory {
			fmt.Fprintf(out, "  %s (%s) - %s\n", field.Key, field.Type, field.Label)
		}
	}
	return nil
}
