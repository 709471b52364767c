package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opslog/relay/relay/connectors"
)

func makeListCmd() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "list",
		Short: "lists all connectors available to relay",
		Long:  "lists all connectors available to relay, or prints the full descriptor of the one named",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListCmd(os.Stdout, args)
		},
		SilenceUsage: true,
		// Silence errors because our logger will catch and print any errors
		SilenceErrors: true,
	}

	return cmd
}

func runListCmd(out io.Writer, listArgs []string) error {
	if len(listArgs) == 0 {
		output, err := outputAll()
		if err != nil {
			return err
		}

		fmt.Fprint(out, output)
		return nil
	}

	connectorID := listArgs[0]
	desc, err := connectors.DescriptorByID(connectorID)
	if err != nil {
		return fmt.Errorf("no connector by id: %s", connectorID)
	}

	text, err := desc.Marshal()
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(text))
	return nil
}

func outputAll() (string, error) {

	var sb strings.Builder

	_, err := fmt.Fprint(&sb, "connectors:\n")
	if err != nil {
		return "", err
	}

	for _, id := range connectors.IDs() {
		desc, err := connectors.DescriptorByID(id)
		// belt and suspenders
		if err != nil {
			return "", err
		}
		_, err = fmt.Fprintf(&sb, "  %s (%s) - %s\n", id, desc.Version, desc.Name)
		if err != nil {
			return "", err
		}
	}

	return sb.String(), nil
}
