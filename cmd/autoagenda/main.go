package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "autoagenda",
		Short:        "Turn free text into tasks and events and serve the resulting agenda",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("AUTOAGENDA_CONFIG"), "path to a YAML config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newResolveCmd(&configPath),
		newAgendaCmd(&configPath),
	)
	return root
}
