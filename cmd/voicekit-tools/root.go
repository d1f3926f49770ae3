package main

import "github.com/spf13/cobra"

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voicekit-tools",
		Short: "Voice model archive packing tools",
	}

	cmd.AddCommand(newPackCmd())
	cmd.AddCommand(newInspectCmd())

	return cmd
}
