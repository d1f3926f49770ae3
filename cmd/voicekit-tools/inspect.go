package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/voicekit/internal/archive"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <path.vvm>",
		Short: "Print a packed .vvm archive's speaker metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			model, err := archive.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %q: %w", args[0], err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(model.Metas)
		},
	}

	return cmd
}
