package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/example/voicekit/internal/archive"
	"github.com/spf13/cobra"
)

func newModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Voice model archive commands",
	}

	cmd.AddCommand(newModelListCmd())
	cmd.AddCommand(newModelInspectCmd())

	return cmd
}

// newModelListCmd lists every .vvm archive under the configured models
// directory without loading it into an inference session.
func newModelListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List .vvm archives under the configured models directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			entries, err := os.ReadDir(cfg.Paths.ModelsDir)
			if err != nil {
				return fmt.Errorf("read models directory %q: %w", cfg.Paths.ModelsDir, err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILE\tSPEAKER\tSTYLES")

			for _, entry := range entries {
				if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".vvm") {
					continue
				}

				path := filepath.Join(cfg.Paths.ModelsDir, entry.Name())

				model, err := archive.Open(path)
				if err != nil {
					fmt.Fprintln(tw, entry.Name()+"\t<error>\t"+err.Error())
					continue
				}

				for _, meta := range model.Metas {
					names := make([]string, 0, len(meta.Styles))
					for _, s := range meta.Styles {
						names = append(names, s.Name)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", entry.Name(), meta.Name, strings.Join(names, ", "))
				}
			}

			return tw.Flush()
		},
	}

	return cmd
}

// newModelInspectCmd opens a single .vvm archive and prints its
// speaker metadata as JSON, without registering it into any session.
func newModelInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <path>",
		Short: "Print a .vvm archive's speaker metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := archive.Open(args[0])
			if err != nil {
				return err
			}

			return writeJSONOutput("-", model.Metas)
		},
	}

	return cmd
}
