package main

import (
	"archive/zip"
	"fmt"
	"io"
	"os"

	"github.com/example/voicekit/internal/inference"
	"github.com/spf13/cobra"
)

// PackOptions describes the inputs needed to build a .vvm archive.
type PackOptions struct {
	MetadataPath string
	GraphPaths   map[string]string // inference.GraphNames entry -> source .onnx path
	OutPath      string
}

// Pack writes a .vvm archive (a zip containing metadata.json plus one
// <name>.onnx entry per inference.GraphNames) to opts.OutPath.
func Pack(opts PackOptions) error {
	for _, name := range inference.GraphNames {
		if _, ok := opts.GraphPaths[name]; !ok {
			return fmt.Errorf("missing graph %q (required: %v)", name, inference.GraphNames)
		}
	}

	out, err := os.Create(opts.OutPath)
	if err != nil {
		return fmt.Errorf("create %q: %w", opts.OutPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	if err := copyFileIntoZip(zw, "metadata.json", opts.MetadataPath); err != nil {
		_ = zw.Close()
		return err
	}

	for _, name := range inference.GraphNames {
		if err := copyFileIntoZip(zw, name+".onnx", opts.GraphPaths[name]); err != nil {
			_ = zw.Close()
			return err
		}
	}

	return zw.Close()
}

func copyFileIntoZip(zw *zip.Writer, entryName, srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open %q: %w", srcPath, err)
	}
	defer src.Close()

	w, err := zw.Create(entryName)
	if err != nil {
		return fmt.Errorf("create zip entry %q: %w", entryName, err)
	}

	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("write zip entry %q: %w", entryName, err)
	}

	return nil
}

func newPackCmd() *cobra.Command {
	var metadataPath string
	var durationPath string
	var intonationPath string
	var decodePath string
	var outPath string

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Pack ONNX graphs and metadata.json into a .vvm archive",
		RunE: func(_ *cobra.Command, _ []string) error {
			return Pack(PackOptions{
				MetadataPath: metadataPath,
				GraphPaths: map[string]string{
					"duration":   durationPath,
					"intonation": intonationPath,
					"decode":     decodePath,
				},
				OutPath: outPath,
			})
		},
	}

	cmd.Flags().StringVar(&metadataPath, "metadata", "metadata.json", "Path to the speaker/style metadata.json")
	cmd.Flags().StringVar(&durationPath, "duration", "duration.onnx", "Path to the duration-prediction ONNX graph")
	cmd.Flags().StringVar(&intonationPath, "intonation", "intonation.onnx", "Path to the intonation-prediction ONNX graph")
	cmd.Flags().StringVar(&decodePath, "decode", "decode.onnx", "Path to the waveform-decode ONNX graph")
	cmd.Flags().StringVar(&outPath, "out", "voice.vvm", "Output .vvm archive path")

	return cmd
}
