package main

import (
	"fmt"

	"github.com/example/voicekit/internal/doctor"
	"github.com/example/voicekit/internal/onnxrt"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	var skipONNXRuntime bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run environment preflight checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			var loadedVoices []string
			engine, buildErr := buildSynthesizer(cmd.Context(), cfg)
			if buildErr == nil {
				for _, meta := range engine.Metas() {
					loadedVoices = append(loadedVoices, meta.Name)
				}
			}

			dcfg := doctor.Config{
				ONNXRuntimeVersion: func() (string, error) {
					info, err := onnxrt.Detect(cfg.Runtime)
					if err != nil {
						return "", err
					}
					return info.Version, nil
				},
				SkipONNXRuntime: skipONNXRuntime,
				ModelsDir:       cfg.Paths.ModelsDir,
				LoadedVoices:    loadedVoices,
			}

			result := doctor.Run(dcfg, cmd.OutOrStdout())
			if buildErr != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s synthesizer: %v\n", doctor.FailMark, buildErr)
				result.AddFailure(fmt.Sprintf("synthesizer: %v", buildErr))
			}

			if result.Failed() {
				return fmt.Errorf("doctor: %d check(s) failed", len(result.Failures()))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&skipONNXRuntime, "skip-onnxruntime", false, "Skip the ONNX Runtime library check")

	return cmd
}
