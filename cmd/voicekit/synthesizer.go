package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/voicekit/internal/archive"
	"github.com/example/voicekit/internal/config"
	"github.com/example/voicekit/internal/jtalk"
	"github.com/example/voicekit/internal/onnxrt"
	"github.com/example/voicekit/internal/synth"
)

// buildSynthesizer constructs a Synthesizer from cfg: it resolves the
// ONNX Runtime library, the acceleration mode, and (when
// load_all_models is set) loads every .vvm archive under
// cfg.Paths.ModelsDir.
func buildSynthesizer(ctx context.Context, cfg config.Config) (*synth.Synthesizer, error) {
	mode, err := config.NormalizeAccelerationMode(cfg.Runtime.AccelerationMode)
	if err != nil {
		return nil, err
	}

	opts := []synth.Option{
		synth.WithAccelerationMode(accelerationModeFromString(mode)),
		synth.WithCPUNumThreads(cfg.Runtime.CPUNumThreads),
		synth.WithLoadAllModels(cfg.Runtime.LoadAllModels),
	}

	if info, err := onnxrt.Detect(cfg.Runtime); err == nil {
		opts = append(opts, synth.WithONNXLibraryPath(info.LibraryPath))
	}
	if cfg.Runtime.ORTAPIVersion != 0 {
		opts = append(opts, synth.WithONNXAPIVersion(cfg.Runtime.ORTAPIVersion))
	}

	s, err := synth.New(ctx, jtalk.NewRuleBasedAnalyzer(), opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize synthesizer: %w", err)
	}

	if cfg.Runtime.LoadAllModels {
		if err := loadAllVoiceModels(s, cfg.Paths.ModelsDir); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func accelerationModeFromString(mode string) synth.AccelerationMode {
	switch mode {
	case config.AccelerationCPU:
		return synth.AccelerationCPU
	case config.AccelerationGPU:
		return synth.AccelerationGPU
	default:
		return synth.AccelerationAuto
	}
}

// loadAllVoiceModels opens and loads every .vvm archive directly under
// dir. A dir that does not exist is not an error here; doctor reports
// it separately so serve can still start (and immediately fail health
// checks) rather than refusing to boot.
func loadAllVoiceModels(s *synth.Synthesizer, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read models directory %q: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".vvm") {
			continue
		}

		path := filepath.Join(dir, entry.Name())

		model, err := archive.Open(path)
		if err != nil {
			return fmt.Errorf("open voice model %q: %w", path, err)
		}

		if err := s.LoadVoiceModel(model); err != nil {
			return fmt.Errorf("load voice model %q: %w", path, err)
		}
	}

	return nil
}
