// Package doctor provides environment preflight checks for voicekit:
// is an ONNX Runtime library resolvable, does the configured voice
// model directory exist, and did at least one voice model load.
package doctor

import (
	"fmt"
	"io"
	"os"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// VersionFunc returns a version string or an error if the component is unavailable.
type VersionFunc func() (string, error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// ONNXRuntimeVersion resolves and reports the ONNX Runtime shared
	// library's version (see internal/onnxrt's library resolution).
	ONNXRuntimeVersion VersionFunc
	// SkipONNXRuntime skips the ONNX Runtime check.
	SkipONNXRuntime bool
	// ModelsDir is the directory voice model archives are loaded from.
	ModelsDir string
	// LoadedVoices is the list of speaker names successfully loaded at
	// startup (§4.6 Metas()). An empty slice is reported as a failure:
	// a synthesizer with no loaded voice can't serve any style.
	LoadedVoices []string
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- ONNX Runtime library ----------------------------------------------
	if cfg.SkipONNXRuntime {
		fmt.Fprintf(w, "%s onnxruntime library: skipped\n", PassMark)
	} else {
		ver, err := cfg.ONNXRuntimeVersion()
		if err != nil {
			res.fail(fmt.Sprintf("onnxruntime library: %v", err))
			fmt.Fprintf(w, "%s onnxruntime library: not found (%v)\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s onnxruntime library: %s\n", PassMark, ver)
		}
	}

	// ---- models directory ---------------------------------------------------
	if cfg.ModelsDir == "" {
		res.fail("models directory: not configured")
		fmt.Fprintf(w, "%s models directory: not configured\n", FailMark)
	} else if info, err := os.Stat(cfg.ModelsDir); err != nil {
		res.fail(fmt.Sprintf("models directory %q: %v", cfg.ModelsDir, err))
		fmt.Fprintf(w, "%s models directory %s: not found\n", FailMark, cfg.ModelsDir)
	} else if !info.IsDir() {
		res.fail(fmt.Sprintf("models directory %q: not a directory", cfg.ModelsDir))
		fmt.Fprintf(w, "%s models directory %s: not a directory\n", FailMark, cfg.ModelsDir)
	} else {
		fmt.Fprintf(w, "%s models directory: %s\n", PassMark, cfg.ModelsDir)
	}

	// ---- loaded voices ------------------------------------------------------
	if len(cfg.LoadedVoices) == 0 {
		res.fail("loaded voices: none")
		fmt.Fprintf(w, "%s loaded voices: none\n", FailMark)
	} else {
		for _, name := range cfg.LoadedVoices {
			fmt.Fprintf(w, "%s loaded voice: %s\n", PassMark, name)
		}
	}

	return res
}
