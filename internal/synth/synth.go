// Package synth implements the Synthesizer Facade (§4.6): the single
// public entry point composing the Model Registry, Text-Feature
// Builder, Prosody Refiner, and Waveform Renderer behind the
// load_voice_model/create_accent_phrases/audio_query/synthesis/tts
// operation set.
package synth

import (
	"context"

	"github.com/example/voicekit/internal/accent"
	"github.com/example/voicekit/internal/archive"
	"github.com/example/voicekit/internal/inference"
	"github.com/example/voicekit/internal/jtalk"
	"github.com/example/voicekit/internal/phrase"
	"github.com/example/voicekit/internal/prosody"
	"github.com/example/voicekit/internal/registry"
	"github.com/example/voicekit/internal/render"
	"github.com/example/voicekit/internal/voicekiterr"

	"github.com/google/uuid"
)

// AccelerationMode selects whether the Inference Core runs on GPU.
type AccelerationMode int

const (
	AccelerationAuto AccelerationMode = iota
	AccelerationCPU
	AccelerationGPU
)

// GPUProbe is the external "SupportedDevices" collaborator (§9): a
// backend reporting which GPU execution providers are actually usable
// on this machine. Failures are surfaced as GetSupportedDevices, never
// silently downgraded to CPU.
type GPUProbe interface {
	SupportedDevices(ctx context.Context) (cuda, dml bool, err error)
}

// noGPUProbe always reports no GPU devices available; the default when
// the caller wires no probe, matching a CPU-only build.
type noGPUProbe struct{}

func (noGPUProbe) SupportedDevices(ctx context.Context) (bool, bool, error) {
	return false, false, nil
}

// modelRegistry is the subset of *registry.Registry the Synthesizer
// depends on, narrowed to an interface so tests can substitute a fake
// that never opens a real ONNX Runtime session.
type modelRegistry interface {
	Load(model *archive.VoiceModel) error
	Unload(id uuid.UUID) error
	IsLoaded(id uuid.UUID) bool
	IsStyleLoaded(sid registry.StyleID) bool
	Metas() []archive.SpeakerMeta
	Resolve(sid registry.StyleID) (inference.Sessions, int, error)
}

type options struct {
	accelerationMode AccelerationMode
	cpuNumThreads    int
	loadAllModels    bool
	gpuProbe         GPUProbe
	libraryPath      string
	apiVersion       uint32
	registryOverride modelRegistry
}

func defaultOptions() options {
	return options{
		accelerationMode: AccelerationAuto,
		cpuNumThreads:    0,
		loadAllModels:    false,
		gpuProbe:         noGPUProbe{},
	}
}

// Option configures New.
type Option func(*options)

// WithAccelerationMode sets acceleration_mode (default Auto).
func WithAccelerationMode(mode AccelerationMode) Option {
	return func(o *options) { o.accelerationMode = mode }
}

// WithCPUNumThreads sets cpu_num_threads; 0 means "library default".
func WithCPUNumThreads(n int) Option {
	return func(o *options) { o.cpuNumThreads = n }
}

// WithLoadAllModels sets the load_all_models directive. voicekit itself
// does not search any default path; the caller (cmd/voicekit) is the
// collaborator responsible for loading every discovered model when
// this is true, so that Metas() reflects them afterward (§4.6).
func WithLoadAllModels(v bool) Option {
	return func(o *options) { o.loadAllModels = v }
}

// WithGPUProbe overrides the SupportedDevices collaborator used to
// resolve AccelerationAuto.
func WithGPUProbe(p GPUProbe) Option {
	return func(o *options) { o.gpuProbe = p }
}

// WithONNXLibraryPath forwards an explicit ONNX Runtime shared-library
// path to every session set the registry creates.
func WithONNXLibraryPath(path string) Option {
	return func(o *options) { o.libraryPath = path }
}

// WithONNXAPIVersion forwards an expected ORT API version to every
// session set the registry creates.
func WithONNXAPIVersion(v uint32) Option {
	return func(o *options) { o.apiVersion = v }
}

// withRegistry overrides the model registry with r, bypassing the
// real *registry.Registry's ONNX session construction. Unexported:
// only this package's own tests use it.
func withRegistry(r modelRegistry) Option {
	return func(o *options) { o.registryOverride = r }
}

// Synthesizer is the facade of §3's "One per process/session" row: it
// owns the Inference Core (via its Registry) and shares the text
// analyzer; use_gpu is immutable after construction.
type Synthesizer struct {
	analyzer      jtalk.Analyzer
	registry      modelRegistry
	useGPU        bool
	cpuNumThreads int
	loadAllModels bool
}

// New resolves GPU availability and constructs a Synthesizer per
// §4.6's InitializeOptions contract. analyzer may be nil; operations
// that require it (create_accent_phrases, with or without kana, and so
// AudioQuery and Tts) then fail with NotLoadedOpenjtalkDict, per §4.3.
func New(ctx context.Context, analyzer jtalk.Analyzer, opts ...Option) (*Synthesizer, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	useGPU, err := resolveGPU(ctx, o.accelerationMode, o.gpuProbe)
	if err != nil {
		return nil, err
	}

	reg := o.registryOverride
	if reg == nil {
		reg = registry.New(inference.RunnerConfig{
			LibraryPath: o.libraryPath,
			APIVersion:  o.apiVersion,
		})
	}

	return &Synthesizer{
		analyzer:      analyzer,
		registry:      reg,
		useGPU:        useGPU,
		cpuNumThreads: o.cpuNumThreads,
		loadAllModels: o.loadAllModels,
	}, nil
}

// resolveGPU implements §4.6's Auto/Cpu/Gpu rule: Auto consults the
// probe and enables GPU iff either backend flag is true; Cpu is always
// false; Gpu is always true, independent of the probe.
func resolveGPU(ctx context.Context, mode AccelerationMode, probe GPUProbe) (bool, error) {
	switch mode {
	case AccelerationCPU:
		return false, nil
	case AccelerationGPU:
		return true, nil
	default:
		cuda, dml, err := probe.SupportedDevices(ctx)
		if err != nil {
			return false, voicekiterr.Wrap(voicekiterr.KindGetSupportedDevices, err, "probe GPU devices")
		}

		return cuda || dml, nil
	}
}

// IsGPUMode reports whether the Inference Core was constructed with
// GPU acceleration enabled. Immutable for the Synthesizer's lifetime.
func (s *Synthesizer) IsGPUMode() bool { return s.useGPU }

// CPUNumThreads reports the configured cpu_num_threads (0 = library
// default).
func (s *Synthesizer) CPUNumThreads() int { return s.cpuNumThreads }

// LoadAllModels reports the load_all_models directive this Synthesizer
// was constructed with.
func (s *Synthesizer) LoadAllModels() bool { return s.loadAllModels }

// LoadVoiceModel loads model into the registry. Absent → Loaded; an
// already-loaded id is an error, never a no-op (§4.6 state machine).
func (s *Synthesizer) LoadVoiceModel(model *archive.VoiceModel) error {
	return s.registry.Load(model)
}

// UnloadVoiceModel transitions id back to Absent.
func (s *Synthesizer) UnloadVoiceModel(id uuid.UUID) error {
	return s.registry.Unload(id)
}

// IsLoaded reports whether model id is currently loaded.
func (s *Synthesizer) IsLoaded(id uuid.UUID) bool { return s.registry.IsLoaded(id) }

// IsStyleLoaded reports whether style sid is owned by any loaded model.
func (s *Synthesizer) IsStyleLoaded(sid registry.StyleID) bool {
	return s.registry.IsStyleLoaded(sid)
}

// Metas returns the speaker metadata of every currently loaded model.
func (s *Synthesizer) Metas() []archive.SpeakerMeta { return s.registry.Metas() }

// CreateAccentPhrases implements §4.3's create_accent_phrases: the
// shared analyzer is required in both modes; kana text is parsed
// directly, otherwise the analyzer's labels are used. Either way the result is run through replace_mora_data against the
// style's models before being returned.
func (s *Synthesizer) CreateAccentPhrases(ctx context.Context, text string, sid registry.StyleID, useKana bool) ([]phrase.AccentPhrase, error) {
	phrases, err := accent.CreateAccentPhrases(ctx, s.analyzer, text, useKana)
	if err != nil {
		return nil, err
	}

	sessions, _, err := s.registry.Resolve(sid)
	if err != nil {
		return nil, err
	}

	return prosody.ReplaceMoraData(ctx, sessions, phrases)
}

// ReplacePhonemeLength runs replace_phoneme_length against style sid.
func (s *Synthesizer) ReplacePhonemeLength(ctx context.Context, phrases []phrase.AccentPhrase, sid registry.StyleID) ([]phrase.AccentPhrase, error) {
	sessions, _, err := s.registry.Resolve(sid)
	if err != nil {
		return nil, err
	}

	return prosody.ReplacePhonemeLength(ctx, sessions, phrases)
}

// ReplaceMoraPitch runs replace_mora_pitch against style sid.
func (s *Synthesizer) ReplaceMoraPitch(ctx context.Context, phrases []phrase.AccentPhrase, sid registry.StyleID) ([]phrase.AccentPhrase, error) {
	sessions, _, err := s.registry.Resolve(sid)
	if err != nil {
		return nil, err
	}

	return prosody.ReplaceMoraPitch(ctx, sessions, phrases)
}

// ReplaceMoraData runs replace_mora_data (length then pitch) against
// style sid.
func (s *Synthesizer) ReplaceMoraData(ctx context.Context, phrases []phrase.AccentPhrase, sid registry.StyleID) ([]phrase.AccentPhrase, error) {
	sessions, _, err := s.registry.Resolve(sid)
	if err != nil {
		return nil, err
	}

	return prosody.ReplaceMoraData(ctx, sessions, phrases)
}

// AudioQuery builds a ready-to-synthesize AudioQuery from text: accent
// phrases via CreateAccentPhrases, wrapped with the §3 default scales
// and silences. If useKana is true the resulting query also carries
// the original kana string, for AudioQueryOptions{kana} round-tripping.
func (s *Synthesizer) AudioQuery(ctx context.Context, text string, sid registry.StyleID, useKana bool) (phrase.AudioQuery, error) {
	phrases, err := s.CreateAccentPhrases(ctx, text, sid, useKana)
	if err != nil {
		return phrase.AudioQuery{}, err
	}

	var kana *string
	if useKana {
		k := text
		kana = &k
	}

	return phrase.NewAudioQuery(phrases, kana), nil
}

// Synthesis implements synthesis_wave_format (§4.5): renders query
// against style sid into raw WAV bytes.
func (s *Synthesizer) Synthesis(ctx context.Context, query phrase.AudioQuery, sid registry.StyleID, enableInterrogativeUpspeak bool) ([]byte, error) {
	sessions, _, err := s.registry.Resolve(sid)
	if err != nil {
		return nil, err
	}

	return render.SynthesisWaveFormat(ctx, sessions, query, enableInterrogativeUpspeak)
}

// Tts implements tts(text, style_id, TtsOptions) = synthesis(audio_query(text, …), …)
// (§4.6): pure composition, no new semantics. enableInterrogativeUpspeak
// is passed through to Synthesis unchanged; the CLI flag and the HTTP
// handlers default it to true.
func (s *Synthesizer) Tts(ctx context.Context, text string, sid registry.StyleID, useKana bool, enableInterrogativeUpspeak bool) ([]byte, error) {
	query, err := s.AudioQuery(ctx, text, sid, useKana)
	if err != nil {
		return nil, err
	}

	return s.Synthesis(ctx, query, sid, enableInterrogativeUpspeak)
}
