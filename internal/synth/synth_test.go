package synth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/example/voicekit/internal/archive"
	"github.com/example/voicekit/internal/inference"
	"github.com/example/voicekit/internal/jtalk"
	"github.com/example/voicekit/internal/phrase"
	"github.com/example/voicekit/internal/registry"
	"github.com/example/voicekit/internal/voicekiterr"
)

// fakeSessions is a no-op Sessions implementation: predict_duration
// and predict_intonation echo back zero-filled vectors of the right
// length, decode returns silence.
type fakeSessions struct{}

func (fakeSessions) PredictDuration(ctx context.Context, ph []int64) ([]float32, error) {
	out := make([]float32, len(ph))
	for i := range out {
		out[i] = 0.05
	}
	return out, nil
}

func (fakeSessions) PredictIntonation(ctx context.Context, in inference.IntonationInputs) ([]float32, error) {
	return make([]float32, in.Length), nil
}

func (fakeSessions) Decode(ctx context.Context, length, phonemeSize int, f0, ph []float32) ([]float32, error) {
	return make([]float32, length*inference.SamplesPerFrame), nil
}

func (fakeSessions) Close() {}

type fakeProbe struct {
	cuda, dml bool
	err       error
}

func (p fakeProbe) SupportedDevices(ctx context.Context) (bool, bool, error) {
	return p.cuda, p.dml, p.err
}

// fakeRegistry is a minimal modelRegistry backed by a single style,
// so Synthesizer can be exercised end-to-end without a real ONNX
// Runtime session.
type fakeRegistry struct {
	styleID uint32
	loaded  bool
	metas   []archive.SpeakerMeta
}

func (r *fakeRegistry) Load(model *archive.VoiceModel) error {
	if r.loaded {
		return voicekiterr.New(voicekiterr.KindLoadModelAlreadyLoaded, "model %s already loaded", model.ID)
	}
	r.loaded = true
	r.metas = model.Metas
	return nil
}

func (r *fakeRegistry) Unload(id uuid.UUID) error {
	r.loaded = false
	return nil
}

func (r *fakeRegistry) IsLoaded(id uuid.UUID) bool { return r.loaded }

func (r *fakeRegistry) IsStyleLoaded(sid registry.StyleID) bool { return r.loaded && uint32(sid) == r.styleID }

func (r *fakeRegistry) Metas() []archive.SpeakerMeta { return r.metas }

func (r *fakeRegistry) Resolve(sid registry.StyleID) (inference.Sessions, int, error) {
	if !r.loaded || uint32(sid) != r.styleID {
		return nil, 0, voicekiterr.New(voicekiterr.KindInvalidStyleID, "style %d is not loaded", sid)
	}
	return fakeSessions{}, 0, nil
}

func newLoadedSynthWithFake(t *testing.T, styleID uint32) (*Synthesizer, uuid.UUID) {
	t.Helper()

	reg := &fakeRegistry{styleID: styleID}

	s, err := New(context.Background(), stubAnalyzer{}, WithAccelerationMode(AccelerationCPU), withRegistry(reg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	modelID := uuid.New()
	model := &archive.VoiceModel{
		ID:     modelID,
		Graphs: map[string][]byte{"duration": []byte("d"), "intonation": []byte("i"), "decode": []byte("c")},
		Metas: []archive.SpeakerMeta{{
			Name:   "speaker",
			Styles: []archive.StyleMeta{{ID: styleID, Name: "style"}},
		}},
	}

	if err := s.LoadVoiceModel(model); err != nil {
		t.Fatalf("LoadVoiceModel: %v", err)
	}

	return s, modelID
}

func TestResolveGPUModeCpuIsAlwaysFalse(t *testing.T) {
	got, err := resolveGPU(context.Background(), AccelerationCPU, fakeProbe{cuda: true, dml: true})
	if err != nil {
		t.Fatalf("resolveGPU: %v", err)
	}
	if got {
		t.Error("AccelerationCPU should never enable GPU")
	}
}

func TestResolveGPUModeGpuIsAlwaysTrue(t *testing.T) {
	got, err := resolveGPU(context.Background(), AccelerationGPU, fakeProbe{})
	if err != nil {
		t.Fatalf("resolveGPU: %v", err)
	}
	if !got {
		t.Error("AccelerationGPU should always enable GPU, even with no probed devices")
	}
}

func TestResolveGPUModeAutoConsultsProbe(t *testing.T) {
	got, err := resolveGPU(context.Background(), AccelerationAuto, fakeProbe{cuda: false, dml: true})
	if err != nil {
		t.Fatalf("resolveGPU: %v", err)
	}
	if !got {
		t.Error("AccelerationAuto should enable GPU when the dml flag is true")
	}
}

func TestResolveGPUModeAutoWithNoBackendStaysCPU(t *testing.T) {
	got, err := resolveGPU(context.Background(), AccelerationAuto, fakeProbe{})
	if err != nil {
		t.Fatalf("resolveGPU: %v", err)
	}
	if got {
		t.Error("AccelerationAuto with no supported backend should stay CPU")
	}
}

func TestResolveGPUModeAutoWrapsProbeFailure(t *testing.T) {
	probeErr := errors.New("device enumeration failed")
	_, err := resolveGPU(context.Background(), AccelerationAuto, fakeProbe{err: probeErr})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, voicekiterr.Sentinel(voicekiterr.KindGetSupportedDevices)) {
		t.Errorf("expected KindGetSupportedDevices, got %v", err)
	}
}

func TestNewDefaultsToAutoAndNoGPU(t *testing.T) {
	s, err := New(context.Background(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if s.IsGPUMode() {
		t.Error("default noGPUProbe should leave IsGPUMode false")
	}
}

func TestNewAppliesOptions(t *testing.T) {
	s, err := New(context.Background(), nil,
		WithAccelerationMode(AccelerationGPU),
		WithCPUNumThreads(4),
		WithLoadAllModels(true),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !s.IsGPUMode() {
		t.Error("AccelerationGPU should set IsGPUMode true")
	}
	if s.CPUNumThreads() != 4 {
		t.Errorf("CPUNumThreads() = %d, want 4", s.CPUNumThreads())
	}
	if !s.LoadAllModels() {
		t.Error("LoadAllModels() should be true")
	}
}

func TestWithGPUProbeOverridesDefault(t *testing.T) {
	s, err := New(context.Background(), nil, WithGPUProbe(fakeProbe{cuda: true}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !s.IsGPUMode() {
		t.Error("WithGPUProbe reporting cuda=true should enable GPU mode under the default Auto acceleration mode")
	}
}

func TestCreateAccentPhrasesRequiresAnalyzerWhenNotKana(t *testing.T) {
	s, err := New(context.Background(), nil, WithAccelerationMode(AccelerationCPU))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = s.CreateAccentPhrases(context.Background(), "こんにちは", 1, false)
	if err == nil {
		t.Fatal("expected an error with no analyzer and useKana=false")
	}
}

func TestCreateAccentPhrasesParsesKana(t *testing.T) {
	s, modelID := newLoadedSynthWithFake(t, 7)
	defer func() { _ = s.UnloadVoiceModel(modelID) }()

	phrases, err := s.CreateAccentPhrases(context.Background(), "ア'イ", 7, true)
	if err != nil {
		t.Fatalf("CreateAccentPhrases: %v", err)
	}

	if len(phrases) != 1 {
		t.Fatalf("len(phrases) = %d, want 1", len(phrases))
	}
}

func TestAudioQueryAndSynthesisRoundTrip(t *testing.T) {
	s, modelID := newLoadedSynthWithFake(t, 3)
	defer func() { _ = s.UnloadVoiceModel(modelID) }()

	query, err := s.AudioQuery(context.Background(), "ア'イ", 3, true)
	if err != nil {
		t.Fatalf("AudioQuery: %v", err)
	}

	if query.Kana == nil || *query.Kana != "ア'イ" {
		t.Fatalf("query.Kana = %v, want \"ア'イ\"", query.Kana)
	}

	data, err := s.Synthesis(context.Background(), query, 3, true)
	if err != nil {
		t.Fatalf("Synthesis: %v", err)
	}

	if len(data) <= 44 {
		t.Fatalf("len(data) = %d, want > 44", len(data))
	}
}

func TestTtsComposesAudioQueryAndSynthesis(t *testing.T) {
	s, modelID := newLoadedSynthWithFake(t, 9)
	defer func() { _ = s.UnloadVoiceModel(modelID) }()

	data, err := s.Tts(context.Background(), "ア'イ", 9, true, true)
	if err != nil {
		t.Fatalf("Tts: %v", err)
	}

	if len(data) <= 44 {
		t.Fatalf("len(data) = %d, want > 44", len(data))
	}
}

func TestSynthesisFailsForUnknownStyle(t *testing.T) {
	s, err := New(context.Background(), nil, WithAccelerationMode(AccelerationCPU))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = s.Synthesis(context.Background(), phrase.AudioQuery{}, 404, true)
	if !errors.Is(err, voicekiterr.Sentinel(voicekiterr.KindInvalidStyleID)) {
		t.Errorf("expected KindInvalidStyleID, got %v", err)
	}
}

func TestStateMachineRejectsDoubleLoad(t *testing.T) {
	s, modelID := newLoadedSynthWithFake(t, 11)
	defer func() { _ = s.UnloadVoiceModel(modelID) }()

	model := &archive.VoiceModel{
		ID:     modelID,
		Graphs: map[string][]byte{"duration": []byte("d"), "intonation": []byte("i"), "decode": []byte("c")},
		Metas:  []archive.SpeakerMeta{{Name: "speaker", Styles: []archive.StyleMeta{{ID: 11, Name: "style"}}}},
	}

	if err := s.LoadVoiceModel(model); err == nil {
		t.Fatal("expected an error re-loading an already-loaded model id")
	}
}

func TestCreateAccentPhrasesPropagatesAnalyzerEmptyResult(t *testing.T) {
	reg := &fakeRegistry{styleID: 2}
	s, err := New(context.Background(), stubAnalyzer{}, WithAccelerationMode(AccelerationCPU), withRegistry(reg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = s.CreateAccentPhrases(context.Background(), "こんにちは", 2, false)
	if !errors.Is(err, voicekiterr.Sentinel(voicekiterr.KindExtractFullContextLabel)) {
		t.Errorf("expected KindExtractFullContextLabel, got %v", err)
	}
}

var _ jtalk.Analyzer = (*stubAnalyzer)(nil)

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(ctx context.Context, text string) ([]jtalk.Label, error) {
	return nil, nil
}
