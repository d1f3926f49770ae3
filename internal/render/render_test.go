package render

import (
	"context"
	"testing"

	"github.com/example/voicekit/internal/inference"
	"github.com/example/voicekit/internal/phonemes"
	"github.com/example/voicekit/internal/phrase"
)

type fakeSessions struct {
	lastLength      int
	lastPhonemeSize int
	lastF0          []float32
	lastPhoneme     []float32
}

func (f *fakeSessions) PredictDuration(ctx context.Context, ph []int64) ([]float32, error) {
	return nil, nil
}

func (f *fakeSessions) PredictIntonation(ctx context.Context, in inference.IntonationInputs) ([]float32, error) {
	return nil, nil
}

func (f *fakeSessions) Decode(ctx context.Context, length, phonemeSize int, f0, ph []float32) ([]float32, error) {
	f.lastLength = length
	f.lastPhonemeSize = phonemeSize
	f.lastF0 = append([]float32(nil), f0...)
	f.lastPhoneme = append([]float32(nil), ph...)

	samples := make([]float32, length*256)
	for i := range samples {
		samples[i] = 0.5
	}

	return samples, nil
}

func (f *fakeSessions) Close() {}

func buildQuery() phrase.AudioQuery {
	vowelA := phrase.Mora{Text: "ア", Vowel: "a", VowelLength: 0.1, Pitch: 5.0}
	q := phrase.NewAudioQuery([]phrase.AccentPhrase{
		{Accent: 1, Moras: []phrase.Mora{vowelA}},
	}, nil)
	q.PrePhonemeLength = 0.1
	q.PostPhonemeLength = 0.1

	return q
}

func TestSynthesisWaveFormatProducesValidWAV(t *testing.T) {
	sessions := &fakeSessions{}
	query := buildQuery()

	data, err := SynthesisWaveFormat(context.Background(), sessions, query, true)
	if err != nil {
		t.Fatalf("SynthesisWaveFormat: %v", err)
	}

	if len(data) <= 44 {
		t.Fatalf("len(data) = %d, want > 44 (header only)", len(data))
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("not a WAV container: %q", data[0:12])
	}

	if sessions.lastPhonemeSize != phonemes.Size {
		t.Errorf("phoneme one-hot width = %d, want %d", sessions.lastPhonemeSize, phonemes.Size)
	}

	if sessions.lastLength != len(sessions.lastF0) {
		t.Errorf("decode length %d does not match f0 vector length %d", sessions.lastLength, len(sessions.lastF0))
	}
}

func TestApplyInterrogativeUpspeakAppendsMora(t *testing.T) {
	phrases := []phrase.AccentPhrase{
		{
			IsInterrogative: true,
			Moras:           []phrase.Mora{{Vowel: "a", Pitch: 5.0}},
		},
	}

	applyInterrogativeUpspeak(phrases)

	if len(phrases[0].Moras) != 2 {
		t.Fatalf("len(Moras) = %d, want 2", len(phrases[0].Moras))
	}

	got := phrases[0].Moras[1].Pitch
	want := float32(5.0 + InterrogativeUpspeakDelta)
	if got != want {
		t.Errorf("synthetic mora pitch = %v, want %v", got, want)
	}
}

func TestApplyInterrogativeUpspeakSkipsNonPositivePitch(t *testing.T) {
	phrases := []phrase.AccentPhrase{
		{IsInterrogative: true, Moras: []phrase.Mora{{Vowel: "a", Pitch: 0}}},
	}

	applyInterrogativeUpspeak(phrases)

	if len(phrases[0].Moras) != 1 {
		t.Fatalf("len(Moras) = %d, want 1 (no upspeak mora appended)", len(phrases[0].Moras))
	}
}

func TestApplyInterrogativeUpspeakSkipsDevoicedFinalVowel(t *testing.T) {
	phrases := []phrase.AccentPhrase{
		{IsInterrogative: true, Moras: []phrase.Mora{{Vowel: "U", Pitch: 5.0}}},
	}

	applyInterrogativeUpspeak(phrases)

	if len(phrases[0].Moras) != 1 {
		t.Fatalf("len(Moras) = %d, want 1 (devoiced vowel is not upspeak-eligible)", len(phrases[0].Moras))
	}
}

func TestFrameCountMatchesFormula(t *testing.T) {
	// round(0.1 * 24000 / 256 / 1) = round(9.375) = 9
	if n := frameCount(0.1, 1); n != 9 {
		t.Errorf("frameCount(0.1, 1) = %d, want 9", n)
	}

	// speed_scale halves the frame count's denominator effect
	if n := frameCount(0.1, 2); n != 5 {
		t.Errorf("frameCount(0.1, 2) = %d, want 5", n)
	}
}

func TestApplyIntonationFlatteningPreservesMeanAtScaleOne(t *testing.T) {
	frames := []frame{{f0: 4}, {f0: 6}, {f0: 0}}
	applyIntonationFlattening(frames, 1)

	if frames[0].f0 != 4 || frames[1].f0 != 6 {
		t.Errorf("scale=1 should be a no-op on non-zero frames, got %+v", frames)
	}

	if frames[2].f0 != 0 {
		t.Errorf("zero-pitch frame must stay zero, got %v", frames[2].f0)
	}
}

func TestApplyIntonationFlatteningZeroScaleCollapsesToMean(t *testing.T) {
	frames := []frame{{f0: 4}, {f0: 6}}
	applyIntonationFlattening(frames, 0)

	for _, f := range frames {
		if f.f0 != 5 {
			t.Errorf("scale=0 should collapse every non-zero frame to the mean 5, got %v", f.f0)
		}
	}
}
