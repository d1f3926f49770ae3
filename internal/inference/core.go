package inference

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/voicekit/internal/tensor"
	"github.com/example/voicekit/internal/voicekiterr"
)

// DurationFloor is the minimum predicted phoneme duration, in seconds.
// Raw model output below this is clamped, never signaled as an error.
const DurationFloor float32 = 0.01

// DecodePaddingFrames is the number of zero/pau frames the decode graph's
// f0 and phoneme matrices are padded with on each end before inference,
// matching padding_size = 0.4s * 24000 / 256.
const DecodePaddingFrames = 38

// SamplesPerFrame is the decode graph's upsampling factor: one frame of
// acoustic features yields this many 24 kHz PCM samples.
const SamplesPerFrame = 256

// GraphNames are the three fixed-signature ONNX graphs a voice model
// contributes; a voice model archive must supply all three.
var GraphNames = [3]string{"duration", "intonation", "decode"}

// Sessions is the Inference Core's public contract: the three typed
// predict operations a resolved style's session set exposes. Defined
// as an interface (rather than the concrete *SessionSet) so the Model
// Registry and its callers can be exercised against a fake in tests
// that have no real ONNX Runtime library available.
type Sessions interface {
	PredictDuration(ctx context.Context, phonemes []int64) ([]float32, error)
	PredictIntonation(ctx context.Context, in IntonationInputs) ([]float32, error)
	Decode(ctx context.Context, length, phonemeSize int, f0, phoneme []float32) ([]float32, error)
	Close()
}

// SessionSet is the set of ONNX sessions one loaded voice model owns —
// the unit the Model Registry resolves a style into.
type SessionSet struct {
	duration   *runner
	intonation *runner
	decode     *runner
	tmpDir     string
}

// NewSessionSet materializes the three graph blobs onto disk (ORT
// sessions are opened from a file path, mirroring the teacher's Runner)
// and opens a session for each. The temp directory is removed on Close.
func NewSessionSet(graphs map[string][]byte, cfg RunnerConfig) (Sessions, error) {
	for _, name := range GraphNames {
		if _, ok := graphs[name]; !ok {
			return nil, voicekiterr.New(voicekiterr.KindLoadModelInvalidModelData, "missing %q graph", name)
		}
	}

	tmpDir, err := os.MkdirTemp("", "voicekit-model-*")
	if err != nil {
		return nil, fmt.Errorf("create session workdir: %w", err)
	}

	ss := &SessionSet{tmpDir: tmpDir}

	runners := make(map[string]*runner, len(GraphNames))
	for _, name := range GraphNames {
		path := filepath.Join(tmpDir, name+".onnx")
		if err := os.WriteFile(path, graphs[name], 0o600); err != nil {
			ss.Close()
			return nil, voicekiterr.Wrap(voicekiterr.KindLoadModelInvalidModelData, err, "materialize %q graph", name)
		}

		r, err := newRunner(name, path, cfg)
		if err != nil {
			ss.Close()
			return nil, voicekiterr.Wrap(voicekiterr.KindLoadModelInvalidModelData, err, "open %q graph", name)
		}

		runners[name] = r
	}

	ss.duration = runners["duration"]
	ss.intonation = runners["intonation"]
	ss.decode = runners["decode"]

	return ss, nil
}

// Close releases every ORT resource and the temp files backing them.
// Safe to call multiple times.
func (ss *SessionSet) Close() {
	for _, r := range []*runner{ss.duration, ss.intonation, ss.decode} {
		if r != nil {
			r.close()
		}
	}

	ss.duration, ss.intonation, ss.decode = nil, nil, nil

	if ss.tmpDir != "" {
		_ = os.RemoveAll(ss.tmpDir)
		ss.tmpDir = ""
	}
}

// PredictDuration runs the duration graph over a phoneme-id sequence and
// returns one predicted length per phoneme, floor-clamped to
// DurationFloor.
func (ss *SessionSet) PredictDuration(ctx context.Context, phonemes []int64) ([]float32, error) {
	input, err := tensor.New(phonemes, []int64{1, int64(len(phonemes))})
	if err != nil {
		return nil, fmt.Errorf("build phoneme tensor: %w", err)
	}

	out, err := ss.duration.run(ctx, map[string]*tensor.Tensor{"phoneme_list": input})
	if err != nil {
		return nil, voicekiterr.Wrap(voicekiterr.KindInferenceFailed, err, "predict_duration")
	}

	lengths, ok := out["phoneme_length"]
	if !ok {
		return nil, voicekiterr.New(voicekiterr.KindInferenceFailed, "predict_duration: missing phoneme_length output")
	}

	data, err := lengths.Float32Data()
	if err != nil {
		return nil, voicekiterr.Wrap(voicekiterr.KindInferenceFailed, err, "predict_duration")
	}

	if len(data) != len(phonemes) {
		return nil, voicekiterr.New(voicekiterr.KindInferenceFailed, "predict_duration: expected %d outputs, got %d", len(phonemes), len(data))
	}

	for i, v := range data {
		if v < DurationFloor {
			data[i] = DurationFloor
		}
	}

	return data, nil
}

// IntonationInputs is the six fixed-length vectors predict_intonation
// consumes, one entry per flattened mora.
type IntonationInputs struct {
	Length                int
	Vowel                 []int64
	Consonant             []int64
	StartAccent           []int64
	EndAccent             []int64
	StartAccentPhrase     []int64
	EndAccentPhrase       []int64
}

// PredictIntonation runs the intonation graph and returns exactly
// Length pitch values.
func (ss *SessionSet) PredictIntonation(ctx context.Context, in IntonationInputs) ([]float32, error) {
	for name, v := range map[string][]int64{
		"vowel_phoneme":       in.Vowel,
		"consonant_phoneme":   in.Consonant,
		"start_accent":        in.StartAccent,
		"end_accent":          in.EndAccent,
		"start_accent_phrase": in.StartAccentPhrase,
		"end_accent_phrase":   in.EndAccentPhrase,
	} {
		if len(v) != in.Length {
			return nil, voicekiterr.New(voicekiterr.KindInferenceFailed, "predict_intonation: %s has length %d, want %d", name, len(v), in.Length)
		}
	}

	inputs := make(map[string]*tensor.Tensor, 6)
	for name, v := range map[string][]int64{
		"vowel_phoneme":       in.Vowel,
		"consonant_phoneme":   in.Consonant,
		"start_accent":        in.StartAccent,
		"end_accent":          in.EndAccent,
		"start_accent_phrase": in.StartAccentPhrase,
		"end_accent_phrase":   in.EndAccentPhrase,
	} {
		t, err := tensor.New(v, []int64{1, int64(in.Length)})
		if err != nil {
			return nil, fmt.Errorf("build %s tensor: %w", name, err)
		}

		inputs[name] = t
	}

	out, err := ss.intonation.run(ctx, inputs)
	if err != nil {
		return nil, voicekiterr.Wrap(voicekiterr.KindInferenceFailed, err, "predict_intonation")
	}

	f0, ok := out["f0"]
	if !ok {
		return nil, voicekiterr.New(voicekiterr.KindInferenceFailed, "predict_intonation: missing f0 output")
	}

	data, err := f0.Float32Data()
	if err != nil {
		return nil, voicekiterr.Wrap(voicekiterr.KindInferenceFailed, err, "predict_intonation")
	}

	if len(data) != in.Length {
		return nil, voicekiterr.New(voicekiterr.KindInferenceFailed, "predict_intonation: expected %d outputs, got %d", in.Length, len(data))
	}

	return data, nil
}

// Decode runs the decode graph over dense f0/phoneme matrices, padding
// both by DecodePaddingFrames frames on each end before inference and
// cropping the corresponding samples from the output, per §4.2.
func (ss *SessionSet) Decode(ctx context.Context, length, phonemeSize int, f0 []float32, phoneme []float32) ([]float32, error) {
	if len(f0) != length {
		return nil, voicekiterr.New(voicekiterr.KindInferenceFailed, "decode: f0 has length %d, want %d", len(f0), length)
	}

	if len(phoneme) != length*phonemeSize {
		return nil, voicekiterr.New(voicekiterr.KindInferenceFailed, "decode: phoneme has length %d, want %d", len(phoneme), length*phonemeSize)
	}

	paddedLength := length + 2*DecodePaddingFrames
	paddedF0, paddedPhoneme := padForDecode(length, phonemeSize, f0, phoneme)

	f0Tensor, err := tensor.New(paddedF0, []int64{1, int64(paddedLength), 1})
	if err != nil {
		return nil, fmt.Errorf("build f0 tensor: %w", err)
	}

	phonemeTensor, err := tensor.New(paddedPhoneme, []int64{1, int64(paddedLength), int64(phonemeSize)})
	if err != nil {
		return nil, fmt.Errorf("build phoneme tensor: %w", err)
	}

	out, err := ss.decode.run(ctx, map[string]*tensor.Tensor{"f0": f0Tensor, "phoneme": phonemeTensor})
	if err != nil {
		return nil, voicekiterr.Wrap(voicekiterr.KindInferenceFailed, err, "decode")
	}

	wave, ok := out["wave"]
	if !ok {
		return nil, voicekiterr.New(voicekiterr.KindInferenceFailed, "decode: missing wave output")
	}

	data, err := wave.Float32Data()
	if err != nil {
		return nil, voicekiterr.Wrap(voicekiterr.KindInferenceFailed, err, "decode")
	}

	wantPadded := paddedLength * SamplesPerFrame
	if len(data) != wantPadded {
		return nil, voicekiterr.New(voicekiterr.KindInferenceFailed, "decode: expected %d padded samples, got %d", wantPadded, len(data))
	}

	return cropDecodeOutput(data), nil
}

// padForDecode pads f0 with zeros and phoneme rows with a one-hot on
// index 0 ("pau"), DecodePaddingFrames frames on each end, per §4.2.
func padForDecode(length, phonemeSize int, f0, phoneme []float32) (paddedF0, paddedPhoneme []float32) {
	paddedLength := length + 2*DecodePaddingFrames

	paddedF0 = make([]float32, paddedLength)
	copy(paddedF0[DecodePaddingFrames:DecodePaddingFrames+length], f0)

	paddedPhoneme = make([]float32, paddedLength*phonemeSize)
	for i := 0; i < DecodePaddingFrames; i++ {
		paddedPhoneme[i*phonemeSize] = 1
	}

	copy(paddedPhoneme[DecodePaddingFrames*phonemeSize:(DecodePaddingFrames+length)*phonemeSize], phoneme)

	for i := DecodePaddingFrames + length; i < paddedLength; i++ {
		paddedPhoneme[i*phonemeSize] = 1
	}

	return paddedF0, paddedPhoneme
}

// cropDecodeOutput strips DecodePaddingFrames*SamplesPerFrame samples
// from each end of a padded decode output.
func cropDecodeOutput(padded []float32) []float32 {
	crop := DecodePaddingFrames * SamplesPerFrame
	return append([]float32(nil), padded[crop:len(padded)-crop]...)
}
