// Package render implements the Waveform Renderer (§4.5,
// synthesis_wave_format): the deterministic 7-step pipeline from an
// AudioQuery to raw WAV bytes.
package render

import (
	"context"
	"math"

	"github.com/example/voicekit/internal/inference"
	"github.com/example/voicekit/internal/phonemes"
	"github.com/example/voicekit/internal/phrase"
	"github.com/example/voicekit/internal/voicekiterr"
	"github.com/example/voicekit/internal/wav"
)

// InterrogativeUpspeakDelta is the empirical pitch-raise applied to
// the synthetic upspeak mora (§9: "carried forward as-is").
const InterrogativeUpspeakDelta = 0.3

// upspeakEligibleVowels are the (voiced) vowel symbols eligible for the
// interrogative up-speak mora.
var upspeakEligibleVowels = map[string]bool{"a": true, "i": true, "u": true, "e": true, "o": true, "N": true}

// SynthesisWaveFormat runs the full rendering pipeline and returns a
// canonical WAV byte slice (§6).
func SynthesisWaveFormat(ctx context.Context, sessions inference.Sessions, query phrase.AudioQuery, enableInterrogativeUpspeak bool) ([]byte, error) {
	working := phrase.CloneAll(query.AccentPhrases)

	if enableInterrogativeUpspeak {
		applyInterrogativeUpspeak(working)
	}

	frames := flattenFrames(working, query)
	if len(frames) == 0 {
		return nil, voicekiterr.New(voicekiterr.KindInferenceFailed, "synthesis: query produced no frames")
	}

	applyIntonationFlattening(frames, query.IntonationScale)

	f0 := make([]float32, len(frames))
	phonemeOneHot := make([]float32, len(frames)*phonemes.Size)

	for i, f := range frames {
		f0[i] = f.f0
		phonemeOneHot[i*phonemes.Size+f.phonemeID] = 1
	}

	samples, err := sessions.Decode(ctx, len(frames), phonemes.Size, f0, phonemeOneHot)
	if err != nil {
		return nil, err
	}

	for i, s := range samples {
		samples[i] = s * float32(query.VolumeScale)
	}

	pcm := wav.QuantizePCM16(samples)

	return wav.EncodePCM16(pcm)
}

// applyInterrogativeUpspeak mutates working copies only: for every
// accent phrase marked interrogative whose last mora has a voiced,
// eligible vowel with positive pitch, a synthetic mora equal to the
// last one — pitch raised by InterrogativeUpspeakDelta — is appended.
func applyInterrogativeUpspeak(phrases []phrase.AccentPhrase) {
	for i := range phrases {
		ap := &phrases[i]
		if !ap.IsInterrogative || len(ap.Moras) == 0 {
			continue
		}

		last := ap.Moras[len(ap.Moras)-1]
		if !upspeakEligibleVowels[last.Vowel] || last.Pitch <= 0 {
			continue
		}

		synthetic := last.Clone()
		synthetic.Pitch += InterrogativeUpspeakDelta

		ap.Moras = append(ap.Moras, synthetic)
	}
}

// frame is one decode-graph time step: a phoneme id and its raw f0
// (pitch_scale already applied, intonation flattening not yet).
type frame struct {
	phonemeID int
	f0        float32
}

// flattenFrames implements §4.5 step 2: pre-silence, each phrase's
// pause separator and moras (consonant frames then vowel frames), and
// post-silence, each repeated for its segment's frame count.
func flattenFrames(phrases []phrase.AccentPhrase, query phrase.AudioQuery) []frame {
	var frames []frame

	speedScale := query.SpeedScale
	if speedScale <= 0 {
		speedScale = 1
	}

	pitchMultiplier := float32(math.Pow(2, query.PitchScale))

	appendSegment := func(phonemeID int, lengthSeconds float64, pitch float32) {
		n := frameCount(lengthSeconds, speedScale)
		f0 := pitch * pitchMultiplier

		for i := 0; i < n; i++ {
			frames = append(frames, frame{phonemeID: phonemeID, f0: f0})
		}
	}

	appendSegment(phonemes.PauID, query.PrePhonemeLength, 0)

	for _, ap := range phrases {
		if ap.PauseMora != nil {
			appendSegment(phonemes.PauID, float64(ap.PauseMora.VowelLength), 0)
		}

		for _, m := range ap.Moras {
			if m.Consonant != nil {
				consonantID, ok := phonemes.ID(*m.Consonant)
				if !ok {
					consonantID = phonemes.PauID
				}

				cl := float32(0)
				if m.ConsonantLength != nil {
					cl = *m.ConsonantLength
				}

				appendSegment(consonantID, float64(cl), m.Pitch)
			}

			vowelID, ok := phonemes.ID(m.Vowel)
			if !ok {
				vowelID = phonemes.PauID
			}

			appendSegment(vowelID, float64(m.VowelLength), m.Pitch)
		}
	}

	appendSegment(phonemes.PauID, query.PostPhonemeLength, 0)

	return frames
}

// frameCount implements round(length_seconds * 24000 / 256 / speed_scale).
func frameCount(lengthSeconds float64, speedScale float64) int {
	n := math.Round(lengthSeconds * wav.SampleRate / inference.SamplesPerFrame / speedScale)
	if n < 0 {
		n = 0
	}

	return int(n)
}

// applyIntonationFlattening implements f0' = mean + (f0 - mean) *
// intonation_scale, where mean is taken over every non-zero-pitch
// frame in the query.
func applyIntonationFlattening(frames []frame, intonationScale float64) {
	var sum float64
	var count int

	for _, f := range frames {
		if f.f0 != 0 {
			sum += float64(f.f0)
			count++
		}
	}

	if count == 0 {
		return
	}

	mean := sum / float64(count)

	for i := range frames {
		if frames[i].f0 == 0 {
			continue
		}

		frames[i].f0 = float32(mean + (float64(frames[i].f0)-mean)*intonationScale)
	}
}
