// Package prosody implements the Prosody Refiner (§4.4): the three
// operations that fill an accent-phrase structure's timing and pitch
// from the neural models, always returning a freshly built sequence
// and leaving the caller's input untouched.
package prosody

import (
	"context"

	"github.com/example/voicekit/internal/accent"
	"github.com/example/voicekit/internal/inference"
	"github.com/example/voicekit/internal/phrase"
	"github.com/example/voicekit/internal/voicekiterr"
)

// ReplacePhonemeLength flattens phrases into a phoneme sequence,
// invokes predict_duration, and writes the results back into each
// mora's consonant_length/vowel_length (and each pause_mora's
// vowel_length).
func ReplacePhonemeLength(ctx context.Context, sessions inference.Sessions, phrases []phrase.AccentPhrase) ([]phrase.AccentPhrase, error) {
	out := phrase.CloneAll(phrases)

	ids := accent.FlattenPhonemes(out)

	durations, err := sessions.PredictDuration(ctx, ids)
	if err != nil {
		return nil, err
	}

	if err := scatterPhonemeLengths(out, durations); err != nil {
		return nil, err
	}

	return out, nil
}

// ReplaceMoraPitch builds the six accent vectors, invokes
// predict_intonation, writes one pitch per mora, then forces the
// pitch of every devoiced mora to 0.
func ReplaceMoraPitch(ctx context.Context, sessions inference.Sessions, phrases []phrase.AccentPhrase) ([]phrase.AccentPhrase, error) {
	out := phrase.CloneAll(phrases)

	vectors := accent.BuildAccentVectors(out)

	pitches, err := sessions.PredictIntonation(ctx, vectors)
	if err != nil {
		return nil, err
	}

	if err := scatterPitches(out, pitches); err != nil {
		return nil, err
	}

	return out, nil
}

// ReplaceMoraData is replace_phoneme_length followed by
// replace_mora_pitch on the result.
func ReplaceMoraData(ctx context.Context, sessions inference.Sessions, phrases []phrase.AccentPhrase) ([]phrase.AccentPhrase, error) {
	withLengths, err := ReplacePhonemeLength(ctx, sessions, phrases)
	if err != nil {
		return nil, err
	}

	return ReplaceMoraPitch(ctx, sessions, withLengths)
}

// scatterPhonemeLengths writes predict_duration's flat output back
// onto phrases in FlattenPhonemes' walking order: each phrase's
// pause_mora (if any), then each mora's consonant (if any) followed by
// its vowel.
func scatterPhonemeLengths(phrases []phrase.AccentPhrase, durations []float32) error {
	idx := 0

	next := func() (float32, error) {
		if idx >= len(durations) {
			return 0, voicekiterr.New(voicekiterr.KindInferenceFailed, "replace_phoneme_length: ran out of predicted durations")
		}

		v := durations[idx]
		idx++

		return v, nil
	}

	for i := range phrases {
		ap := &phrases[i]

		if ap.PauseMora != nil {
			v, err := next()
			if err != nil {
				return err
			}

			ap.PauseMora.VowelLength = v
		}

		for j := range ap.Moras {
			m := &ap.Moras[j]

			if m.Consonant != nil {
				v, err := next()
				if err != nil {
					return err
				}

				cl := v
				m.ConsonantLength = &cl
			}

			v, err := next()
			if err != nil {
				return err
			}

			m.VowelLength = v
		}
	}

	if idx != len(durations) {
		return voicekiterr.New(voicekiterr.KindInferenceFailed, "replace_phoneme_length: %d predicted durations left unconsumed", len(durations)-idx)
	}

	return nil
}

// scatterPitches writes predict_intonation's flat output back onto
// phrases in BuildAccentVectors' frame order: a leading pause
// sentinel, then per phrase its pause frame (if any) followed by its
// moras, then a trailing pause sentinel. The two sentinel frames carry
// no mora to write onto and are discarded.
func scatterPitches(phrases []phrase.AccentPhrase, pitches []float32) error {
	idx := 0

	next := func() (float32, error) {
		if idx >= len(pitches) {
			return 0, voicekiterr.New(voicekiterr.KindInferenceFailed, "replace_mora_pitch: ran out of predicted pitches")
		}

		v := pitches[idx]
		idx++

		return v, nil
	}

	if _, err := next(); err != nil { // sentence-initial sentinel
		return err
	}

	for i := range phrases {
		ap := &phrases[i]

		if ap.PauseMora != nil {
			v, err := next()
			if err != nil {
				return err
			}

			ap.PauseMora.Pitch = v
		}

		for j := range ap.Moras {
			v, err := next()
			if err != nil {
				return err
			}

			ap.Moras[j].Pitch = v
		}
	}

	if _, err := next(); err != nil { // sentence-final sentinel
		return err
	}

	if idx != len(pitches) {
		return voicekiterr.New(voicekiterr.KindInferenceFailed, "replace_mora_pitch: %d predicted pitches left unconsumed", len(pitches)-idx)
	}

	for i := range phrases {
		for j := range phrases[i].Moras {
			if phrases[i].Moras[j].IsDevoiced() {
				phrases[i].Moras[j].Pitch = 0
			}
		}
	}

	return nil
}
