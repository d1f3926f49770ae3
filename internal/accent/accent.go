// Package accent implements the Text-Feature Builder (§4.3): turning
// raw text, or AquesTalk-style kana, into accent phrases, and building
// the phoneme-id vectors the Prosody Refiner feeds to the neural
// models.
package accent

import (
	"context"

	"github.com/example/voicekit/internal/jtalk"
	"github.com/example/voicekit/internal/kana"
	"github.com/example/voicekit/internal/phrase"
	"github.com/example/voicekit/internal/voicekiterr"
)

// CreateAccentPhrases implements create_accent_phrases. With useKana,
// text is parsed by the kana grammar (lengths/pitches left at zero,
// ready for replace_mora_data). Otherwise the analyzer's full-context
// labels are grouped into accent phrases by their phrase-boundary
// markers.
func CreateAccentPhrases(ctx context.Context, analyzer jtalk.Analyzer, text string, useKana bool) ([]phrase.AccentPhrase, error) {
	if analyzer == nil {
		return nil, voicekiterr.New(voicekiterr.KindNotLoadedOpenjtalkDict, "text analyzer not initialized")
	}

	if useKana {
		return kana.Parse(text)
	}

	labels, err := analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}

	phrases := groupLabels(labels)
	if len(phrases) == 0 {
		return nil, voicekiterr.New(voicekiterr.KindExtractFullContextLabel, "analyzer produced no accent phrases")
	}

	return phrases, nil
}

// groupLabels folds a flat label stream into accent phrases: a label
// with PhraseBoundary set (or the very first label) starts a new
// phrase, carrying that label's accent position, interrogative flag,
// and pause marker for the whole phrase.
func groupLabels(labels []jtalk.Label) []phrase.AccentPhrase {
	var phrases []phrase.AccentPhrase

	for _, l := range labels {
		if l.PhraseBoundary || len(phrases) == 0 {
			ap := phrase.AccentPhrase{
				Accent:          l.AccentPosition,
				IsInterrogative: l.PhraseInterrogative,
			}

			if l.PauseBefore {
				p := phrase.PauseMora(0)
				ap.PauseMora = &p
			}

			phrases = append(phrases, ap)
		}

		cur := &phrases[len(phrases)-1]
		cur.Moras = append(cur.Moras, l.Mora)
	}

	return phrases
}
