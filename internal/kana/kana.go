// Package kana implements the AquesTalk-style kana notation described
// in §6: a plain-text bijection between accent-phrase structures and a
// compact kana string, used whenever a caller supplies kana directly
// instead of going through the text analyzer.
package kana

import (
	"strings"

	"github.com/example/voicekit/internal/phonemes"
	"github.com/example/voicekit/internal/phrase"
	"github.com/example/voicekit/internal/voicekiterr"
)

const (
	phraseSepNoPause = '/'
	phraseSepPause   = '、'
	accentMark       = '\''
	devoiceMark      = '_'
	interrogative    = '?'
)

// Parse parses an AquesTalk-style kana string into accent phrases, with
// every mora's consonant_length/vowel_length/pitch left at zero —
// replace_mora_data fills them in from the neural models per §4.3.
func Parse(s string) ([]phrase.AccentPhrase, error) {
	segments := splitPhrases(s)

	phrases := make([]phrase.AccentPhrase, 0, len(segments))
	for _, seg := range segments {
		ap, err := parseSegment(seg.text)
		if err != nil {
			return nil, voicekiterr.Wrap(voicekiterr.KindParseKana, err, "segment %q", seg.text)
		}

		if seg.pauseBefore {
			p := phrase.PauseMora(0)
			ap.PauseMora = &p
		}

		phrases = append(phrases, ap)
	}

	if len(phrases) == 0 {
		return nil, voicekiterr.New(voicekiterr.KindParseKana, "empty kana string")
	}

	return phrases, nil
}

type segment struct {
	text        string
	pauseBefore bool
}

func splitPhrases(s string) []segment {
	var segments []segment

	pauseBefore := false
	var cur strings.Builder

	for _, r := range s {
		switch r {
		case phraseSepNoPause:
			segments = append(segments, segment{text: cur.String(), pauseBefore: pauseBefore})
			cur.Reset()
			pauseBefore = false
		case phraseSepPause:
			segments = append(segments, segment{text: cur.String(), pauseBefore: pauseBefore})
			cur.Reset()
			pauseBefore = true
		default:
			cur.WriteRune(r)
		}
	}

	segments = append(segments, segment{text: cur.String(), pauseBefore: pauseBefore})

	return segments
}

func parseSegment(text string) (phrase.AccentPhrase, error) {
	isInterrogative := false
	if strings.HasSuffix(text, string(interrogative)) {
		isInterrogative = true
		text = strings.TrimSuffix(text, string(interrogative))
	}

	runes := []rune(text)

	var moras []phrase.Mora
	accent := 0

	for i := 0; i < len(runes); {
		devoice := false
		if runes[i] == devoiceMark {
			devoice = true
			i++

			if i >= len(runes) {
				return phrase.AccentPhrase{}, voicekiterr.New(voicekiterr.KindParseKana, "devoice marker at end of phrase")
			}
		}

		kana, m, n, ok := matchMora(runes[i:])
		if !ok {
			return phrase.AccentPhrase{}, voicekiterr.New(voicekiterr.KindParseKana, "unrecognized mora at %q", string(runes[i:]))
		}

		i += n

		vowel := m.Vowel
		if devoice {
			vowel = strings.ToUpper(vowel)
		}

		mora := phrase.Mora{Text: kana, Vowel: vowel}
		if m.Consonant != "" {
			c := m.Consonant
			mora.Consonant = &c
		}

		moras = append(moras, mora)

		if i < len(runes) && runes[i] == accentMark {
			accent = len(moras)
			i++
		}
	}

	if len(moras) == 0 {
		return phrase.AccentPhrase{}, voicekiterr.New(voicekiterr.KindParseKana, "phrase has no moras")
	}

	if accent == 0 {
		accent = 1
	}

	return phrase.AccentPhrase{Moras: moras, Accent: accent, IsInterrogative: isInterrogative}, nil
}

// matchMora greedily matches the longest known mora at the start of
// runes, trying 2-rune (youon) combinations before single characters.
func matchMora(runes []rune) (kana string, m phonemes.Mora, n int, ok bool) {
	maxLen := phonemes.MaxMoraKanaLen
	if maxLen > len(runes) {
		maxLen = len(runes)
	}

	for length := maxLen; length >= 1; length-- {
		candidate := string(runes[:length])
		if entry, found := phonemes.MoraTable[candidate]; found {
			return candidate, entry, length, true
		}
	}

	return "", phonemes.Mora{}, 0, false
}

// Create renders accent phrases back into AquesTalk-style kana notation.
func Create(phrases []phrase.AccentPhrase) string {
	var b strings.Builder

	for i, ap := range phrases {
		if i > 0 {
			if ap.PauseMora != nil {
				b.WriteRune(phraseSepPause)
			} else {
				b.WriteRune(phraseSepNoPause)
			}
		}

		for idx, m := range ap.Moras {
			if m.IsDevoiced() {
				b.WriteRune(devoiceMark)
			}

			b.WriteString(m.Text)

			if idx+1 == ap.Accent {
				b.WriteRune(accentMark)
			}
		}

		if ap.IsInterrogative {
			b.WriteRune(interrogative)
		}
	}

	return b.String()
}
