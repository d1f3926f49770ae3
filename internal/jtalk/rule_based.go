package jtalk

import (
	"context"
	"strings"

	"github.com/example/voicekit/internal/phonemes"
	"github.com/example/voicekit/internal/phrase"
	"github.com/example/voicekit/internal/voicekiterr"
)

// voicelessConsonants are the onset consonants eligible for vowel
// devoicing under the standard "i/u between voiceless consonants, or
// phrase-final after a voiceless consonant" heuristic.
var voicelessConsonants = map[string]bool{
	"k": true, "s": true, "sh": true, "t": true, "ts": true, "ch": true,
	"h": true, "p": true, "f": true,
	"ky": true, "ty": true, "sy": true, "hy": true, "py": true,
}

const hiraganaToKatakanaOffset = 0x60

// smallYoon are the hiragana small-kana combiners (ゃゅょ) that fuse
// with the preceding character into one youon mora.
var smallYoon = map[rune]bool{'ゃ': true, 'ゅ': true, 'ょ': true}

// particlePronunciation overrides the literal hiragana reading for the
// handful of function words whose pronunciation differs from their
// spelling (は as topic marker read "wa", へ as directional particle
// read "e"). Applied unconditionally — this is a known simplification
// documented in DESIGN.md, not a morphological analysis.
var particlePronunciation = map[rune]string{
	'は': "ワ",
	'へ': "エ",
}

// RuleBasedAnalyzer is a dependency-free Analyzer: it reads hiragana
// and katakana input directly (offsetting hiragana to its katakana
// equivalent) rather than performing real morphological analysis.
// Kanji and any other script are rejected with ExtractFullContextLabel,
// since resolving a kanji reading requires the lexicon a real analyzer
// carries.
type RuleBasedAnalyzer struct{}

// NewRuleBasedAnalyzer constructs the bundled fallback analyzer.
func NewRuleBasedAnalyzer() *RuleBasedAnalyzer {
	return &RuleBasedAnalyzer{}
}

type pendingPhrase struct {
	tokens          []string
	pauseBefore     bool
	isInterrogative bool
}

func (a *RuleBasedAnalyzer) Analyze(ctx context.Context, text string) ([]Label, error) {
	phrases, err := tokenizePhrases(text)
	if err != nil {
		return nil, err
	}

	if len(phrases) == 0 {
		return nil, voicekiterr.New(voicekiterr.KindExtractFullContextLabel, "text produced no accent phrases")
	}

	var labels []Label

	for _, p := range phrases {
		moras := make([]phrase.Mora, 0, len(p.tokens))

		for _, tok := range p.tokens {
			entry, ok := phonemes.MoraTable[tok]
			if !ok {
				return nil, voicekiterr.New(voicekiterr.KindExtractFullContextLabel, "unrecognized mora %q", tok)
			}

			m := phrase.Mora{Text: tok, Vowel: entry.Vowel}
			if entry.Consonant != "" {
				c := entry.Consonant
				m.Consonant = &c
			}

			moras = append(moras, m)
		}

		applyDevoicing(moras)

		accent := 1
		if len(moras) == 0 {
			return nil, voicekiterr.New(voicekiterr.KindExtractFullContextLabel, "accent phrase has no moras")
		}

		for i, m := range moras {
			labels = append(labels, Label{
				Mora:                m,
				PhraseBoundary:      i == 0,
				PauseBefore:         i == 0 && p.pauseBefore,
				AccentPosition:      accent,
				PhraseInterrogative: p.isInterrogative,
			})
		}
	}

	return labels, nil
}

// applyDevoicing uppercases a mora's vowel when it is i/u, its onset is
// voiceless, and either the following mora is also voiceless-onset or
// this is the phrase's final mora.
func applyDevoicing(moras []phrase.Mora) {
	for i := range moras {
		if moras[i].Vowel != "i" && moras[i].Vowel != "u" {
			continue
		}

		if moras[i].Consonant == nil || !voicelessConsonants[*moras[i].Consonant] {
			continue
		}

		isLast := i == len(moras)-1
		nextVoiceless := !isLast && moras[i+1].Consonant != nil && voicelessConsonants[*moras[i+1].Consonant]

		if isLast || nextVoiceless {
			moras[i].Vowel = strings.ToUpper(moras[i].Vowel)
		}
	}
}

// tokenizePhrases walks the input rune by rune, converting hiragana to
// its katakana reading (combining small-kana youon pairs), applying the
// は/へ particle pronunciation override, and splitting on punctuation
// into accent phrases.
func tokenizePhrases(text string) ([]pendingPhrase, error) {
	runes := []rune(text)

	var phrases []pendingPhrase
	cur := pendingPhrase{}
	pauseBefore := false

	flush := func() {
		if len(cur.tokens) > 0 {
			cur.pauseBefore = pauseBefore
			phrases = append(phrases, cur)
		}

		cur = pendingPhrase{}
		pauseBefore = false
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case r == '。' || r == '.':
			flush()
		case r == '、' || r == ',':
			flush()
			pauseBefore = true
		case r == '?' || r == '？':
			cur.isInterrogative = true
		case r == ' ' || r == '\n' || r == '\t' || r == '　':
			// whitespace is ignored rather than treated as a boundary.
		case r >= 0x3041 && r <= 0x3096:
			// Hiragana: special-case particle pronunciation, then
			// generic offset, combining a following small-kana youon.
			override, isParticle := particlePronunciation[r]

			var katakana string
			if isParticle {
				katakana = override
			} else {
				katakana = string(r + hiraganaToKatakanaOffset)

				if i+1 < len(runes) && smallYoon[runes[i+1]] {
					katakana += string(runes[i+1] + hiraganaToKatakanaOffset)
					i++
				}
			}

			cur.tokens = append(cur.tokens, katakana)
		case (r >= 0x30A1 && r <= 0x30FA) || r == 0x30FC:
			// Katakana, passed through; combine a following small-kana
			// youon the same way.
			katakana := string(r)
			if i+1 < len(runes) && (runes[i+1] == 'ャ' || runes[i+1] == 'ュ' || runes[i+1] == 'ョ') {
				katakana += string(runes[i+1])
				i++
			}

			cur.tokens = append(cur.tokens, katakana)
		default:
			return nil, voicekiterr.New(voicekiterr.KindExtractFullContextLabel, "unsupported character %q (kanji requires a real analyzer)", string(r))
		}
	}

	flush()

	return phrases, nil
}
