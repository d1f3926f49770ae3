package accent

import (
	"github.com/example/voicekit/internal/inference"
	"github.com/example/voicekit/internal/phonemes"
	"github.com/example/voicekit/internal/phrase"
)

// FlattenPhonemes implements replace_phoneme_length's flattening step:
// every mora's consonant (where present) then its vowel, in order,
// including each phrase's pause separator. This is predict_duration's
// input; the Prosody Refiner scatters its output back in the same
// walking order.
func FlattenPhonemes(phrases []phrase.AccentPhrase) []int64 {
	var ids []int64

	WalkMoras(phrases, func(m phrase.Mora) {
		if m.Consonant != nil {
			if id, ok := phonemes.ID(*m.Consonant); ok {
				ids = append(ids, int64(id))
			}
		}

		if id, ok := phonemes.ID(m.Vowel); ok {
			ids = append(ids, int64(id))
		}
	})

	return ids
}

// WalkMoras visits every mora across phrases in flattening order: a
// phrase's pause_mora (if any) before its own moras.
func WalkMoras(phrases []phrase.AccentPhrase, visit func(phrase.Mora)) {
	for _, ap := range phrases {
		if ap.PauseMora != nil {
			visit(*ap.PauseMora)
		}

		for _, m := range ap.Moras {
			visit(m)
		}
	}
}

// BuildAccentVectors implements "Building the six accent vectors"
// (§4.3): flattens accent phrases into mora frames, with a pause frame
// before each phrase that carries a PauseMora and a leading/trailing
// pause sentinel bracketing the
// whole sentence, producing predict_intonation's six inputs.
//
// Per phrase: start_accent is a one-hot at mora 0 if the phrase's
// accent nucleus is its first mora, else at mora 1 (pitch rises into
// the second mora); end_accent is a one-hot at the accent nucleus
// itself (accent-1, 0-based); start_accent_phrase/end_accent_phrase
// are one-hot at the phrase's first/last mora.
func BuildAccentVectors(phrases []phrase.AccentPhrase) inference.IntonationInputs {
	var vowel, consonant, startAccent, endAccent, startPhrase, endPhrase []int64

	pauseFrame := func() {
		vowel = append(vowel, int64(phonemes.PauID))
		consonant = append(consonant, -1)
		startAccent = append(startAccent, 0)
		endAccent = append(endAccent, 0)
		startPhrase = append(startPhrase, 0)
		endPhrase = append(endPhrase, 0)
	}

	pauseFrame() // sentence-initial sentinel

	for _, ap := range phrases {
		if ap.PauseMora != nil {
			pauseFrame()
		}

		accent := ap.Accent
		if accent < 1 {
			accent = 1
		}

		if accent > len(ap.Moras) {
			accent = len(ap.Moras)
		}

		startAccentPos := 1
		if accent == 1 {
			startAccentPos = 0
		}

		for i, m := range ap.Moras {
			vid, _ := phonemes.ID(m.Vowel)
			vowel = append(vowel, int64(vid))

			cid := int64(-1)
			if m.Consonant != nil {
				if id, ok := phonemes.ID(*m.Consonant); ok {
					cid = int64(id)
				}
			}
			consonant = append(consonant, cid)

			startAccent = append(startAccent, boolToInt64(i == startAccentPos))
			endAccent = append(endAccent, boolToInt64(i == accent-1))
			startPhrase = append(startPhrase, boolToInt64(i == 0))
			endPhrase = append(endPhrase, boolToInt64(i == len(ap.Moras)-1))
		}
	}

	pauseFrame() // sentence-final sentinel

	return inference.IntonationInputs{
		Length:            len(vowel),
		Vowel:             vowel,
		Consonant:         consonant,
		StartAccent:       startAccent,
		EndAccent:         endAccent,
		StartAccentPhrase: startPhrase,
		EndAccentPhrase:   endPhrase,
	}
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}

	return 0
}
