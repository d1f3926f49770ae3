// Package phrase defines the accent-phrase data model shared by every
// pipeline stage: the Text-Feature Builder produces it, the Prosody
// Refiner mutates copies of it, and the Waveform Renderer consumes it.
package phrase

// UnvoicedVowels are the devoiced-vowel symbols (uppercase) whose pitch
// is forced to 0 after replace_mora_pitch.
var UnvoicedVowels = map[string]bool{"A": true, "I": true, "U": true, "E": true, "O": true}

// Mora is a single timing unit: an optional consonant followed by a
// vowel. An uppercase Vowel denotes a devoiced mora.
type Mora struct {
	Text            string   `json:"text"`
	Consonant       *string  `json:"consonant,omitempty"`
	ConsonantLength *float32 `json:"consonant_length,omitempty"`
	Vowel           string   `json:"vowel"`
	VowelLength     float32  `json:"vowel_length"`
	Pitch           float32  `json:"pitch"`
}

// IsDevoiced reports whether m's vowel is one of the uppercase unvoiced
// symbols.
func (m Mora) IsDevoiced() bool {
	return UnvoicedVowels[m.Vowel]
}

// Clone returns a deep copy of m so callers can mutate without aliasing
// the original's pointer fields.
func (m Mora) Clone() Mora {
	out := m
	if m.Consonant != nil {
		c := *m.Consonant
		out.Consonant = &c
	}

	if m.ConsonantLength != nil {
		cl := *m.ConsonantLength
		out.ConsonantLength = &cl
	}

	return out
}

// PauseMora returns a canonical silent mora: empty consonant, vowel
// "pau", the given length, and pitch 0.
func PauseMora(length float32) Mora {
	return Mora{Text: "、", Vowel: "pau", VowelLength: length}
}

// AccentPhrase is an ordered run of moras sharing one accent nucleus.
type AccentPhrase struct {
	Moras           []Mora `json:"moras"`
	Accent          int    `json:"accent"` // 1-based position of the accent nucleus, ≤ len(Moras)
	PauseMora       *Mora  `json:"pause_mora,omitempty"`
	IsInterrogative bool   `json:"is_interrogative"`
}

// Clone returns a deep copy of ap and its moras.
func (ap AccentPhrase) Clone() AccentPhrase {
	out := ap
	out.Moras = make([]Mora, len(ap.Moras))
	for i, m := range ap.Moras {
		out.Moras[i] = m.Clone()
	}

	if ap.PauseMora != nil {
		p := ap.PauseMora.Clone()
		out.PauseMora = &p
	}

	return out
}

// CloneAll deep-copies a slice of accent phrases.
func CloneAll(phrases []AccentPhrase) []AccentPhrase {
	out := make([]AccentPhrase, len(phrases))
	for i, p := range phrases {
		out[i] = p.Clone()
	}

	return out
}

// DefaultPreSilence and DefaultPostSilence are the pre/post phoneme
// lengths an AudioQuery is given at creation, per §3.
const (
	DefaultPreSilence  = 0.1
	DefaultPostSilence = 0.1
)

// DefaultSamplingRate is the sampling rate every AudioQuery is fixed to
// at creation.
const DefaultSamplingRate = 24000

// AudioQuery is the full synthesis request: accent-phrase structure plus
// the scaling/silence parameters the Waveform Renderer applies.
type AudioQuery struct {
	AccentPhrases      []AccentPhrase `json:"accent_phrases"`
	SpeedScale         float64        `json:"speed_scale"`
	PitchScale         float64        `json:"pitch_scale"`
	IntonationScale    float64        `json:"intonation_scale"`
	VolumeScale        float64        `json:"volume_scale"`
	PrePhonemeLength   float64        `json:"pre_phoneme_length"`
	PostPhonemeLength  float64        `json:"post_phoneme_length"`
	OutputSamplingRate int            `json:"output_sampling_rate"`
	OutputStereo       bool           `json:"output_stereo"`
	Kana               *string        `json:"kana,omitempty"`
}

// NewAudioQuery builds an AudioQuery with the §3 defaults: unit scales,
// 0.1s silences, 24000 Hz fixed sampling rate, mono.
func NewAudioQuery(accentPhrases []AccentPhrase, kana *string) AudioQuery {
	return AudioQuery{
		AccentPhrases:      accentPhrases,
		SpeedScale:         1,
		PitchScale:         0,
		IntonationScale:    1,
		VolumeScale:        1,
		PrePhonemeLength:   DefaultPreSilence,
		PostPhonemeLength:  DefaultPostSilence,
		OutputSamplingRate: DefaultSamplingRate,
		OutputStereo:       false,
		Kana:               kana,
	}
}
