package accent

import (
	"context"
	"reflect"
	"testing"

	"github.com/example/voicekit/internal/jtalk"
	"github.com/example/voicekit/internal/phonemes"
	"github.com/example/voicekit/internal/phrase"
)

type stubAnalyzer struct {
	labels []jtalk.Label
	err    error
}

func (s stubAnalyzer) Analyze(ctx context.Context, text string) ([]jtalk.Label, error) {
	return s.labels, s.err
}

func TestCreateAccentPhrasesGroupsLabelsByBoundary(t *testing.T) {
	labels := []jtalk.Label{
		{Mora: phrase.Mora{Text: "コ", Vowel: "o"}, PhraseBoundary: true, AccentPosition: 3},
		{Mora: phrase.Mora{Text: "レ", Vowel: "e"}, AccentPosition: 3},
		{Mora: phrase.Mora{Text: "ワ", Vowel: "a"}, AccentPosition: 3},
		{Mora: phrase.Mora{Text: "テ", Vowel: "e"}, PhraseBoundary: true, AccentPosition: 1},
		{Mora: phrase.Mora{Text: "ス", Vowel: "U"}, AccentPosition: 1},
	}

	phrases, err := CreateAccentPhrases(context.Background(), stubAnalyzer{labels: labels}, "これはテス", false)
	if err != nil {
		t.Fatalf("CreateAccentPhrases: %v", err)
	}

	if len(phrases) != 2 {
		t.Fatalf("len(phrases) = %d, want 2", len(phrases))
	}

	if len(phrases[0].Moras) != 3 || phrases[0].Accent != 3 {
		t.Errorf("phrases[0] = %+v, want 3 moras accent 3", phrases[0])
	}

	if len(phrases[1].Moras) != 2 || phrases[1].Accent != 1 {
		t.Errorf("phrases[1] = %+v, want 2 moras accent 1", phrases[1])
	}
}

func TestCreateAccentPhrasesRequiresAnalyzerWhenNotKana(t *testing.T) {
	if _, err := CreateAccentPhrases(context.Background(), nil, "text", false); err == nil {
		t.Fatal("expected an error with a nil analyzer")
	}
}

func TestCreateAccentPhrasesUsesKanaParser(t *testing.T) {
	phrases, err := CreateAccentPhrases(context.Background(), stubAnalyzer{}, "ア'イ", true)
	if err != nil {
		t.Fatalf("CreateAccentPhrases: %v", err)
	}

	if len(phrases) != 1 || len(phrases[0].Moras) != 2 {
		t.Fatalf("got %+v, want a single 2-mora phrase", phrases)
	}
}

func TestCreateAccentPhrasesRequiresAnalyzerEvenWithKana(t *testing.T) {
	if _, err := CreateAccentPhrases(context.Background(), nil, "ア'イ", true); err == nil {
		t.Fatal("expected an error with a nil analyzer, even when useKana is set")
	}
}

func TestFlattenPhonemesIncludesConsonantsAndPause(t *testing.T) {
	c := "k"
	pause := phrase.PauseMora(0)
	phrases := []phrase.AccentPhrase{
		{Moras: []phrase.Mora{{Vowel: "a", Consonant: &c}, {Vowel: "i"}}},
		{PauseMora: &pause, Moras: []phrase.Mora{{Vowel: "u"}}},
	}

	ids := FlattenPhonemes(phrases)

	// k, a, i, pau, u
	if len(ids) != 5 {
		t.Fatalf("len(ids) = %d, want 5", len(ids))
	}
}

func TestBuildAccentVectorsMatchesSingleAccentPhraseExample(t *testing.T) {
	// Mirrors the three-mora, single-accent-phrase, accent=1 example:
	// frames are [pau, v0, v1, v2, pau] with the given 0/1 vectors.
	cons1, cons2 := "ky", "w"

	phrases := []phrase.AccentPhrase{
		{
			Accent: 1,
			Moras: []phrase.Mora{
				{Vowel: "e"},
				{Vowel: "o", Consonant: &cons1},
				{Vowel: "a", Consonant: &cons2},
			},
		},
	}

	got := BuildAccentVectors(phrases)

	if got.Length != 5 {
		t.Fatalf("Length = %d, want 5", got.Length)
	}

	wantStartAccent := []int64{0, 1, 0, 0, 0}
	wantEndAccent := []int64{0, 1, 0, 0, 0}
	wantStartPhrase := []int64{0, 1, 0, 0, 0}
	wantEndPhrase := []int64{0, 0, 0, 1, 0}

	if !reflect.DeepEqual(got.StartAccent, wantStartAccent) {
		t.Errorf("StartAccent = %v, want %v", got.StartAccent, wantStartAccent)
	}

	if !reflect.DeepEqual(got.EndAccent, wantEndAccent) {
		t.Errorf("EndAccent = %v, want %v", got.EndAccent, wantEndAccent)
	}

	if !reflect.DeepEqual(got.StartAccentPhrase, wantStartPhrase) {
		t.Errorf("StartAccentPhrase = %v, want %v", got.StartAccentPhrase, wantStartPhrase)
	}

	if !reflect.DeepEqual(got.EndAccentPhrase, wantEndPhrase) {
		t.Errorf("EndAccentPhrase = %v, want %v", got.EndAccentPhrase, wantEndPhrase)
	}

	kyID, _ := phonemes.ID("ky")
	wID, _ := phonemes.ID("w")
	wantConsonant := []int64{-1, -1, int64(kyID), int64(wID), -1}
	if !reflect.DeepEqual(got.Consonant, wantConsonant) {
		t.Errorf("Consonant = %v, want %v", got.Consonant, wantConsonant)
	}
}
