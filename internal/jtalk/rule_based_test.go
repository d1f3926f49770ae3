package jtalk

import (
	"context"
	"errors"
	"testing"

	"github.com/example/voicekit/internal/voicekiterr"
)

func TestAnalyzeHiraganaKatakanaMix(t *testing.T) {
	a := NewRuleBasedAnalyzer()

	labels, err := a.Analyze(context.Background(), "これはテストです")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	wantText := []string{"コ", "レ", "ワ", "テ", "ス", "ト", "デ", "ス"}
	if len(labels) != len(wantText) {
		t.Fatalf("len(labels) = %d, want %d", len(labels), len(wantText))
	}

	for i, want := range wantText {
		if labels[i].Mora.Text != want {
			t.Errorf("labels[%d].Mora.Text = %q, want %q", i, labels[i].Mora.Text, want)
		}
	}

	for i, l := range labels {
		if want := i == 0; l.PhraseBoundary != want {
			t.Errorf("labels[%d].PhraseBoundary = %v, want %v", i, l.PhraseBoundary, want)
		}

		if l.AccentPosition != 1 {
			t.Errorf("labels[%d].AccentPosition = %d, want 1", i, l.AccentPosition)
		}
	}

	// "ス" before "ト" (voiceless onset) devoices; the phrase-final "ス"
	// devoices too.
	if labels[4].Mora.Vowel != "U" {
		t.Errorf("labels[4].Mora.Vowel = %q, want %q (devoiced)", labels[4].Mora.Vowel, "U")
	}

	if labels[7].Mora.Vowel != "U" {
		t.Errorf("labels[7].Mora.Vowel = %q, want %q (devoiced, phrase-final)", labels[7].Mora.Vowel, "U")
	}

	// Non-devoiced vowels stay lowercase.
	if labels[0].Mora.Vowel != "o" {
		t.Errorf("labels[0].Mora.Vowel = %q, want %q", labels[0].Mora.Vowel, "o")
	}
}

func TestAnalyzeParticlePronunciationOverrides(t *testing.T) {
	a := NewRuleBasedAnalyzer()

	labels, err := a.Analyze(context.Background(), "へ")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(labels) != 1 || labels[0].Mora.Text != "エ" {
		t.Fatalf("got %+v, want single mora %q", labels, "エ")
	}
}

func TestAnalyzePunctuationSplitsPhrases(t *testing.T) {
	a := NewRuleBasedAnalyzer()

	labels, err := a.Analyze(context.Background(), "ア、イ")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(labels) != 2 {
		t.Fatalf("len(labels) = %d, want 2", len(labels))
	}

	if !labels[0].PhraseBoundary || labels[0].PauseBefore {
		t.Errorf("labels[0] = %+v, want boundary without pause", labels[0])
	}

	if !labels[1].PhraseBoundary || !labels[1].PauseBefore {
		t.Errorf("labels[1] = %+v, want boundary with pause", labels[1])
	}
}

func TestAnalyzeInterrogative(t *testing.T) {
	a := NewRuleBasedAnalyzer()

	labels, err := a.Analyze(context.Background(), "イ?")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(labels) != 1 || !labels[0].PhraseInterrogative {
		t.Fatalf("got %+v, want a single interrogative label", labels)
	}
}

func TestAnalyzeCombinesHiraganaYouon(t *testing.T) {
	a := NewRuleBasedAnalyzer()

	labels, err := a.Analyze(context.Background(), "きゃ")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(labels) != 1 || labels[0].Mora.Text != "キャ" {
		t.Fatalf("got %+v, want single mora %q", labels, "キャ")
	}

	if labels[0].Mora.Consonant == nil || *labels[0].Mora.Consonant != "ky" {
		t.Fatalf("got consonant %+v, want \"ky\"", labels[0].Mora.Consonant)
	}
}

func TestAnalyzeRejectsKanji(t *testing.T) {
	a := NewRuleBasedAnalyzer()

	_, err := a.Analyze(context.Background(), "漢字")
	if err == nil {
		t.Fatal("expected an error for kanji input")
	}

	if !errors.Is(err, voicekiterr.Sentinel(voicekiterr.KindExtractFullContextLabel)) {
		t.Fatalf("err = %v, want KindExtractFullContextLabel", err)
	}
}

func TestAnalyzeRejectsEmptyInput(t *testing.T) {
	a := NewRuleBasedAnalyzer()

	if _, err := a.Analyze(context.Background(), ""); err == nil {
		t.Fatal("expected an error for empty input")
	}
}
