// Package jtalk defines the text-analyzer collaborator contract (§1:
// "the Japanese text analyzer... produces full-context labels from
// text") and ships RuleBasedAnalyzer, a dependency-free deterministic
// stand-in so the module is runnable without a native analyzer binding.
package jtalk

import (
	"context"

	"github.com/example/voicekit/internal/phrase"
)

// Label is one mora's worth of analyzer output: its phonological
// decomposition plus the boundary/accent markers the Text-Feature
// Builder needs to group labels into accent phrases (§4.3's "boundaries
// derived from BI accent-phrase markers").
type Label struct {
	Mora phrase.Mora

	// PhraseBoundary is true when this label begins a new accent
	// phrase (the "B" tag; false continues the current phrase, "I").
	PhraseBoundary bool

	// PauseBefore is true when a pause separates this phrase from the
	// previous one (comparable to kana's "、" separator).
	PauseBefore bool

	// AccentPosition is the 1-based accent-nucleus index within the
	// current phrase; repeated identically across every label in a
	// phrase.
	AccentPosition int

	// PhraseInterrogative marks the phrase this label belongs to as a
	// question (sentence-final "?" in the source text).
	PhraseInterrogative bool
}

// Analyzer is the external text-analysis collaborator contract: it
// turns raw Japanese text into a flat sequence of full-context labels.
// A production deployment wires a native OpenJTalk binding behind this
// interface; RuleBasedAnalyzer below is the bundled fallback.
type Analyzer interface {
	Analyze(ctx context.Context, text string) ([]Label, error)
}
