// Command voicekit is the CLI and HTTP front end for the Synthesizer
// Facade: it loads .vvm voice model archives and exposes
// audio_query/accent_phrases/synthesis/tts as one-shot subcommands, and
// audio_query/accent_phrases/synthesis through a long-running HTTP
// server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
