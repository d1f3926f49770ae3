package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/voicekit/internal/phrase"
	"github.com/example/voicekit/internal/registry"
	"github.com/spf13/cobra"
)

func newSynthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "One-shot text-to-speech commands",
	}

	cmd.AddCommand(newAudioQueryCmd())
	cmd.AddCommand(newAccentPhrasesCmd())
	cmd.AddCommand(newSynthesisCmd())
	cmd.AddCommand(newTtsCmd())

	return cmd
}

func newAudioQueryCmd() *cobra.Command {
	var text string
	var speaker uint32
	var isKana bool
	var out string

	cmd := &cobra.Command{
		Use:   "audio-query",
		Short: "Build an AudioQuery from text",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			input, err := readSynthInput(text, os.Stdin)
			if err != nil {
				return err
			}

			engine, err := buildSynthesizer(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			query, err := engine.AudioQuery(cmd.Context(), input, registry.StyleID(speaker), isKana)
			if err != nil {
				return err
			}

			return writeJSONOutput(out, query)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to synthesize (if empty, read from stdin)")
	cmd.Flags().Uint32Var(&speaker, "speaker", 0, "Style id to query against")
	cmd.Flags().BoolVar(&isKana, "is-kana", false, "Treat --text as AquesTalk-style kana")
	cmd.Flags().StringVar(&out, "out", "-", "Output JSON path ('-' for stdout)")

	return cmd
}

func newAccentPhrasesCmd() *cobra.Command {
	var text string
	var speaker uint32
	var isKana bool
	var out string

	cmd := &cobra.Command{
		Use:   "accent-phrases",
		Short: "Build accent phrases from text",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			input, err := readSynthInput(text, os.Stdin)
			if err != nil {
				return err
			}

			engine, err := buildSynthesizer(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			phrases, err := engine.CreateAccentPhrases(cmd.Context(), input, registry.StyleID(speaker), isKana)
			if err != nil {
				return err
			}

			return writeJSONOutput(out, phrases)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to synthesize (if empty, read from stdin)")
	cmd.Flags().Uint32Var(&speaker, "speaker", 0, "Style id to query against")
	cmd.Flags().BoolVar(&isKana, "is-kana", false, "Treat --text as AquesTalk-style kana")
	cmd.Flags().StringVar(&out, "out", "-", "Output JSON path ('-' for stdout)")

	return cmd
}

func newSynthesisCmd() *cobra.Command {
	var queryPath string
	var speaker uint32
	var upspeak bool
	var out string

	cmd := &cobra.Command{
		Use:   "synthesis",
		Short: "Render an AudioQuery JSON file to WAV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			data, err := readAllInput(queryPath, os.Stdin)
			if err != nil {
				return err
			}

			var query phrase.AudioQuery
			if err := json.Unmarshal(data, &query); err != nil {
				return fmt.Errorf("decode audio query: %w", err)
			}

			engine, err := buildSynthesizer(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			wav, err := engine.Synthesis(cmd.Context(), query, registry.StyleID(speaker), upspeak)
			if err != nil {
				return err
			}

			return writeBytesOutput(out, wav)
		},
	}

	cmd.Flags().StringVar(&queryPath, "query", "-", "AudioQuery JSON path ('-' for stdin)")
	cmd.Flags().Uint32Var(&speaker, "speaker", 0, "Style id to synthesize against")
	cmd.Flags().BoolVar(&upspeak, "enable-interrogative-upspeak", true, "Apply interrogative upspeak")
	cmd.Flags().StringVar(&out, "out", "out.wav", "Output WAV path ('-' for stdout)")

	return cmd
}

func newTtsCmd() *cobra.Command {
	var text string
	var speaker uint32
	var isKana bool
	var upspeak bool
	var out string

	cmd := &cobra.Command{
		Use:   "tts",
		Short: "Synthesize text to WAV in one step (audio_query + synthesis)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			input, err := readSynthInput(text, os.Stdin)
			if err != nil {
				return err
			}

			engine, err := buildSynthesizer(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			wav, err := engine.Tts(cmd.Context(), input, registry.StyleID(speaker), isKana, upspeak)
			if err != nil {
				return err
			}

			return writeBytesOutput(out, wav)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to synthesize (if empty, read from stdin)")
	cmd.Flags().Uint32Var(&speaker, "speaker", 0, "Style id to synthesize against")
	cmd.Flags().BoolVar(&isKana, "is-kana", false, "Treat --text as AquesTalk-style kana")
	cmd.Flags().BoolVar(&upspeak, "enable-interrogative-upspeak", true, "Apply interrogative upspeak")
	cmd.Flags().StringVar(&out, "out", "out.wav", "Output WAV path ('-' for stdout)")

	return cmd
}

func readSynthInput(text string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	input := strings.TrimSpace(string(b))
	if input == "" {
		return "", fmt.Errorf("either provide --text or pipe text on stdin")
	}
	return input, nil
}

func readAllInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func writeJSONOutput(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	data = append(data, '\n')
	return writeBytesOutput(path, data)
}

func writeBytesOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
