// Package archive reads the VVM-style voice model container: a ZIP
// archive holding three named ONNX graph blobs and a metadata.json
// describing the speakers/styles the model contributes.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/example/voicekit/internal/inference"
	"github.com/example/voicekit/internal/voicekiterr"
)

// StyleMeta is one voice style a speaker exposes.
type StyleMeta struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

// SpeakerMeta is one speaker entry from metadata.json, carrying the
// styles that speaker contributes.
type SpeakerMeta struct {
	Name        string      `json:"name"`
	SpeakerUUID uuid.UUID   `json:"speaker_uuid"`
	Styles      []StyleMeta `json:"styles"`
	Version     string      `json:"version"`
}

// VoiceModel is a fully extracted voice model: the three graph blobs
// keyed by inference.GraphNames entry, plus speaker metadata.
type VoiceModel struct {
	ID     uuid.UUID
	Graphs map[string][]byte
	Metas  []SpeakerMeta
}

const metadataEntry = "metadata.json"

// Open extracts a voice model container from path, generating a fresh
// model ID (the archive itself carries no id; OpenBytes assigns a new
// random one on every open).
func Open(path string) (*VoiceModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, voicekiterr.Wrap(voicekiterr.KindLoadModelOpenZipFile, err, "open %q", path)
	}

	return OpenBytes(data)
}

// OpenBytes extracts a voice model container from an in-memory zip.
func OpenBytes(data []byte) (*VoiceModel, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, voicekiterr.Wrap(voicekiterr.KindLoadModelOpenZipFile, err, "not a zip archive")
	}

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		cleaned, err := safeEntryName(f.Name)
		if err != nil {
			return nil, voicekiterr.Wrap(voicekiterr.KindLoadModelReadZipEntry, err, "entry %q", f.Name)
		}

		entries[cleaned] = f
	}

	metaFile, ok := entries[metadataEntry]
	if !ok {
		return nil, voicekiterr.New(voicekiterr.KindLoadModelInvalidModelData, "missing %s", metadataEntry)
	}

	metaBytes, err := readZipEntry(metaFile)
	if err != nil {
		return nil, voicekiterr.Wrap(voicekiterr.KindLoadModelReadZipEntry, err, "read %s", metadataEntry)
	}

	var metas []SpeakerMeta
	if err := json.Unmarshal(metaBytes, &metas); err != nil {
		return nil, voicekiterr.Wrap(voicekiterr.KindLoadModelInvalidModelData, err, "decode %s", metadataEntry)
	}

	if len(metas) == 0 {
		return nil, voicekiterr.New(voicekiterr.KindLoadModelInvalidModelData, "%s lists no speakers", metadataEntry)
	}

	graphs := make(map[string][]byte, len(inference.GraphNames))
	for _, name := range inference.GraphNames {
		f, ok := entries[name+".onnx"]
		if !ok {
			return nil, voicekiterr.New(voicekiterr.KindLoadModelInvalidModelData, "missing %s.onnx graph", name)
		}

		blob, err := readZipEntry(f)
		if err != nil {
			return nil, voicekiterr.Wrap(voicekiterr.KindLoadModelReadZipEntry, err, "read %s.onnx", name)
		}

		if len(blob) == 0 {
			return nil, voicekiterr.New(voicekiterr.KindLoadModelInvalidModelData, "%s.onnx is empty", name)
		}

		graphs[name] = blob
	}

	return &VoiceModel{ID: uuid.New(), Graphs: graphs, Metas: metas}, nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// safeEntryName guards against zip-slip path traversal: every entry
// must resolve to a path under the archive root once cleaned.
func safeEntryName(name string) (string, error) {
	cleaned := filepath.Clean(strings.ReplaceAll(name, "\\", "/"))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("entry %q escapes archive root", name)
	}

	return cleaned, nil
}
