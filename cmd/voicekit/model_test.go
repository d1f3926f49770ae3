package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewModelListCmd_ListsArchivesAndSkipsOthers(t *testing.T) {
	dir := t.TempDir()
	writeTestVVM(t, dir, "a.vvm")

	orig := activeCfg
	t.Cleanup(func() { activeCfg = orig })
	activeCfg.Paths.ModelsDir = dir

	cmd := newModelListCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("RunE failed: %v", err)
	}

	if !strings.Contains(out.String(), "Test Speaker") {
		t.Errorf("expected output to list speaker, got: %s", out.String())
	}
}

func TestNewModelInspectCmd_PrintsMetadata(t *testing.T) {
	dir := t.TempDir()
	path := writeTestVVM(t, dir, "a.vvm")

	cmd := newModelInspectCmd()
	if err := cmd.RunE(cmd, []string{path}); err != nil {
		t.Fatalf("RunE failed: %v", err)
	}
}
