package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedMessages(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, key := range []string{"error.validation", "error.parse", "error.not_found", "error.conflict", "error.address", "error.internal", "board.caption", "menu.prompt"} {
		if !c.Has(key) {
			t.Fatalf("missing key %s", key)
		}
	}
	got, err := c.Render("error.conflict", map[string]any{"ID": "G", "OriginPage": "Openings"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, "G") || !strings.Contains(got, "Openings") {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestRenderMissingData(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Render("error.conflict", map[string]any{"ID": "G"}); err == nil {
		t.Fatalf("expected missingkey error")
	}
	if got := c.Text("error.conflict", map[string]any{"ID": "G"}, "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := c.Text("no.such.key", nil, "fb"); got != "fb" {
		t.Fatalf("expected fallback for unknown key, got %q", got)
	}
}

func TestOverrides(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("menu:\n  prompt: \"Jump to\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, _ := c.Render("menu.prompt", nil); got != "Jump to" {
		t.Fatalf("override not applied: %q", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "b.yml"), []byte("menu:\n  prompt: \"Other\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestOverrideRejectsBadTemplate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("menu:\n  prompt: \"{{.Broken\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("expected template parse error")
	}
}
