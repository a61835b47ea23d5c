//go:build cgo

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brunobiangulo/pdfoutline/internal/pdftest"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return stdout.String(), err
}

func TestStoreCommands(t *testing.T) {
	t.Setenv("PDFOUTLINE_STORE_PATH", filepath.Join(t.TempDir(), "outlines.db"))

	in, out := t.TempDir(), t.TempDir()
	doc := pdftest.NewDoc([]pdftest.Line{
		{Text: "Overview", Size: 24, X: 72, Y: 700},
		{Text: "Body text here", Size: 10, X: 72, Y: 650},
		{Text: "More body text", Size: 10, X: 72, Y: 630},
	})
	doc.Title = "Handbook"
	pdfPath := filepath.Join(in, "handbook.pdf")
	doc.WriteFile(t, pdfPath)

	if _, err := execute(t, "run", "-i", in, "-o", out); err != nil {
		t.Fatalf("run: %v", err)
	}

	steps := []struct {
		args []string
		want []string
	}{
		{[]string{"store", "info"}, []string{"Schema version: 1", "Documents: 1"}},
		{[]string{"store", "ls"}, []string{pdfPath, "heuristic", "1 headings"}},
		{[]string{"store", "show", pdfPath}, []string{`"title": "Handbook"`, `"text": "Overview"`}},
		{[]string{"store", "show", "1"}, []string{`"title": "Handbook"`}},
	}
	for _, st := range steps {
		got, err := execute(t, st.args...)
		if err != nil {
			t.Fatalf("%v: %v", st.args, err)
		}
		for _, w := range st.want {
			if !strings.Contains(got, w) {
				t.Errorf("%v output missing %q:\n%s", st.args, w, got)
			}
		}
	}

	if err := os.Remove(pdfPath); err != nil {
		t.Fatal(err)
	}
	got, err := execute(t, "store", "prune")
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if !strings.Contains(got, pdfPath) || !strings.Contains(got, "Removed: 1") {
		t.Errorf("unexpected prune output:\n%s", got)
	}

	got, err = execute(t, "store", "ls")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "No stored documents") {
		t.Errorf("store not empty after prune:\n%s", got)
	}

	if _, err := execute(t, "store", "show", pdfPath); err == nil {
		t.Error("expected error for a pruned document")
	}
}
