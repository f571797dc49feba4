package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"derived from input", "", "people.csv", "people"},
		{"explicit base", "network", "people.csv", "network"},
		{"strips format extension", "network.html", "people.csv", "network"},
		{"keeps unrelated extension", "network.out", "people.csv", "network.out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteArtifactsSingleFormat(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "network.html")

	err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{"html": []byte("<!DOCTYPE html>")},
		formats:   []string{"html"},
		input:     "people.csv",
		output:    out,
		nodes:     3,
		edges:     2,
	})
	if err != nil {
		t.Fatalf("writeArtifacts error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if string(data) != "<!DOCTYPE html>" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestWriteArtifactsMultipleFormats(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "network")

	err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{
			"html": []byte("<!DOCTYPE html>"),
			"svg":  []byte("<svg/>"),
		},
		formats: []string{"html", "svg"},
		input:   "people.csv",
		output:  base,
	})
	if err != nil {
		t.Fatalf("writeArtifacts error: %v", err)
	}

	for _, ext := range []string{"html", "svg"} {
		if _, err := os.Stat(base + "." + ext); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
	}
}

func TestWriteArtifactsMissingFormat(t *testing.T) {
	err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{},
		formats:   []string{"html"},
		input:     "people.csv",
		output:    filepath.Join(t.TempDir(), "network.html"),
	})
	if err == nil {
		t.Error("missing artifact should be an error")
	}
}
