package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeLocation(t *testing.T, root, location string, biases ...float64) {
	t.Helper()
	dir := filepath.Join(root, location)
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for i, b := range biases {
		writeFile(t, filepath.Join(dir, fmt.Sprintf("model_%d.json", i)),
			fmt.Sprintf(`{"kind":"base","bias":%v,"categorical":{},"numeric":{}}`, b))
	}
	writeFile(t, filepath.Join(dir, "trend.json"), `{"kind":"trend","coeffs":[2]}`)
	writeFile(t, filepath.Join(dir, "shrink.json"), `{"kind":"shrink","coeffs":[1.1]}`)
}

func TestLoadRegistry(t *testing.T) {
	root := t.TempDir()
	writeLocation(t, root, "north", 10, 12, 14)
	writeLocation(t, root, "east", 3)

	r, err := LoadRegistry(root)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	if !reflect.DeepEqual(r.Locations(), []string{"east", "north"}) {
		t.Fatalf("locations: %v", r.Locations())
	}
	north, ok := r.Model("north")
	if !ok {
		t.Fatalf("missing model north")
	}
	if len(north.Learners) != 3 {
		t.Fatalf("north learners: %d", len(north.Learners))
	}
	if north.Trend.Predict(0) != 2 || north.Shrink.Predict(0) != 1.1 {
		t.Fatalf("curves not loaded")
	}
	if r.Fingerprint() == "" {
		t.Fatalf("empty fingerprint")
	}
}

func TestLoadRegistryMissingTrendIsFatal(t *testing.T) {
	root := t.TempDir()
	writeLocation(t, root, "north", 10)
	if err := os.Remove(filepath.Join(root, "north", "trend.json")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	_, err := LoadRegistry(root)
	var layoutErr *ArtifactLayoutError
	if !errors.As(err, &layoutErr) {
		t.Fatalf("expected ArtifactLayoutError, got %v", err)
	}
}

func TestLoadRegistryKindMismatch(t *testing.T) {
	root := t.TempDir()
	writeLocation(t, root, "north", 10)
	// A base artifact in the trend slot must fail the kind check.
	writeFile(t, filepath.Join(root, "north", "trend.json"),
		`{"kind":"base","bias":1,"categorical":{},"numeric":{}}`)
	_, err := LoadRegistry(root)
	var layoutErr *ArtifactLayoutError
	if !errors.As(err, &layoutErr) {
		t.Fatalf("expected ArtifactLayoutError, got %v", err)
	}
}

func TestFingerprintTracksArtifacts(t *testing.T) {
	root := t.TempDir()
	writeLocation(t, root, "north", 10)
	a, err := LoadRegistry(root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b, err := LoadRegistry(root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("fingerprint not deterministic")
	}
	writeFile(t, filepath.Join(root, "north", "trend.json"), `{"kind":"trend","coeffs":[3]}`)
	c, err := LoadRegistry(root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Fingerprint() == a.Fingerprint() {
		t.Fatalf("fingerprint did not change with artifact content")
	}
}
