package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Registry holds the loaded target models, one per substation directory under
// the artifact root. It is constructed once at startup and read-only after.
type Registry struct {
	models      map[string]*TargetModel
	locations   []string
	fingerprint string
}

// LoadRegistry scans the artifact root (one directory per substation),
// classifies and loads every artifact set. Any malformed directory is fatal:
// the engine never serves a partial substation set.
func LoadRegistry(root string) (*Registry, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read artifact root %s: %w", root, err)
	}
	r := &Registry{models: make(map[string]*TargetModel)}
	h := sha256.New()
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		location := e.Name()
		manifest, err := ReadManifest(filepath.Join(root, location), location)
		if err != nil {
			return nil, err
		}
		tm, err := Load(manifest)
		if err != nil {
			return nil, err
		}
		r.models[location] = tm
		r.locations = append(r.locations, location)
		if err := fingerprintManifest(h, manifest); err != nil {
			return nil, err
		}
	}
	if len(r.locations) == 0 {
		return nil, fmt.Errorf("artifact root %s contains no substation directories", root)
	}
	sort.Strings(r.locations)
	r.fingerprint = hex.EncodeToString(h.Sum(nil))
	return r, nil
}

// Locations returns the substation names in sorted order.
func (r *Registry) Locations() []string {
	return r.locations
}

// Model returns the target model for the substation.
func (r *Registry) Model(location string) (*TargetModel, bool) {
	m, ok := r.models[location]
	return m, ok
}

// Fingerprint identifies the loaded artifact set: a hash over every artifact
// file's path and content. It feeds the snapshot cache key so that swapping
// artifacts invalidates cached results.
func (r *Registry) Fingerprint() string {
	return r.fingerprint
}

func fingerprintManifest(h io.Writer, m Manifest) error {
	paths := append(append([]string{}, m.Base...), m.Trend, m.Shrink)
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("fingerprint %s: %w", p, err)
		}
		fmt.Fprintf(h, "%s/%s\n", m.Location, filepath.Base(p))
		_, err = io.Copy(h, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("fingerprint %s: %w", p, err)
		}
	}
	return nil
}
