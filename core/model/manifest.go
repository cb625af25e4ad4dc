package model

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Manifest is the classified artifact set of one substation directory: every
// file not matching the trend or shrink markers is a base learner, and there
// must be exactly one trend file and exactly one shrink file.
type Manifest struct {
	Location string
	Base     []string
	Trend    string
	Shrink   string
}

const (
	trendMarker  = "trend"
	shrinkMarker = "shrink"
)

// Classify assigns artifact file names to manifest slots by the trend/shrink
// naming markers. It is the single place the naming convention lives.
func Classify(location string, names []string) (Manifest, error) {
	m := Manifest{Location: location}
	var trend, shrink []string
	for _, name := range names {
		switch {
		case strings.Contains(name, trendMarker):
			trend = append(trend, name)
		case strings.Contains(name, shrinkMarker):
			shrink = append(shrink, name)
		default:
			m.Base = append(m.Base, name)
		}
	}
	sort.Strings(m.Base)
	if len(trend) != 1 {
		return Manifest{}, &ArtifactLayoutError{Location: location, Reason: fmt.Sprintf("expected exactly one trend artifact, found %d", len(trend))}
	}
	if len(shrink) != 1 {
		return Manifest{}, &ArtifactLayoutError{Location: location, Reason: fmt.Sprintf("expected exactly one shrink artifact, found %d", len(shrink))}
	}
	if len(m.Base) == 0 {
		return Manifest{}, &ArtifactLayoutError{Location: location, Reason: "no base learner artifacts"}
	}
	m.Trend = trend[0]
	m.Shrink = shrink[0]
	return m, nil
}

// ReadManifest classifies the files of one substation directory.
func ReadManifest(dir, location string) (Manifest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Manifest{}, fmt.Errorf("read artifact dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	m, err := Classify(location, names)
	if err != nil {
		return Manifest{}, err
	}
	for i, name := range m.Base {
		m.Base[i] = filepath.Join(dir, name)
	}
	m.Trend = filepath.Join(dir, m.Trend)
	m.Shrink = filepath.Join(dir, m.Shrink)
	return m, nil
}
