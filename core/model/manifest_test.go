package model

import (
	"errors"
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	m, err := Classify("north", []string{"model_2.pkl.json", "trend.json", "model_1.pkl.json", "shrink.json"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if !reflect.DeepEqual(m.Base, []string{"model_1.pkl.json", "model_2.pkl.json"}) {
		t.Fatalf("base files: %v", m.Base)
	}
	if m.Trend != "trend.json" || m.Shrink != "shrink.json" {
		t.Fatalf("trend/shrink: %q / %q", m.Trend, m.Shrink)
	}
}

func TestClassifyLayoutErrors(t *testing.T) {
	cases := []struct {
		name  string
		files []string
	}{
		{"no trend", []string{"model_1.json", "shrink.json"}},
		{"two trends", []string{"model_1.json", "trend_a.json", "trend_b.json", "shrink.json"}},
		{"no shrink", []string{"model_1.json", "trend.json"}},
		{"two shrinks", []string{"model_1.json", "trend.json", "shrink_a.json", "shrink_b.json"}},
		{"no base", []string{"trend.json", "shrink.json"}},
	}
	for _, tc := range cases {
		_, err := Classify("north", tc.files)
		var layoutErr *ArtifactLayoutError
		if !errors.As(err, &layoutErr) {
			t.Fatalf("%s: expected ArtifactLayoutError, got %v", tc.name, err)
		}
	}
}
