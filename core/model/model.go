// Package model loads the per-substation forecasting artifacts and scores
// feature frames with them. Each substation owns an ensemble of additive base
// learners plus two single-feature correction curves: a trend curve for slow
// drift and a shrink curve rescaling the seasonal amplitude, both over the
// approximate full-hours index.
package model

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/mrapplexz/hack-digital-ambulance/core/features"
)

// Kind tags a serialized artifact.
type Kind string

const (
	KindBase   Kind = "base"
	KindTrend  Kind = "trend"
	KindShrink Kind = "shrink"
)

// ArtifactLayoutError reports a substation directory that does not contain
// the required artifact set. Fatal at load time.
type ArtifactLayoutError struct {
	Location string
	Reason   string
}

func (e *ArtifactLayoutError) Error() string {
	return fmt.Sprintf("model: artifact layout for %q: %s", e.Location, e.Reason)
}

// NumericInstabilityError reports a non-finite model output. There is no
// silent substitution: scoring aborts.
type NumericInstabilityError struct {
	Location string
	Row      int
}

func (e *NumericInstabilityError) Error() string {
	return fmt.Sprintf("model: non-finite output for %q at row %d", e.Location, e.Row)
}

// BaseLearner is one member of the averaging ensemble. It is an additive
// model over the full feature schema: categorical columns contribute through
// per-category lookup tables, numeric columns through linear weights. The
// per-column contributions therefore sum exactly to the score, which is what
// makes the attribution reconstruction additive.
type BaseLearner struct {
	Bias        float64                       `json:"bias"`
	Categorical map[string]map[string]float64 `json:"categorical"`
	Numeric     map[string]float64            `json:"numeric"`
}

// Contributions returns the per-column contribution vector for the row, in
// frame schema order, with the bias appended last. The sum of the returned
// slice equals Score for the same row.
func (b *BaseLearner) Contributions(frame *features.Frame, row int) []float64 {
	out := make([]float64, len(frame.Columns)+1)
	for j, col := range frame.Columns {
		v := frame.Rows[row][j]
		if table, ok := b.Categorical[col]; ok {
			out[j] = table[strconv.Itoa(int(v))]
			continue
		}
		if w, ok := b.Numeric[col]; ok {
			out[j] = w * v
		}
	}
	out[len(out)-1] = b.Bias
	return out
}

// Score returns the learner's raw score for the row.
func (b *BaseLearner) Score(frame *features.Frame, row int) float64 {
	var sum float64
	for _, c := range b.Contributions(frame, row) {
		sum += c
	}
	return sum
}

// Curve is a single-feature polynomial model over the full-hours index, used
// for both the trend and shrink artifacts.
type Curve struct {
	Coeffs []float64 `json:"coeffs"`
}

// Predict evaluates the polynomial at x.
func (c *Curve) Predict(x float64) float64 {
	var y float64
	for i := len(c.Coeffs) - 1; i >= 0; i-- {
		y = y*x + c.Coeffs[i]
	}
	return y
}

type baseArtifact struct {
	Kind Kind `json:"kind"`
	BaseLearner
}

type curveArtifact struct {
	Kind Kind `json:"kind"`
	Curve
}

func loadBase(path, location string) (*BaseLearner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	var art baseArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	if art.Kind != KindBase {
		return nil, &ArtifactLayoutError{Location: location, Reason: fmt.Sprintf("%s tagged %q, expected %q", path, art.Kind, KindBase)}
	}
	return &art.BaseLearner, nil
}

func loadCurve(path, location string, want Kind) (*Curve, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	var art curveArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	if art.Kind != want {
		return nil, &ArtifactLayoutError{Location: location, Reason: fmt.Sprintf("%s tagged %q, expected %q", path, art.Kind, want)}
	}
	if len(art.Coeffs) == 0 {
		return nil, &ArtifactLayoutError{Location: location, Reason: fmt.Sprintf("%s has no coefficients", path)}
	}
	return &art.Curve, nil
}
