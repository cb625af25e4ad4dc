package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/mrapplexz/hack-digital-ambulance/core/features"
)

// TargetModel is the complete model bundle of one substation. It is immutable
// after load and safe to share across scoring workers.
type TargetModel struct {
	Location string
	Learners []*BaseLearner
	Trend    *Curve
	Shrink   *Curve
}

// Scores holds the per-row outputs of one scoring pass. Counts is what the
// system reports; Raw is the pre-rounding, pre-clip score the attribution
// decomposes.
type Scores struct {
	Raw    []float64
	Counts []int
}

// Score runs the ensemble over the frame and applies the trend/shrink
// correction:
//
//	raw = mean(learner scores) * shrink(full_hours) + trend(full_hours)
//
// The reported count is round(raw+0.1) clipped at zero; the +0.1 is a trained
// upward-rounding offset, not a stability fudge. The attribution matrix has
// one row per frame row: per-column weights in schema order plus a trailing
// bias, rescaled so each row still sums to raw.
func (m *TargetModel) Score(frame *features.Frame) (Scores, [][]float64, error) {
	fullIdx, ok := frame.ColumnIndex(features.ColFullHours)
	if !ok {
		return Scores{}, nil, &ArtifactLayoutError{Location: m.Location, Reason: "frame missing full_hours column"}
	}

	n := frame.NumRows()
	out := Scores{Raw: make([]float64, n), Counts: make([]int, n)}
	attrs := make([][]float64, n)
	learnerScores := make([]float64, len(m.Learners))

	for i := 0; i < n; i++ {
		attr := make([]float64, len(frame.Columns)+1)
		for li, learner := range m.Learners {
			contrib := learner.Contributions(frame, i)
			learnerScores[li] = floats.Sum(contrib)
			if math.IsNaN(learnerScores[li]) || math.IsInf(learnerScores[li], 0) {
				return Scores{}, nil, &NumericInstabilityError{Location: m.Location, Row: i}
			}
			floats.Add(attr, contrib)
		}
		floats.Scale(1/float64(len(m.Learners)), attr)
		base := stat.Mean(learnerScores, nil)

		x := frame.Rows[i][fullIdx]
		scale := m.Shrink.Predict(x)
		trend := m.Trend.Predict(x)
		raw := base*scale + trend
		if math.IsNaN(raw) || math.IsInf(raw, 0) {
			return Scores{}, nil, &NumericInstabilityError{Location: m.Location, Row: i}
		}

		// Keep the decomposition additive under the correction: weights pick
		// up the scale factor, the bias absorbs the trend.
		floats.Scale(scale, attr[:len(attr)-1])
		attr[len(attr)-1] = attr[len(attr)-1]*scale + trend

		out.Raw[i] = raw
		count := int(math.Round(raw + 0.1))
		if count < 0 {
			count = 0
		}
		out.Counts[i] = count
		attrs[i] = attr
	}
	return out, attrs, nil
}

// Load reads and validates the artifact set described by the manifest.
func Load(m Manifest) (*TargetModel, error) {
	tm := &TargetModel{Location: m.Location}
	for _, path := range m.Base {
		learner, err := loadBase(path, m.Location)
		if err != nil {
			return nil, err
		}
		tm.Learners = append(tm.Learners, learner)
	}
	trend, err := loadCurve(m.Trend, m.Location, KindTrend)
	if err != nil {
		return nil, err
	}
	shrink, err := loadCurve(m.Shrink, m.Location, KindShrink)
	if err != nil {
		return nil, err
	}
	tm.Trend = trend
	tm.Shrink = shrink
	return tm, nil
}
