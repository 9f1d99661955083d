package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/shabarka/autoimpute/core/model"
	"github.com/shabarka/autoimpute/pkg/errors"
)

// StandardScaler standardizes features to zero mean and unit variance.
//
// Statistics are computed over observed cells only: NaN cells, which
// mark missing values in numeric blocks, are skipped during Fit and
// pass through Transform unchanged.
type StandardScaler struct {
	state *model.StateManager

	// Mean holds the per-feature mean.
	Mean []float64

	// Scale holds the per-feature standard deviation.
	Scale []float64

	// NFeatures is the number of features seen during Fit.
	NFeatures int

	// WithMean controls whether the mean is subtracted (default true).
	WithMean bool

	// WithStd controls whether values are divided by the standard
	// deviation (default true).
	WithStd bool
}

// NewStandardScaler creates a StandardScaler.
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		state:    model.NewStateManager(),
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault creates a StandardScaler with default settings.
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit computes the per-feature mean and standard deviation of X,
// ignoring NaN cells.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	for j := 0; j < c; j++ {
		sum, n := 0.0, 0
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			sum += v
			n++
		}
		if s.WithMean && n > 0 {
			s.Mean[j] = sum / float64(n)
		}

		s.Scale[j] = 1.0
		if s.WithStd && n > 0 {
			sumSquares := 0.0
			for i := 0; i < r; i++ {
				v := X.At(i, j)
				if math.IsNaN(v) {
					continue
				}
				diff := v - s.Mean[j]
				sumSquares += diff * diff
			}
			sd := math.Sqrt(sumSquares / float64(n))
			// Near-constant features keep scale 1 to avoid division by zero.
			if sd > 1e-8 {
				s.Scale[j] = sd
			}
		}
	}

	s.state.SetDimensions(c, r)
	s.state.SetFitted()
	return nil
}

// Transform standardizes X with the fitted statistics. NaN cells are
// returned unchanged.
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("StandardScaler", "Transform"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				result.Set(i, j, v)
				continue
			}
			result.Set(i, j, (v-s.Mean[j])/s.Scale[j])
		}
	}
	return result, nil
}

// FitTransform fits on X and returns the transformed X.
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// Clone returns an unfitted copy with the same hyperparameters.
func (s *StandardScaler) Clone() model.Scaler {
	return NewStandardScaler(s.WithMean, s.WithStd)
}

// GetParams returns the scaler's hyperparameters.
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
	}
}

// String returns a description of the scaler.
func (s *StandardScaler) String() string {
	if !s.state.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures)
}

// MinMaxScaler scales features to a fixed range, [0, 1] by default.
// Like StandardScaler it skips NaN cells when fitting and leaves them
// unchanged when transforming.
type MinMaxScaler struct {
	state *model.StateManager

	// DataMin holds the per-feature minimum observed during Fit.
	DataMin []float64

	// DataMax holds the per-feature maximum observed during Fit.
	DataMax []float64

	// NFeatures is the number of features seen during Fit.
	NFeatures int

	// FeatureRange is the target range after scaling.
	FeatureRange [2]float64
}

// NewMinMaxScaler creates a MinMaxScaler targeting the given range.
func NewMinMaxScaler(featureRange [2]float64) *MinMaxScaler {
	return &MinMaxScaler{
		state:        model.NewStateManager(),
		FeatureRange: featureRange,
	}
}

// NewMinMaxScalerDefault creates a MinMaxScaler targeting [0, 1].
func NewMinMaxScalerDefault() *MinMaxScaler {
	return NewMinMaxScaler([2]float64{0.0, 1.0})
}

// Fit records the per-feature minimum and maximum of X, ignoring NaN
// cells.
func (m *MinMaxScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("MinMaxScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	m.NFeatures = c
	m.DataMin = make([]float64, c)
	m.DataMax = make([]float64, c)

	for j := 0; j < c; j++ {
		lo, hi, seen := math.Inf(1), math.Inf(-1), false
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			seen = true
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if !seen {
			lo, hi = 0, 0
		}
		m.DataMin[j] = lo
		m.DataMax[j] = hi
	}

	m.state.SetDimensions(c, r)
	m.state.SetFitted()
	return nil
}

// Transform scales X into the target range. Constant features map to
// the lower bound of the range. NaN cells are returned unchanged.
func (m *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.state.RequireFitted("MinMaxScaler", "Transform"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != m.NFeatures {
		return nil, errors.NewDimensionError("MinMaxScaler.Transform", m.NFeatures, c, 1)
	}

	lo, hi := m.FeatureRange[0], m.FeatureRange[1]
	result := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		span := m.DataMax[j] - m.DataMin[j]
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				result.Set(i, j, v)
				continue
			}
			if span == 0 {
				result.Set(i, j, lo)
				continue
			}
			result.Set(i, j, lo+(v-m.DataMin[j])/span*(hi-lo))
		}
	}
	return result, nil
}

// FitTransform fits on X and returns the transformed X.
func (m *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// Clone returns an unfitted copy with the same hyperparameters.
func (m *MinMaxScaler) Clone() model.Scaler {
	return NewMinMaxScaler(m.FeatureRange)
}

// GetParams returns the scaler's hyperparameters.
func (m *MinMaxScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"feature_range": m.FeatureRange,
	}
}

// String returns a description of the scaler.
func (m *MinMaxScaler) String() string {
	if !m.state.IsFitted() {
		return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f])",
			m.FeatureRange[0], m.FeatureRange[1])
	}
	return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f], n_features=%d)",
		m.FeatureRange[0], m.FeatureRange[1], m.NFeatures)
}
