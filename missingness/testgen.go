package missingness

import (
	"math"

	"github.com/shabarka/autoimpute/dataset"
	"github.com/shabarka/autoimpute/pkg/errors"
	"github.com/shabarka/autoimpute/pkg/log"
)

// testConfig collects the tunables of test-case generation.
type testConfig struct {
	threshold   float64
	minFraction float64
	newData     bool
	inPlace     bool
	reuse       bool
}

// TestOption is a functional option for GenerateTestIndices and
// GenerateTestDataset.
type TestOption func(*testConfig)

// WithThreshold sets the missingness-probability threshold above which
// an observed value is flagged as a test case. Default 0.5.
func WithThreshold(t float64) TestOption {
	return func(c *testConfig) { c.threshold = t }
}

// WithMinFraction sets the fraction of rows expected to be flagged per
// column; falling at or below it raises a SparseTestCasesWarning.
// Default 0.05. Only GenerateTestDataset consults it.
func WithMinFraction(m float64) TestOption {
	return func(c *testConfig) { c.minFraction = m }
}

// WithNewData marks the table as differing from the fitted data so
// preprocessing reruns during the internal prediction pass.
func WithNewData(v bool) TestOption {
	return func(c *testConfig) { c.newData = v }
}

// InPlace makes GenerateTestDataset mask the caller's table directly
// instead of a copy.
func InPlace() TestOption {
	return func(c *testConfig) { c.inPlace = true }
}

// ReuseExisting skips the fit + probability-prediction pass and reuses
// the instance's stored probabilities. Test values can change between
// datasets, so reuse only when the data is unchanged.
func ReuseExisting() TestOption {
	return func(c *testConfig) { c.reuse = true }
}

func newTestConfig(opts []TestOption) testConfig {
	cfg := testConfig{threshold: 0.5, minFraction: 0.05}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// GenerateTestIndices returns, per retained column, the sorted row
// indices of false positives: values actually observed whose predicted
// missingness probability exceeds the threshold. Unless ReuseExisting
// is given, it runs fit + probability prediction end to end first. The
// mapping is also stored on the instance.
func (mc *Classifier) GenerateTestIndices(t *dataset.Table, opts ...TestOption) (map[string][]int, error) {
	cfg := newTestConfig(opts)
	return mc.generateTestIndices(t, cfg)
}

func (mc *Classifier) generateTestIndices(t *dataset.Table, cfg testConfig) (map[string][]int, error) {
	if !cfg.reuse {
		if err := mc.Fit(t); err != nil {
			return nil, err
		}
		if _, err := mc.PredictProba(t, cfg.newData); err != nil {
			return nil, err
		}
	}
	if mc.proba == nil {
		return nil, errors.NewNotFittedError("MissingnessClassifier", "GenerateTestIndices")
	}

	indices := make(map[string][]int)
	for j, c := range mc.enc.IndicatorNames {
		probaCol, ok := mc.proba.Column(c + predSuffix)
		if !ok {
			return nil, errors.Newf("no stored probabilities for column %q", c)
		}
		flagged := []int{}
		for i := 0; i < mc.enc.NRows; i++ {
			if mc.enc.Indicator.At(i, j) == 0 && probaCol.Float[i] > cfg.threshold {
				flagged = append(flagged, i)
			}
		}
		indices[c] = flagged
		if mc.verbose {
			mc.logger.Info("test indices selected",
				log.OperationKey, "gen_test_indices",
				log.ColumnKey, c,
				log.ThresholdKey, cfg.threshold,
				log.TestIndicesKey, flagged,
			)
		}
	}

	mc.testIdx = indices
	return indices, nil
}

// GenerateTestDataset returns a dataset with the flagged test-case
// cells set to null: a supervised evaluation set where the hidden truth
// is known. Cells already null in the input are unchanged. A column
// whose flagged count falls at or below minFraction * rows raises a
// SparseTestCasesWarning.
func (mc *Classifier) GenerateTestDataset(t *dataset.Table, opts ...TestOption) (*dataset.Table, error) {
	cfg := newTestConfig(opts)

	out := t
	if !cfg.inPlace {
		out = t.Copy()
	}

	indices, err := mc.generateTestIndices(out, cfg)
	if err != nil {
		return nil, err
	}

	minCount := math.Floor(cfg.minFraction * float64(out.NumRows()))
	for _, c := range mc.encoder.Retained() {
		flagged := indices[c]
		if float64(len(flagged)) <= minCount {
			errors.Warn(errors.NewSparseTestCasesWarning(c, len(flagged), cfg.minFraction))
		}
		col, ok := out.Column(c)
		if !ok {
			continue
		}
		for _, i := range flagged {
			col.SetMissing(i)
		}
	}
	return out, nil
}
