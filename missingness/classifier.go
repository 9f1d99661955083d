// Package missingness implements the per-column missingness classifier
// and the supervised test-case generator built on top of it.
//
// For every column of a table, a cloned classifier is fitted to predict
// that column's missingness indicator from all other columns. Observed
// values the classifiers mistake for missing are the best supervised
// test cases for imputation evaluation: their missingness signature is
// indistinguishable from genuinely missing data, yet their true value
// is known.
package missingness

import (
	"github.com/shabarka/autoimpute/core/model"
	"github.com/shabarka/autoimpute/dataset"
	"github.com/shabarka/autoimpute/ensemble"
	"github.com/shabarka/autoimpute/pkg/log"
	"github.com/shabarka/autoimpute/preprocessing"
)

// Classifier predicts the likelihood of missingness per column of a
// table. The default per-column model is a gradient-boosted tree
// classifier; any model.Classifier can be injected. An optional
// model.Scaler is fitted per block and applied on every pass.
type Classifier struct {
	classifier model.Classifier
	scaler     model.Scaler
	verbose    bool
	logger     log.Logger

	state   *model.StateManager
	encoder *preprocessing.TableEncoder

	// Fitted state: one classifier per retained column, one scaler
	// clone per block.
	models    map[string]model.Classifier
	numScaler model.Scaler
	dumScaler model.Scaler

	// Current encoding and derived results, reused by the test-case
	// generator and readable by visualization collaborators.
	enc       *preprocessing.Encoding
	encScaled bool
	preds     *dataset.Table
	proba     *dataset.Table
	testIdx   map[string][]int
}

// ClassifierOption is a functional option for Classifier.
type ClassifierOption func(*Classifier)

// WithClassifier injects the per-column classifier prototype. The
// model.Classifier interface requires probability prediction, so a
// model without it is rejected at compile time. A nil value keeps the
// default.
func WithClassifier(c model.Classifier) ClassifierOption {
	return func(mc *Classifier) {
		if c != nil {
			mc.classifier = c
		}
	}
}

// WithScaler injects an optional scaler, cloned and fitted
// independently on the numeric and dummy blocks. A nil value means no
// scaling, the default.
func WithScaler(s model.Scaler) ClassifierOption {
	return func(mc *Classifier) {
		mc.scaler = s
	}
}

// WithVerbose enables diagnostic logging of the columns used per fit
// and predict and of selected test indices.
func WithVerbose(v bool) ClassifierOption {
	return func(mc *Classifier) {
		mc.verbose = v
	}
}

// New creates a missingness Classifier with the given options applied
// over the defaults.
func New(opts ...ClassifierOption) *Classifier {
	mc := &Classifier{
		classifier: ensemble.NewGradientBoostingClassifier(),
		state:      model.NewStateManager(),
		logger:     log.GetLoggerWithName("missingness"),
	}
	for _, opt := range opts {
		opt(mc)
	}
	return mc
}

// MissingIndicator returns the missingness indicator matrix and its
// column names from the most recent preprocessing pass, or nil before
// fitting. Read-only for external consumers such as plotting.
func (mc *Classifier) MissingIndicator() (names []string, indicator [][]float64) {
	if mc.enc == nil {
		return nil, nil
	}
	names = append([]string(nil), mc.enc.IndicatorNames...)
	indicator = make([][]float64, mc.enc.NRows)
	for i := 0; i < mc.enc.NRows; i++ {
		row := make([]float64, len(names))
		for j := range names {
			row[j] = mc.enc.Indicator.At(i, j)
		}
		indicator[i] = row
	}
	return names, indicator
}

// Predictions returns the stored class-prediction table from the most
// recent Predict call, or nil.
func (mc *Classifier) Predictions() *dataset.Table {
	return mc.preds
}

// Probabilities returns the stored probability table from the most
// recent PredictProba call, or nil.
func (mc *Classifier) Probabilities() *dataset.Table {
	return mc.proba
}

// TestIndices returns the stored per-column test-case indices from the
// most recent generation call, or nil.
func (mc *Classifier) TestIndices() map[string][]int {
	return mc.testIdx
}

// DroppedColumns returns the columns excluded at fit time for being
// entirely null, or nil before fitting.
func (mc *Classifier) DroppedColumns() []string {
	if mc.encoder == nil {
		return nil
	}
	return mc.encoder.Dropped()
}
