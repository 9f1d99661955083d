package missingness

import (
	"gonum.org/v1/gonum/mat"

	"github.com/shabarka/autoimpute/core/model"
	"github.com/shabarka/autoimpute/core/parallel"
	"github.com/shabarka/autoimpute/dataset"
	"github.com/shabarka/autoimpute/pkg/errors"
	"github.com/shabarka/autoimpute/pkg/log"
)

// predSuffix is appended to input column names in result tables.
const predSuffix = "_pred"

// Predict returns hard missingness predictions: one 0/1 column named
// "<column>_pred" per retained input column. Pass newData true when t
// differs from the fitted data so preprocessing reruns; false reuses
// the fit-time encoding. The result is also stored on the instance.
func (mc *Classifier) Predict(t *dataset.Table, newData bool) (*dataset.Table, error) {
	if err := mc.prePredict(t, newData, "Predict"); err != nil {
		return nil, err
	}
	if mc.verbose {
		mc.logger.Info("predicting class membership", log.OperationKey, "predict")
	}

	result, err := mc.applyColumns("predict", func(clf model.Classifier, x *mat.Dense) (mat.Matrix, error) {
		return clf.Predict(x)
	}, func(out mat.Matrix, i int) float64 {
		return out.At(i, 0)
	})
	if err != nil {
		return nil, err
	}
	mc.preds = result
	return result, nil
}

// PredictProba returns the predicted probability of missingness in
// [0, 1]: one column named "<column>_pred" per retained input column.
// The result is also stored on the instance for reuse by the test-case
// generator.
func (mc *Classifier) PredictProba(t *dataset.Table, newData bool) (*dataset.Table, error) {
	if err := mc.prePredict(t, newData, "PredictProba"); err != nil {
		return nil, err
	}
	if mc.verbose {
		mc.logger.Info("predicting class probability", log.OperationKey, "predict_proba")
	}

	result, err := mc.applyColumns("predict_proba", func(clf model.Classifier, x *mat.Dense) (mat.Matrix, error) {
		return clf.PredictProba(x)
	}, func(out mat.Matrix, i int) float64 {
		return out.At(i, 1)
	})
	if err != nil {
		return nil, err
	}
	mc.proba = result
	return result, nil
}

// FitPredict fits on t and returns hard missingness predictions for it.
func (mc *Classifier) FitPredict(t *dataset.Table) (*dataset.Table, error) {
	if err := mc.Fit(t); err != nil {
		return nil, err
	}
	return mc.Predict(t, false)
}

// FitPredictProba fits on t and returns missingness probabilities for it.
func (mc *Classifier) FitPredictProba(t *dataset.Table) (*dataset.Table, error) {
	if err := mc.Fit(t); err != nil {
		return nil, err
	}
	return mc.PredictProba(t, false)
}

// prePredict validates fitted state and column-set consistency, then
// refreshes the working encoding when the caller brings new data.
func (mc *Classifier) prePredict(t *dataset.Table, newData bool, method string) error {
	if err := mc.state.RequireFitted("MissingnessClassifier", method); err != nil {
		return err
	}

	// The column set must match the fit-time retained set exactly,
	// ignoring columns already dropped at fit time. Checked before any
	// per-column work.
	dropped := make(map[string]bool)
	for _, name := range mc.encoder.Dropped() {
		dropped[name] = true
	}
	retained := make(map[string]bool)
	for _, name := range mc.encoder.Retained() {
		retained[name] = true
	}
	var extra []string
	seen := make(map[string]bool)
	for _, name := range t.ColumnNames() {
		if dropped[name] {
			continue
		}
		seen[name] = true
		if !retained[name] {
			extra = append(extra, name)
		}
	}
	var missing []string
	for _, name := range mc.encoder.Retained() {
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		return errors.NewColumnMismatchError(missing, extra)
	}

	if newData {
		enc, err := mc.encoder.Transform(t)
		if err != nil {
			return errors.Wrap(err, "missingness predict: preprocessing failed")
		}
		mc.enc = enc
		mc.encScaled = false
	}
	if !mc.encScaled {
		if err := mc.applyScalers(mc.enc); err != nil {
			return err
		}
		mc.encScaled = true
	}
	return nil
}

// applyColumns rebuilds each retained column's predictor matrix,
// applies that column's stored classifier in parallel, and assembles
// one result column per input column.
func (mc *Classifier) applyColumns(op string, apply func(model.Classifier, *mat.Dense) (mat.Matrix, error), cell func(mat.Matrix, int) float64) (*dataset.Table, error) {
	columns := mc.encoder.Retained()
	jobs := make([]columnJob, len(columns))
	for i, c := range columns {
		x, numNames, dumNames, err := mc.enc.PredictorMatrix(c)
		if err != nil {
			return nil, err
		}
		jobs[i] = columnJob{column: c, x: x}
		if mc.verbose {
			mc.logger.Info("columns used",
				log.OperationKey, op,
				log.ColumnKey, c,
				"numeric", numNames,
				"categorical", dumNames,
			)
		}
	}

	outputs := make([]mat.Matrix, len(jobs))
	errs := make([]error, len(jobs))
	parallel.ParallelizeWithThreshold(len(jobs), 1, func(start, end int) {
		for i := start; i < end; i++ {
			out, err := apply(mc.models[jobs[i].column], jobs[i].x)
			if err != nil {
				errs[i] = errors.Wrapf(err, "predicting column %q", jobs[i].column)
				continue
			}
			outputs[i] = out
		}
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	resultCols := make([]*dataset.Column, len(jobs))
	for i, job := range jobs {
		vals := make([]float64, mc.enc.NRows)
		for r := 0; r < mc.enc.NRows; r++ {
			vals[r] = cell(outputs[i], r)
		}
		resultCols[i] = dataset.NewNumeric(job.column+predSuffix, vals)
	}
	return dataset.New(resultCols...)
}
