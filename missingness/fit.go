package missingness

import (
	"gonum.org/v1/gonum/mat"

	"github.com/shabarka/autoimpute/core/model"
	"github.com/shabarka/autoimpute/core/parallel"
	"github.com/shabarka/autoimpute/dataset"
	"github.com/shabarka/autoimpute/pkg/errors"
	"github.com/shabarka/autoimpute/pkg/log"
	"github.com/shabarka/autoimpute/preprocessing"
)

// columnJob carries one column's prepared training or prediction input
// through the per-column fan-out.
type columnJob struct {
	column string
	x      *mat.Dense
	y      *mat.Dense
}

// Fit learns one classifier per retained column, each predicting that
// column's missingness indicator from every other column. Per-column
// fits are independent, so they fan out across workers; each worker
// owns its column's clone exclusively and results are merged after the
// wait.
func (mc *Classifier) Fit(t *dataset.Table) error {
	mc.encoder = preprocessing.NewTableEncoder()
	enc, err := mc.encoder.FitTransform(t)
	if err != nil {
		return errors.Wrap(err, "missingness fit: preprocessing failed")
	}
	mc.enc = enc
	mc.encScaled = false
	mc.preds = nil
	mc.proba = nil
	mc.testIdx = nil

	if mc.verbose {
		mc.logger.Info("fitting",
			log.OperationKey, "fit",
			log.RowsKey, enc.NRows,
			log.NumericColumnsKey, len(enc.NumericNames),
			log.DummyColumnsKey, len(enc.DummyNames),
			log.DroppedColumnsKey, enc.Dropped,
		)
	}

	if err := mc.fitScalers(enc); err != nil {
		return err
	}
	if err := mc.applyScalers(enc); err != nil {
		return err
	}
	mc.encScaled = true

	// Prepare every column's matrices sequentially (cheap, and keeps
	// diagnostics ordered), then fit the clones in parallel.
	columns := mc.encoder.Retained()
	jobs := make([]columnJob, len(columns))
	for i, c := range columns {
		x, numNames, dumNames, err := enc.PredictorMatrix(c)
		if err != nil {
			return err
		}
		y, err := enc.TargetVector(c)
		if err != nil {
			return err
		}
		jobs[i] = columnJob{column: c, x: x, y: y}
		if mc.verbose {
			mc.logger.Info("columns used",
				log.OperationKey, "fit",
				log.ColumnKey, c,
				"numeric", numNames,
				"categorical", dumNames,
			)
		}
	}

	fitted := make([]model.Classifier, len(jobs))
	errs := make([]error, len(jobs))
	parallel.ParallelizeWithThreshold(len(jobs), 1, func(start, end int) {
		for i := start; i < end; i++ {
			clf := mc.classifier.Clone()
			if err := clf.Fit(jobs[i].x, jobs[i].y); err != nil {
				errs[i] = errors.Wrapf(err, "fitting column %q", jobs[i].column)
				continue
			}
			fitted[i] = clf
		}
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	mc.models = make(map[string]model.Classifier, len(jobs))
	for i, job := range jobs {
		mc.models[job.column] = fitted[i]
	}

	mc.state.SetDimensions(len(columns), enc.NRows)
	mc.state.SetFitted()
	return nil
}

// fitScalers clones and fits the configured scaler once per non-empty
// block. No scaler configured means a no-op.
func (mc *Classifier) fitScalers(enc *preprocessing.Encoding) error {
	mc.numScaler = nil
	mc.dumScaler = nil
	if mc.scaler == nil {
		return nil
	}
	if enc.Numeric != nil {
		mc.numScaler = mc.scaler.Clone()
		if err := mc.numScaler.Fit(enc.Numeric); err != nil {
			return errors.Wrap(err, "fitting numeric block scaler")
		}
	}
	if enc.Dummies != nil {
		mc.dumScaler = mc.scaler.Clone()
		if err := mc.dumScaler.Fit(enc.Dummies); err != nil {
			return errors.Wrap(err, "fitting dummy block scaler")
		}
	}
	return nil
}

// applyScalers transforms the encoding's blocks in place with the
// fitted scalers.
func (mc *Classifier) applyScalers(enc *preprocessing.Encoding) error {
	if mc.numScaler != nil && enc.Numeric != nil {
		scaled, err := mc.numScaler.Transform(enc.Numeric)
		if err != nil {
			return errors.Wrap(err, "scaling numeric block")
		}
		enc.Numeric.Copy(scaled)
	}
	if mc.dumScaler != nil && enc.Dummies != nil {
		scaled, err := mc.dumScaler.Transform(enc.Dummies)
		if err != nil {
			return errors.Wrap(err, "scaling dummy block")
		}
		enc.Dummies.Copy(scaled)
	}
	return nil
}
