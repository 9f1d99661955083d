package preprocessing

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/shabarka/autoimpute/core/model"
	"github.com/shabarka/autoimpute/dataset"
	"github.com/shabarka/autoimpute/pkg/errors"
)

// Encoding is the derived view of a table produced by a TableEncoder
// pass: the numeric block, the one-hot dummy block, and the binary
// missingness indicator matrix. Matrices are nil when the corresponding
// block has no columns.
type Encoding struct {
	// NumericNames are the numeric block's column names, in table order.
	NumericNames []string
	// Numeric is the n x len(NumericNames) block; NaN marks missing cells.
	Numeric *mat.Dense

	// DummyNames are the dummy block's column names, "<column>_<category>".
	DummyNames []string
	// DummyOwner maps each dummy column back to the categorical column
	// it was derived from, index-parallel to DummyNames.
	DummyOwner []string
	// Dummies is the n x len(DummyNames) block of 0/1 memberships. A
	// missing or unseen category encodes to an all-zero row.
	Dummies *mat.Dense

	// IndicatorNames are the retained columns, in fit order.
	IndicatorNames []string
	// Indicator is the n x len(IndicatorNames) missingness matrix:
	// 1 where the table cell was null, 0 otherwise.
	Indicator *mat.Dense

	// Dropped are columns excluded because they were entirely null at
	// fit time.
	Dropped []string

	// NRows is the number of rows encoded.
	NRows int
}

// TargetVector returns the missingness indicator for one retained
// column as an n x 1 matrix, the fitting target for that column's
// classifier.
func (e *Encoding) TargetVector(column string) (*mat.Dense, error) {
	for j, name := range e.IndicatorNames {
		if name != column {
			continue
		}
		y := mat.NewDense(e.NRows, 1, nil)
		for i := 0; i < e.NRows; i++ {
			y.Set(i, 0, e.Indicator.At(i, j))
		}
		return y, nil
	}
	return nil, errors.NewValidationError("column", "not a retained column", column)
}

// PredictorMatrix assembles the feature matrix for predicting the
// target column's missingness, excluding the target's own signal: a
// numeric target is dropped from the numeric block, a categorical
// target's dummy columns are dropped from the dummy block. The names of
// the numeric and dummy columns used are returned for diagnostics.
func (e *Encoding) PredictorMatrix(target string) (*mat.Dense, []string, []string, error) {
	numIdx := make([]int, 0, len(e.NumericNames))
	numNames := make([]string, 0, len(e.NumericNames))
	for j, name := range e.NumericNames {
		if name == target {
			continue
		}
		numIdx = append(numIdx, j)
		numNames = append(numNames, name)
	}

	dumIdx := make([]int, 0, len(e.DummyNames))
	dumNames := make([]string, 0, len(e.DummyNames))
	for j, name := range e.DummyNames {
		if e.DummyOwner[j] == target {
			continue
		}
		dumIdx = append(dumIdx, j)
		dumNames = append(dumNames, name)
	}

	width := len(numIdx) + len(dumIdx)
	if width == 0 {
		return nil, nil, nil, errors.NewNoPredictorsError(target)
	}

	x := mat.NewDense(e.NRows, width, nil)
	for i := 0; i < e.NRows; i++ {
		for k, j := range numIdx {
			x.Set(i, k, e.Numeric.At(i, j))
		}
		for k, j := range dumIdx {
			x.Set(i, len(numIdx)+k, e.Dummies.At(i, j))
		}
	}
	return x, numNames, dumNames, nil
}

// TableEncoder splits a table into numeric and one-hot-encoded
// categorical blocks and builds its missingness indicator matrix.
//
// FitTransform learns the column layout and, for each categorical
// column, freezes the vocabulary of observed categories. Transform
// re-encodes new data against the frozen layout: unseen categories
// encode to all-zero rows and fit-time categories absent from the new
// data still produce (zero) columns, so block shapes always match the
// fitted state. Columns that were entirely null at fit time are
// remembered and dropped from later data with a warning.
type TableEncoder struct {
	state *model.StateManager

	numNames []string
	catNames []string
	vocab    map[string][]string // frozen categories per categorical column
	retained []string            // fit-time column order, numeric and categorical
	dropped  []string
}

// NewTableEncoder creates an unfitted TableEncoder.
func NewTableEncoder() *TableEncoder {
	return &TableEncoder{state: model.NewStateManager()}
}

// Dropped returns the columns excluded at fit time for being entirely
// null.
func (enc *TableEncoder) Dropped() []string {
	return enc.dropped
}

// Retained returns the fit-time column names, in table order.
func (enc *TableEncoder) Retained() []string {
	return enc.retained
}

// FitTransform learns the encoding layout from the table and returns
// its encoding.
func (enc *TableEncoder) FitTransform(t *dataset.Table) (*Encoding, error) {
	if t.NumRows() == 0 {
		return nil, errors.NewModelError("TableEncoder.FitTransform", "empty table", errors.ErrEmptyData)
	}

	enc.numNames = enc.numNames[:0]
	enc.catNames = enc.catNames[:0]
	enc.retained = enc.retained[:0]
	enc.dropped = enc.dropped[:0]
	enc.vocab = make(map[string][]string)

	for _, col := range t.Columns() {
		if col.AllMissing() {
			enc.dropped = append(enc.dropped, col.Name)
			continue
		}
		enc.retained = append(enc.retained, col.Name)
		if col.Kind == dataset.Numeric {
			enc.numNames = append(enc.numNames, col.Name)
		} else {
			enc.catNames = append(enc.catNames, col.Name)
			enc.vocab[col.Name] = observedCategories(col)
		}
	}
	if len(enc.dropped) > 0 {
		errors.Warn(errors.NewDroppedColumnWarning(enc.dropped, "fit"))
	}
	if len(enc.retained) == 0 {
		return nil, errors.NewModelError("TableEncoder.FitTransform", "all columns entirely null", errors.ErrEmptyData)
	}

	for _, name := range enc.catNames {
		if cats := enc.vocab[name]; len(cats) == 1 {
			errors.Warn(errors.NewSingleCategoryWarning(name+"_"+cats[0], name))
		}
	}

	enc.state.SetDimensions(len(enc.retained), t.NumRows())
	enc.state.SetFitted()
	return enc.encode(t)
}

// Transform re-encodes a table against the fitted layout. Columns
// dropped at fit time are removed first, with a warning.
func (enc *TableEncoder) Transform(t *dataset.Table) (*Encoding, error) {
	if err := enc.state.RequireFitted("TableEncoder", "Transform"); err != nil {
		return nil, err
	}

	var stale []string
	for _, name := range enc.dropped {
		if t.HasColumn(name) {
			stale = append(stale, name)
		}
	}
	if len(stale) > 0 {
		errors.Warn(errors.NewDroppedColumnWarning(stale, "predict"))
		t = t.Drop(stale...)
	}
	if err := enc.checkKinds(t); err != nil {
		return nil, err
	}
	return enc.encode(t)
}

// checkKinds rejects columns whose kind changed since fitting before
// any block is built.
func (enc *TableEncoder) checkKinds(t *dataset.Table) error {
	for _, name := range enc.numNames {
		if col, ok := t.Column(name); ok && col.Kind != dataset.Numeric {
			return errors.NewValidationError("column", "fitted as numeric, got categorical", name)
		}
	}
	for _, name := range enc.catNames {
		if col, ok := t.Column(name); ok && col.Kind != dataset.Categorical {
			return errors.NewValidationError("column", "fitted as categorical, got numeric", name)
		}
	}
	return nil
}

// encode builds the blocks and indicator for t using the fitted layout.
func (enc *TableEncoder) encode(t *dataset.Table) (*Encoding, error) {
	n := t.NumRows()
	e := &Encoding{
		NumericNames:   append([]string(nil), enc.numNames...),
		IndicatorNames: append([]string(nil), enc.retained...),
		Dropped:        append([]string(nil), enc.dropped...),
		NRows:          n,
	}

	if len(enc.numNames) > 0 {
		e.Numeric = mat.NewDense(n, len(enc.numNames), nil)
		for j, name := range enc.numNames {
			col, ok := t.Column(name)
			if !ok {
				return nil, errors.NewColumnMismatchError([]string{name}, nil)
			}
			for i := 0; i < n; i++ {
				e.Numeric.Set(i, j, col.Float[i])
			}
		}
	}

	for _, name := range enc.catNames {
		for _, cat := range enc.vocab[name] {
			e.DummyNames = append(e.DummyNames, name+"_"+cat)
			e.DummyOwner = append(e.DummyOwner, name)
		}
	}
	if len(e.DummyNames) > 0 {
		e.Dummies = mat.NewDense(n, len(e.DummyNames), nil)
		j := 0
		for _, name := range enc.catNames {
			col, ok := t.Column(name)
			if !ok {
				return nil, errors.NewColumnMismatchError([]string{name}, nil)
			}
			for _, cat := range enc.vocab[name] {
				for i := 0; i < n; i++ {
					if !col.IsMissing(i) && col.Str[i] == cat {
						e.Dummies.Set(i, j, 1)
					}
				}
				j++
			}
		}
	}

	e.Indicator = mat.NewDense(n, len(enc.retained), nil)
	for j, name := range enc.retained {
		col, ok := t.Column(name)
		if !ok {
			return nil, errors.NewColumnMismatchError([]string{name}, nil)
		}
		for i := 0; i < n; i++ {
			if col.IsMissing(i) {
				e.Indicator.Set(i, j, 1)
			}
		}
	}

	return e, nil
}

// observedCategories returns the sorted distinct observed values of a
// categorical column. Sorting fixes the dummy column order so encodings
// are deterministic across calls.
func observedCategories(col *dataset.Column) []string {
	seen := make(map[string]bool)
	for i := 0; i < col.Len(); i++ {
		if !col.IsMissing(i) {
			seen[col.Str[i]] = true
		}
	}
	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}
