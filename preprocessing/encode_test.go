package preprocessing

import (
	"math"
	"testing"

	"github.com/shabarka/autoimpute/dataset"
	"github.com/shabarka/autoimpute/pkg/errors"
)

func captureWarnings(t *testing.T) *[]error {
	t.Helper()
	var captured []error
	errors.SetWarningHandler(func(w error) {
		captured = append(captured, w)
	})
	t.Cleanup(func() { errors.SetWarningHandler(nil) })
	return &captured
}

func mustTable(t *testing.T, cols ...*dataset.Column) *dataset.Table {
	t.Helper()
	tbl, err := dataset.New(cols...)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestTableEncoder_BlocksAndIndicator(t *testing.T) {
	tbl := mustTable(t,
		dataset.NewNumeric("age", []float64{23, math.NaN(), 31}),
		dataset.NewCategorical("gender", []string{"M", "F", ""}),
	)

	enc := NewTableEncoder()
	e, err := enc.FitTransform(tbl)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	if len(e.NumericNames) != 1 || e.NumericNames[0] != "age" {
		t.Errorf("numeric block: %v", e.NumericNames)
	}
	// Categories sort lexicographically: F before M.
	wantDummies := []string{"gender_F", "gender_M"}
	if len(e.DummyNames) != 2 || e.DummyNames[0] != wantDummies[0] || e.DummyNames[1] != wantDummies[1] {
		t.Errorf("dummy block: %v, want %v", e.DummyNames, wantDummies)
	}
	if e.DummyOwner[0] != "gender" || e.DummyOwner[1] != "gender" {
		t.Errorf("dummy owners: %v", e.DummyOwner)
	}

	// Row 0: M -> [0, 1]; row 1: F -> [1, 0]; row 2 missing -> [0, 0].
	if e.Dummies.At(0, 1) != 1 || e.Dummies.At(0, 0) != 0 {
		t.Error("row 0 should one-hot to gender_M")
	}
	if e.Dummies.At(2, 0) != 0 || e.Dummies.At(2, 1) != 0 {
		t.Error("missing category must encode to an all-zero row")
	}

	// Indicator: cell is 1 exactly where the table cell was null.
	if e.Indicator.At(1, 0) != 1 || e.Indicator.At(0, 0) != 0 {
		t.Error("age indicator wrong")
	}
	if e.Indicator.At(2, 1) != 1 || e.Indicator.At(0, 1) != 0 {
		t.Error("gender indicator wrong")
	}
}

func TestTableEncoder_DropsAllNullColumns(t *testing.T) {
	captured := captureWarnings(t)

	tbl := mustTable(t,
		dataset.NewNumeric("age", []float64{23, 31}),
		dataset.NewNumeric("empty", []float64{math.NaN(), math.NaN()}),
	)

	enc := NewTableEncoder()
	e, err := enc.FitTransform(tbl)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	if len(e.Dropped) != 1 || e.Dropped[0] != "empty" {
		t.Errorf("dropped: %v", e.Dropped)
	}
	for _, name := range e.IndicatorNames {
		if name == "empty" {
			t.Error("all-null column must not appear in the indicator")
		}
	}

	var dw *errors.DroppedColumnWarning
	found := false
	for _, w := range *captured {
		if errors.As(w, &dw) && dw.Phase == "fit" {
			found = true
		}
	}
	if !found {
		t.Error("expected fit-phase DroppedColumnWarning")
	}
}

func TestTableEncoder_TransformWarnsAndDropsStaleColumn(t *testing.T) {
	fitTbl := mustTable(t,
		dataset.NewNumeric("age", []float64{23, 31}),
		dataset.NewNumeric("empty", []float64{math.NaN(), math.NaN()}),
	)

	enc := NewTableEncoder()
	if _, err := enc.FitTransform(fitTbl); err != nil {
		t.Fatal(err)
	}

	captured := captureWarnings(t)
	// Predict-time data still carries the column dropped at fit.
	newTbl := mustTable(t,
		dataset.NewNumeric("age", []float64{40, 50}),
		dataset.NewNumeric("empty", []float64{1, 2}),
	)
	e, err := enc.Transform(newTbl)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	if len(e.IndicatorNames) != 1 || e.IndicatorNames[0] != "age" {
		t.Errorf("stale column must be dropped, got %v", e.IndicatorNames)
	}
	var dw *errors.DroppedColumnWarning
	found := false
	for _, w := range *captured {
		if errors.As(w, &dw) && dw.Phase == "predict" {
			found = true
		}
	}
	if !found {
		t.Error("expected predict-phase DroppedColumnWarning")
	}
}

func TestTableEncoder_TransformRejectsChangedKind(t *testing.T) {
	fitTbl := mustTable(t,
		dataset.NewNumeric("age", []float64{23, 31}),
		dataset.NewCategorical("gender", []string{"M", "F"}),
	)

	enc := NewTableEncoder()
	if _, err := enc.FitTransform(fitTbl); err != nil {
		t.Fatal(err)
	}

	// A column fitted numeric arrives categorical.
	_, err := enc.Transform(mustTable(t,
		dataset.NewCategorical("age", []string{"23", "31"}),
		dataset.NewCategorical("gender", []string{"M", "F"}),
	))
	var ve *errors.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for re-kinded numeric column, got %v", err)
	}
	if ve.Value != "age" {
		t.Errorf("error should name the column: %+v", ve)
	}

	// And the reverse direction.
	_, err = enc.Transform(mustTable(t,
		dataset.NewNumeric("age", []float64{23, 31}),
		dataset.NewNumeric("gender", []float64{0, 1}),
	))
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for re-kinded categorical column, got %v", err)
	}
	if ve.Value != "gender" {
		t.Errorf("error should name the column: %+v", ve)
	}
}

func TestTableEncoder_SingleCategoryWarning(t *testing.T) {
	captured := captureWarnings(t)

	tbl := mustTable(t,
		dataset.NewNumeric("age", []float64{23, 31}),
		dataset.NewCategorical("gender", []string{"M", "M"}),
	)

	enc := NewTableEncoder()
	if _, err := enc.FitTransform(tbl); err != nil {
		t.Fatalf("single observed category must not be fatal: %v", err)
	}

	var sw *errors.SingleCategoryWarning
	found := false
	for _, w := range *captured {
		if errors.As(w, &sw) && sw.Feature == "gender" && sw.Dummy == "gender_M" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected SingleCategoryWarning, warnings: %v", *captured)
	}
}

func TestTableEncoder_FrozenVocabulary(t *testing.T) {
	fitTbl := mustTable(t,
		dataset.NewCategorical("color", []string{"red", "blue", "red"}),
		dataset.NewNumeric("x", []float64{1, 2, 3}),
	)

	enc := NewTableEncoder()
	fitted, err := enc.FitTransform(fitTbl)
	if err != nil {
		t.Fatal(err)
	}

	// New data has an unseen category and lacks one fit-time category.
	newTbl := mustTable(t,
		dataset.NewCategorical("color", []string{"green", "blue"}),
		dataset.NewNumeric("x", []float64{4, 5}),
	)
	e, err := enc.Transform(newTbl)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	if len(e.DummyNames) != len(fitted.DummyNames) {
		t.Fatalf("dummy layout must stay frozen: fit %v, transform %v", fitted.DummyNames, e.DummyNames)
	}
	// Unseen "green" encodes to all zeros.
	if e.Dummies.At(0, 0) != 0 || e.Dummies.At(0, 1) != 0 {
		t.Error("unseen category must encode to an all-zero row")
	}
	// "blue" still lands in its frozen slot.
	if e.Dummies.At(1, 0) != 1 {
		t.Error("fit-time category must keep its column position")
	}
}

func TestEncoding_PredictorMatrix_NumericTarget(t *testing.T) {
	tbl := mustTable(t,
		dataset.NewNumeric("age", []float64{23, 31}),
		dataset.NewNumeric("height", []float64{170, 180}),
		dataset.NewCategorical("gender", []string{"M", "F"}),
	)

	enc := NewTableEncoder()
	e, err := enc.FitTransform(tbl)
	if err != nil {
		t.Fatal(err)
	}

	x, numNames, dumNames, err := e.PredictorMatrix("age")
	if err != nil {
		t.Fatalf("PredictorMatrix failed: %v", err)
	}

	// No self-leakage: the target never appears among the predictors.
	for _, n := range numNames {
		if n == "age" {
			t.Error("target must be excluded from the numeric block")
		}
	}
	_, cols := x.Dims()
	if cols != 1+2 { // height + gender_F + gender_M
		t.Errorf("expected 3 predictor columns, got %d", cols)
	}
	if len(dumNames) != 2 {
		t.Errorf("expected both dummy columns, got %v", dumNames)
	}
}

func TestEncoding_PredictorMatrix_CategoricalTarget(t *testing.T) {
	tbl := mustTable(t,
		dataset.NewNumeric("age", []float64{23, 31}),
		dataset.NewCategorical("gender", []string{"M", "F"}),
		dataset.NewCategorical("city", []string{"NY", "LA"}),
	)

	enc := NewTableEncoder()
	e, err := enc.FitTransform(tbl)
	if err != nil {
		t.Fatal(err)
	}

	_, numNames, dumNames, err := e.PredictorMatrix("gender")
	if err != nil {
		t.Fatalf("PredictorMatrix failed: %v", err)
	}

	for _, n := range dumNames {
		if n == "gender_F" || n == "gender_M" {
			t.Errorf("target-owned dummy %s must be excluded", n)
		}
	}
	if len(numNames) != 1 || numNames[0] != "age" {
		t.Errorf("numeric block should be kept whole: %v", numNames)
	}
	if len(dumNames) != 2 { // city_LA, city_NY
		t.Errorf("expected the other column's dummies: %v", dumNames)
	}
}

func TestEncoding_PredictorMatrix_NoPredictors(t *testing.T) {
	tbl := mustTable(t,
		dataset.NewCategorical("gender", []string{"M", "F"}),
	)

	enc := NewTableEncoder()
	e, err := enc.FitTransform(tbl)
	if err != nil {
		t.Fatal(err)
	}

	_, _, _, err = e.PredictorMatrix("gender")
	var np *errors.NoPredictorsError
	if !errors.As(err, &np) {
		t.Fatalf("expected NoPredictorsError, got %v", err)
	}
	if np.Column != "gender" {
		t.Errorf("error should name the target: %+v", np)
	}
}

func TestEncoding_TargetVector(t *testing.T) {
	tbl := mustTable(t,
		dataset.NewNumeric("age", []float64{23, math.NaN()}),
		dataset.NewNumeric("x", []float64{1, 2}),
	)

	enc := NewTableEncoder()
	e, err := enc.FitTransform(tbl)
	if err != nil {
		t.Fatal(err)
	}

	y, err := e.TargetVector("age")
	if err != nil {
		t.Fatal(err)
	}
	if y.At(0, 0) != 0 || y.At(1, 0) != 1 {
		t.Errorf("target vector should mirror the indicator column: [%v %v]", y.At(0, 0), y.At(1, 0))
	}

	if _, err := e.TargetVector("nope"); err == nil {
		t.Error("unknown column must error")
	}
}
