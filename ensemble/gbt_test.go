package ensemble

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/shabarka/autoimpute/pkg/errors"
)

func TestGradientBoosting_FitPredict_Separable(t *testing.T) {
	// Class 1 iff the first feature exceeds 5.
	X := mat.NewDense(8, 2, []float64{
		1, 0,
		2, 1,
		3, 0,
		4, 1,
		6, 0,
		7, 1,
		8, 0,
		9, 1,
	})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})

	clf := NewGradientBoostingClassifier(WithNumRounds(30), WithMaxDepth(2))
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	preds, err := clf.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for i := 0; i < 8; i++ {
		if preds.At(i, 0) != y.At(i, 0) {
			t.Errorf("sample %d: expected %v, got %v", i, y.At(i, 0), preds.At(i, 0))
		}
	}
}

func TestGradientBoosting_PredictProba_Bounds(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 8, 9})
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})

	clf := NewGradientBoostingClassifier(WithNumRounds(20))
	if err := clf.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	proba, err := clf.PredictProba(X)
	if err != nil {
		t.Fatal(err)
	}
	rows, cols := proba.Dims()
	if rows != 4 || cols != 2 {
		t.Fatalf("expected 4x2 probabilities, got %dx%d", rows, cols)
	}
	for i := 0; i < rows; i++ {
		p0, p1 := proba.At(i, 0), proba.At(i, 1)
		if p1 < 0 || p1 > 1 {
			t.Errorf("probability out of range: %v", p1)
		}
		if math.Abs(p0+p1-1.0) > 1e-9 {
			t.Errorf("probabilities must sum to 1, got %v", p0+p1)
		}
	}
	if proba.At(0, 1) >= proba.At(3, 1) {
		t.Error("class-1 probability should increase with the separating feature")
	}
}

func TestGradientBoosting_HandlesNaNFeatures(t *testing.T) {
	// Missing values co-occur with class 1.
	X := mat.NewDense(6, 2, []float64{
		1, 1,
		2, 0,
		3, 1,
		math.NaN(), 0,
		math.NaN(), 1,
		math.NaN(), 0,
	})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	clf := NewGradientBoostingClassifier(WithNumRounds(20), WithMaxDepth(2))
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit must tolerate NaN features: %v", err)
	}

	proba, err := clf.PredictProba(X)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 6; i++ {
		if math.IsNaN(proba.At(i, 1)) {
			t.Errorf("probability for row %d is NaN", i)
		}
	}
}

func TestGradientBoosting_PredictBeforeFit(t *testing.T) {
	clf := NewGradientBoostingClassifier()
	_, err := clf.Predict(mat.NewDense(1, 1, []float64{1}))

	var nf *errors.NotFittedError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFittedError, got %v", err)
	}
}

func TestGradientBoosting_CloneIsIndependent(t *testing.T) {
	clf := NewGradientBoostingClassifier(WithNumRounds(5), WithLearningRate(0.1))
	X := mat.NewDense(4, 1, []float64{1, 2, 8, 9})
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})
	if err := clf.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	clone := clf.Clone().(*GradientBoostingClassifier)
	if clone.nRounds != 5 || clone.learningRate != 0.1 {
		t.Error("clone must keep hyperparameters")
	}
	if _, err := clone.Predict(X); err == nil {
		t.Error("clone must not inherit fitted trees")
	}
}

func TestGradientBoosting_DimensionChecks(t *testing.T) {
	clf := NewGradientBoostingClassifier(WithNumRounds(2))
	X := mat.NewDense(4, 2, []float64{1, 0, 2, 1, 8, 0, 9, 1})
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})
	if err := clf.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	_, err := clf.PredictProba(mat.NewDense(2, 3, nil))
	var de *errors.DimensionError
	if !errors.As(err, &de) {
		t.Fatalf("expected DimensionError, got %v", err)
	}

	if err := clf.Fit(X, mat.NewDense(3, 1, nil)); err == nil {
		t.Error("row-count mismatch between X and y must error")
	}
}
