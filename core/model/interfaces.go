package model

import (
	"gonum.org/v1/gonum/mat"
)

// Classifier is the capability required of any classifier injected into
// the missingness engine. Conformance is checked at compile time, so a
// model lacking probability prediction is rejected at configuration
// time rather than at use time.
type Classifier interface {
	// Fit trains the classifier on features X and a binary target y
	// (n x 1, values 0 or 1).
	Fit(X, y mat.Matrix) error

	// Predict returns hard class labels as an n x 1 matrix.
	Predict(X mat.Matrix) (mat.Matrix, error)

	// PredictProba returns class membership probabilities as an
	// n x 2 matrix, column 1 holding P(class == 1).
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Clone returns an unfitted copy with identical hyperparameters.
	// The engine fits one clone per column so no fitted parameters
	// leak across columns.
	Clone() Classifier
}

// Scaler is the capability required of any scaler injected into the
// missingness engine.
type Scaler interface {
	// Fit learns scaling statistics from X.
	Fit(X mat.Matrix) error

	// Transform applies the learned scaling to X.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform fits on X and returns the transformed X.
	FitTransform(X mat.Matrix) (mat.Matrix, error)

	// Clone returns an unfitted copy with identical hyperparameters.
	// The engine fits one clone per data block.
	Clone() Scaler
}

// ParameterGetter is implemented by models that expose their
// hyperparameters.
type ParameterGetter interface {
	GetParams() map[string]interface{}
}
