package model

import (
	"gonum.org/v1/gonum/mat"
)

// Estimator is a supervised predictive model. Feature selectors such as RFE
// wrap an Estimator and consult its weights or importances.
type Estimator interface {
	// Fit trains the estimator on X (n_samples x n_features) and y
	// (n_samples x 1).
	Fit(X, y mat.Matrix) error

	// Predict returns predictions for X as an (n_samples x 1) matrix.
	Predict(X mat.Matrix) (mat.Matrix, error)

	// IsFitted reports whether the estimator has been trained.
	IsFitted() bool
}

// Transformer is an unsupervised data transformer such as a scaler or a
// projection.
type Transformer interface {
	// Fit learns transformation statistics from X.
	Fit(X mat.Matrix) error

	// Transform applies the learned transformation to X.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform combines Fit and Transform in one call.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// SupervisedTransformer is a transformer whose fitting consumes the label
// vector, such as a univariate feature selector. Pipelines pass y through to
// steps implementing this interface.
type SupervisedTransformer interface {
	// Fit learns from the attribute matrix X and label vector y.
	Fit(X, y mat.Matrix) error

	// Transform applies the learned selection or re-expression to X.
	Transform(X mat.Matrix) (mat.Matrix, error)
}

// CoefProvider exposes per-feature linear weights. Linear models implement
// this so elimination-based selectors can rank features by |coefficient|.
type CoefProvider interface {
	// Coef returns one weight per input feature.
	Coef() []float64
}

// ImportanceProvider exposes per-feature importance scores. Tree-based
// models implement this; scores are non-negative.
type ImportanceProvider interface {
	// FeatureImportances returns one non-negative score per input feature.
	FeatureImportances() []float64
}
