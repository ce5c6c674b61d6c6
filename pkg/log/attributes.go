// Package log defines standard attribute keys for feature-selection
// operations. Using these keys keeps log records consistent and filterable
// across packages.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "SelectKBest", "RFE", "PCA", "ExtraTreesClassifier"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "transform", "fit_transform", "predict", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation.
	// Examples: "selection", "decomposition", "ensemble"
	ComponentKey = "ml.component"
)

// Data shape and selection results.
const (
	// SamplesKey is the number of samples (rows) processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of input features (columns).
	FeaturesKey = "data.features"

	// SelectedKey is the number of features retained by a selector.
	SelectedKey = "selection.retained"

	// ComponentsKey is the number of derived dimensions produced by a
	// projection.
	ComponentsKey = "selection.components"

	// SeedKey is the random seed driving a randomized estimator.
	SeedKey = "ml.seed"
)

// Performance and error context.
const (
	// DurationMsKey is the elapsed wall time of an operation in
	// milliseconds.
	DurationMsKey = "perf.duration_ms"

	// IterationsKey is the number of optimizer iterations performed.
	IterationsKey = "ml.iterations"

	// ErrorTypeKey classifies an error for filtering.
	ErrorTypeKey = "error.type"
)
