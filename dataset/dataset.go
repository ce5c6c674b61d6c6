// Package dataset provides the tabular dataset entity consumed by selgo
// selectors: a read-only attribute matrix paired with a label vector, plus
// loading from CSV sources.
//
// A Dataset is constructed once, validated at construction time, and never
// mutated afterwards. Attribute columns are addressed by position.
package dataset

import (
	"strconv"

	"gonum.org/v1/gonum/mat"

	selgoErrors "github.com/selgo-ml/selgo/pkg/errors"
)

// Dataset is an immutable tabular dataset: an (n_samples x n_features)
// attribute matrix and an (n_samples x 1) label vector.
type Dataset struct {
	x     *mat.Dense
	y     *mat.Dense
	names []string
}

// Option configures a Dataset during construction.
type Option func(*Dataset)

// WithFeatureNames attaches human-readable names to the attribute columns.
// The slice length must match the number of attribute columns; a mismatch is
// reported by New.
func WithFeatureNames(names []string) Option {
	return func(d *Dataset) {
		d.names = names
	}
}

// New creates a Dataset from an attribute matrix and a label vector.
//
// Errors:
//   - ModelError wrapping ErrEmptyData if X has no rows or no columns
//   - DimensionError if y's row count differs from X's or y is not a column
//     vector, or if the feature-name count differs from the column count
func New(x, y *mat.Dense, opts ...Option) (*Dataset, error) {
	if x == nil || y == nil {
		return nil, selgoErrors.NewModelError("dataset.New", "nil data", selgoErrors.ErrEmptyData)
	}

	r, c := x.Dims()
	if r == 0 || c == 0 {
		return nil, selgoErrors.NewModelError("dataset.New", "empty data", selgoErrors.ErrEmptyData)
	}

	yr, yc := y.Dims()
	if yc != 1 {
		return nil, selgoErrors.NewDimensionError("dataset.New", 1, yc, 1)
	}
	if yr != r {
		return nil, selgoErrors.NewDimensionError("dataset.New", r, yr, 0)
	}

	d := &Dataset{x: x, y: y}
	for _, opt := range opts {
		opt(d)
	}

	if d.names != nil && len(d.names) != c {
		return nil, selgoErrors.NewDimensionError("dataset.New", c, len(d.names), 1)
	}

	return d, nil
}

// X returns the attribute matrix. Callers must not modify it.
func (d *Dataset) X() *mat.Dense {
	return d.x
}

// Y returns the label column vector. Callers must not modify it.
func (d *Dataset) Y() *mat.Dense {
	return d.y
}

// NumSamples returns the number of records.
func (d *Dataset) NumSamples() int {
	r, _ := d.x.Dims()
	return r
}

// NumFeatures returns the number of attribute columns.
func (d *Dataset) NumFeatures() int {
	_, c := d.x.Dims()
	return c
}

// FeatureNames returns the attribute names, or nil if none were provided.
func (d *Dataset) FeatureNames() []string {
	if d.names == nil {
		return nil
	}
	names := make([]string, len(d.names))
	copy(names, d.names)
	return names
}

// FeatureName returns the name of column j, falling back to "x<j>" when no
// names were attached.
func (d *Dataset) FeatureName(j int) string {
	if d.names != nil && j >= 0 && j < len(d.names) {
		return d.names[j]
	}
	return "x" + strconv.Itoa(j)
}

// SelectColumns returns a new matrix containing the given columns of X, in
// the order given.
//
// Errors:
//   - ValidationError if cols is empty or contains an out-of-range index
func SelectColumns(X mat.Matrix, cols []int) (*mat.Dense, error) {
	if len(cols) == 0 {
		return nil, selgoErrors.NewValidationError("cols", "must select at least one column", len(cols))
	}

	r, c := X.Dims()
	for _, j := range cols {
		if j < 0 || j >= c {
			return nil, selgoErrors.NewValidationError("cols", "column index out of range", j)
		}
	}

	sub := mat.NewDense(r, len(cols), nil)
	for i := 0; i < r; i++ {
		for k, j := range cols {
			sub.Set(i, k, X.At(i, j))
		}
	}
	return sub, nil
}
