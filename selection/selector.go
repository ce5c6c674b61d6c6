// Package selection implements feature-selection strategies over a shared
// Selector capability: univariate statistical scoring (SelectKBest),
// recursive feature elimination (RFE) and model-importance selection
// (SelectFromModel). The projection variant lives in package decomposition
// and is adapted into a Selector with FromTransformer.
//
// All selectors follow the same lifecycle: Fit learns which attribute
// columns to retain from an attribute matrix and label vector, Transform
// slices the retained columns out of any compatible matrix, and Result
// reports scores, the support mask and the elimination ranking in a shared
// shape.
package selection

import (
	"gonum.org/v1/gonum/mat"

	"github.com/selgo-ml/selgo/core/model"
	selgoErrors "github.com/selgo-ml/selgo/pkg/errors"
)

// Selector is the shared capability implemented by every feature-selection
// strategy. Unsupervised strategies ignore the label vector.
type Selector interface {
	// Fit learns the selection from X (n_samples x n_features) and y
	// (n_samples x 1).
	Fit(X, y mat.Matrix) error

	// Transform reduces X to the selected feature columns (or derived
	// dimensions, for projections).
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform combines Fit and Transform in one call.
	FitTransform(X, y mat.Matrix) (mat.Matrix, error)

	// Result reports the fitted selection in the shared result shape.
	Result() (*Result, error)
}

// Result is the shared output shape of a fitted selector. Fields not
// produced by a given strategy are nil.
type Result struct {
	// Scores holds one relevance score per input feature.
	Scores []float64

	// PValues holds one p-value per input feature, for statistical scorers.
	PValues []float64

	// Support marks the retained features.
	Support []bool

	// Ranking holds the elimination ranking: 1 for retained features,
	// larger values for features eliminated earlier.
	Ranking []int

	// ExplainedVarianceRatio holds the fraction of total variance captured
	// per derived component, for projection strategies. Values are in
	// descending order.
	ExplainedVarianceRatio []float64

	// Components holds the loading vectors of a projection, one row per
	// component, one column per original feature.
	Components *mat.Dense
}

// SupportIndices converts a support mask into sorted column indices.
func SupportIndices(support []bool) []int {
	var indices []int
	for j, keep := range support {
		if keep {
			indices = append(indices, j)
		}
	}
	return indices
}

// ResultProvider is implemented by transformers that can report a selection
// Result, such as the PCA projection.
type ResultProvider interface {
	Result() (*Result, error)
}

// transformerSelector adapts an unsupervised Transformer into a Selector
// that ignores the label vector.
type transformerSelector struct {
	t model.Transformer
}

// FromTransformer adapts an unsupervised transformer (such as
// decomposition.PCA) into a Selector so all four strategies can be driven
// through one interface.
func FromTransformer(t model.Transformer) Selector {
	return &transformerSelector{t: t}
}

func (s *transformerSelector) Fit(X, _ mat.Matrix) error {
	return s.t.Fit(X)
}

func (s *transformerSelector) Transform(X mat.Matrix) (mat.Matrix, error) {
	return s.t.Transform(X)
}

func (s *transformerSelector) FitTransform(X, _ mat.Matrix) (mat.Matrix, error) {
	return s.t.FitTransform(X)
}

func (s *transformerSelector) Result() (*Result, error) {
	if rp, ok := s.t.(ResultProvider); ok {
		return rp.Result()
	}
	return nil, selgoErrors.NewValueError("selection.FromTransformer",
		"wrapped transformer does not report a selection result")
}
