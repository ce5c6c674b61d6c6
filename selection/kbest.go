package selection

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/selgo-ml/selgo/core/model"
	"github.com/selgo-ml/selgo/dataset"
	selgoErrors "github.com/selgo-ml/selgo/pkg/errors"
)

// SelectKBest scores each feature with a univariate statistical test and
// retains the k highest-scoring features. Transform keeps the retained
// columns in their original order.
type SelectKBest struct {
	state *model.StateManager

	scoreFunc ScoreFunc
	k         int

	// Fitted state
	scores_    []float64
	pValues_   []float64
	support_   []bool
	nFeatures_ int
}

// SelectKBestOption is a functional option.
type SelectKBestOption func(*SelectKBest)

// NewSelectKBest creates a SelectKBest selector using the given scoring
// function, keeping 10 features by default.
func NewSelectKBest(scoreFunc ScoreFunc, opts ...SelectKBestOption) *SelectKBest {
	kb := &SelectKBest{
		state:     model.NewStateManager(),
		scoreFunc: scoreFunc,
		k:         10,
	}

	for _, opt := range opts {
		opt(kb)
	}

	return kb
}

// WithK sets the number of features to retain.
func WithK(k int) SelectKBestOption {
	return func(kb *SelectKBest) {
		kb.k = k
	}
}

// Fit scores every feature of X against y and determines the top-k support
// mask.
func (kb *SelectKBest) Fit(X, y mat.Matrix) (err error) {
	defer selgoErrors.Recover(&err, "SelectKBest.Fit")

	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return selgoErrors.NewModelError("SelectKBest.Fit", "empty data", selgoErrors.ErrEmptyData)
	}
	if kb.scoreFunc == nil {
		return selgoErrors.NewValidationError("score_func", "must not be nil", nil)
	}
	if kb.k < 1 || kb.k > nFeatures {
		return selgoErrors.NewValidationError("k", "must be in [1, n_features]", kb.k)
	}

	scores, pValues, err := kb.scoreFunc(X, y)
	if err != nil {
		return err
	}

	// Rank by descending score; ties keep the lower column index first.
	order := make([]int, nFeatures)
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	support := make([]bool, nFeatures)
	for _, j := range order[:kb.k] {
		support[j] = true
	}

	kb.scores_ = scores
	kb.pValues_ = pValues
	kb.support_ = support
	kb.nFeatures_ = nFeatures

	kb.state.SetDimensions(nFeatures, nSamples)
	kb.state.SetFitted()
	return nil
}

// Transform reduces X to the k selected columns, preserving their original
// order.
func (kb *SelectKBest) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer selgoErrors.Recover(&err, "SelectKBest.Transform")
	if !kb.state.IsFitted() {
		return nil, selgoErrors.NewNotFittedError("SelectKBest", "Transform")
	}

	_, c := X.Dims()
	if c != kb.nFeatures_ {
		return nil, selgoErrors.NewDimensionError("SelectKBest.Transform", kb.nFeatures_, c, 1)
	}

	return dataset.SelectColumns(X, SupportIndices(kb.support_))
}

// FitTransform fits the selector and transforms X in one call.
func (kb *SelectKBest) FitTransform(X, y mat.Matrix) (_ mat.Matrix, err error) {
	defer selgoErrors.Recover(&err, "SelectKBest.FitTransform")
	if err := kb.Fit(X, y); err != nil {
		return nil, err
	}
	return kb.Transform(X)
}

// Scores returns a copy of the per-feature scores.
func (kb *SelectKBest) Scores() []float64 {
	if kb.scores_ == nil {
		return nil
	}
	scores := make([]float64, len(kb.scores_))
	copy(scores, kb.scores_)
	return scores
}

// PValues returns a copy of the per-feature p-values.
func (kb *SelectKBest) PValues() []float64 {
	if kb.pValues_ == nil {
		return nil
	}
	pValues := make([]float64, len(kb.pValues_))
	copy(pValues, kb.pValues_)
	return pValues
}

// Support returns a copy of the retained-feature mask.
func (kb *SelectKBest) Support() []bool {
	if kb.support_ == nil {
		return nil
	}
	support := make([]bool, len(kb.support_))
	copy(support, kb.support_)
	return support
}

// Result reports the fitted selection.
func (kb *SelectKBest) Result() (*Result, error) {
	if !kb.state.IsFitted() {
		return nil, selgoErrors.NewNotFittedError("SelectKBest", "Result")
	}
	return &Result{
		Scores:  kb.Scores(),
		PValues: kb.PValues(),
		Support: kb.Support(),
	}, nil
}

// IsFitted reports whether the selector has been fitted.
func (kb *SelectKBest) IsFitted() bool {
	return kb.state.IsFitted()
}
