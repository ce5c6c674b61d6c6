package selection

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/selgo-ml/selgo/core/model"
	"github.com/selgo-ml/selgo/dataset"
	selgoErrors "github.com/selgo-ml/selgo/pkg/errors"
)

// RFE performs recursive feature elimination: it repeatedly fits the
// wrapped estimator, ranks the remaining features by the estimator's
// weights or importances, and discards the weakest until the requested
// number remain.
//
// The wrapped estimator must implement either model.CoefProvider (linear
// models; features are ranked by |coefficient|) or
// model.ImportanceProvider (tree-based models). Elimination ties are broken
// toward the lower column index.
type RFE struct {
	state *model.StateManager

	estimator        model.Estimator
	nFeaturesSelect  int
	step             int

	// Fitted state
	support_   []bool
	ranking_   []int
	nFeatures_ int
}

// RFEOption is a functional option.
type RFEOption func(*RFE)

// NewRFE creates an RFE selector around the given estimator, retaining 3
// features by default and eliminating one feature per iteration.
func NewRFE(estimator model.Estimator, opts ...RFEOption) *RFE {
	r := &RFE{
		state:           model.NewStateManager(),
		estimator:       estimator,
		nFeaturesSelect: 3,
		step:            1,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WithNFeaturesToSelect sets the number of features to retain.
func WithNFeaturesToSelect(n int) RFEOption {
	return func(r *RFE) {
		r.nFeaturesSelect = n
	}
}

// WithRFEStep sets how many features are eliminated per iteration.
func WithRFEStep(step int) RFEOption {
	return func(r *RFE) {
		r.step = step
	}
}

// Fit runs the elimination loop on X (n_samples x n_features) and y
// (n_samples x 1), then refits the wrapped estimator on the retained
// features.
func (r *RFE) Fit(X, y mat.Matrix) (err error) {
	defer selgoErrors.Recover(&err, "RFE.Fit")

	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return selgoErrors.NewModelError("RFE.Fit", "empty data", selgoErrors.ErrEmptyData)
	}
	if r.estimator == nil {
		return selgoErrors.NewValidationError("estimator", "must not be nil", nil)
	}
	if r.nFeaturesSelect < 1 || r.nFeaturesSelect > nFeatures {
		return selgoErrors.NewValidationError("n_features_to_select", "must be in [1, n_features]", r.nFeaturesSelect)
	}
	if r.step < 1 {
		return selgoErrors.NewValidationError("step", "must be >= 1", r.step)
	}

	remaining := make([]int, nFeatures)
	for j := range remaining {
		remaining[j] = j
	}
	ranking := make([]int, nFeatures)
	for j := range ranking {
		ranking[j] = 1
	}

	// The first feature eliminated gets the highest rank; the last one
	// eliminated gets rank 2; retained features keep rank 1.
	nextRank := nFeatures - r.nFeaturesSelect + 1

	for len(remaining) > r.nFeaturesSelect {
		sub, err := dataset.SelectColumns(X, remaining)
		if err != nil {
			return err
		}
		if err := r.estimator.Fit(sub, y); err != nil {
			return selgoErrors.Wrap(err, "failed to fit wrapped estimator")
		}

		weights, err := featureWeights(r.estimator, len(remaining))
		if err != nil {
			return err
		}

		toEliminate := r.step
		if excess := len(remaining) - r.nFeaturesSelect; toEliminate > excess {
			toEliminate = excess
		}

		for e := 0; e < toEliminate; e++ {
			weakest := 0
			for k := 1; k < len(remaining); k++ {
				if weights[k] < weights[weakest] {
					weakest = k
				}
			}

			ranking[remaining[weakest]] = nextRank
			nextRank--
			remaining = append(remaining[:weakest], remaining[weakest+1:]...)
			weights = append(weights[:weakest], weights[weakest+1:]...)
		}
	}

	support := make([]bool, nFeatures)
	for _, j := range remaining {
		support[j] = true
	}

	// Final refit on the retained features so the wrapped estimator is
	// usable for prediction afterwards.
	sub, err := dataset.SelectColumns(X, remaining)
	if err != nil {
		return err
	}
	if err := r.estimator.Fit(sub, y); err != nil {
		return selgoErrors.Wrap(err, "failed to refit wrapped estimator")
	}

	r.support_ = support
	r.ranking_ = ranking
	r.nFeatures_ = nFeatures

	r.state.SetDimensions(nFeatures, nSamples)
	r.state.SetFitted()
	return nil
}

// featureWeights extracts one non-negative weight per remaining feature
// from the wrapped estimator.
func featureWeights(est model.Estimator, nFeatures int) ([]float64, error) {
	var weights []float64

	switch m := est.(type) {
	case model.CoefProvider:
		coef := m.Coef()
		weights = make([]float64, len(coef))
		for j, w := range coef {
			weights[j] = math.Abs(w)
		}
	case model.ImportanceProvider:
		weights = m.FeatureImportances()
	default:
		return nil, selgoErrors.NewValueError("RFE.Fit",
			"wrapped estimator exposes neither coefficients nor feature importances")
	}

	if len(weights) != nFeatures {
		return nil, selgoErrors.NewDimensionError("RFE.Fit", nFeatures, len(weights), 1)
	}
	return weights, nil
}

// Transform reduces X to the retained feature columns.
func (r *RFE) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer selgoErrors.Recover(&err, "RFE.Transform")
	if !r.state.IsFitted() {
		return nil, selgoErrors.NewNotFittedError("RFE", "Transform")
	}

	_, c := X.Dims()
	if c != r.nFeatures_ {
		return nil, selgoErrors.NewDimensionError("RFE.Transform", r.nFeatures_, c, 1)
	}

	return dataset.SelectColumns(X, SupportIndices(r.support_))
}

// FitTransform fits the selector and transforms X in one call.
func (r *RFE) FitTransform(X, y mat.Matrix) (_ mat.Matrix, err error) {
	defer selgoErrors.Recover(&err, "RFE.FitTransform")
	if err := r.Fit(X, y); err != nil {
		return nil, err
	}
	return r.Transform(X)
}

// Support returns a copy of the retained-feature mask.
func (r *RFE) Support() []bool {
	if r.support_ == nil {
		return nil
	}
	support := make([]bool, len(r.support_))
	copy(support, r.support_)
	return support
}

// Ranking returns a copy of the elimination ranking: 1 for retained
// features, 2 for the feature eliminated last, and so on.
func (r *RFE) Ranking() []int {
	if r.ranking_ == nil {
		return nil
	}
	ranking := make([]int, len(r.ranking_))
	copy(ranking, r.ranking_)
	return ranking
}

// Estimator returns the wrapped estimator, refitted on the retained
// features after Fit.
func (r *RFE) Estimator() model.Estimator {
	return r.estimator
}

// Result reports the fitted selection.
func (r *RFE) Result() (*Result, error) {
	if !r.state.IsFitted() {
		return nil, selgoErrors.NewNotFittedError("RFE", "Result")
	}
	return &Result{
		Support: r.Support(),
		Ranking: r.Ranking(),
	}, nil
}

// IsFitted reports whether the selector has been fitted.
func (r *RFE) IsFitted() bool {
	return r.state.IsFitted()
}
