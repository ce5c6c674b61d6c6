package selection

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/selgo-ml/selgo/core/model"
	"github.com/selgo-ml/selgo/dataset"
	selgoErrors "github.com/selgo-ml/selgo/pkg/errors"
)

// SelectFromModel fits the wrapped estimator once and retains the features
// whose importance (or absolute coefficient) meets a threshold. When a
// maximum feature count is set, at most that many of the highest-weighted
// features are kept.
type SelectFromModel struct {
	state *model.StateManager

	estimator   model.Estimator
	threshold   float64
	useMean     bool
	maxFeatures int // 0 = no cap

	// Fitted state
	scores_    []float64
	support_   []bool
	nFeatures_ int
}

// SelectFromModelOption is a functional option.
type SelectFromModelOption func(*SelectFromModel)

// NewSelectFromModel creates a selector around the given estimator. By
// default the threshold is the mean of the importance scores.
func NewSelectFromModel(estimator model.Estimator, opts ...SelectFromModelOption) *SelectFromModel {
	sfm := &SelectFromModel{
		state:     model.NewStateManager(),
		estimator: estimator,
		useMean:   true,
	}

	for _, opt := range opts {
		opt(sfm)
	}

	return sfm
}

// WithThreshold sets an absolute importance threshold, replacing the default
// mean-importance threshold.
func WithThreshold(threshold float64) SelectFromModelOption {
	return func(sfm *SelectFromModel) {
		sfm.threshold = threshold
		sfm.useMean = false
	}
}

// WithMaxFeatures caps the number of retained features. The cap is applied
// after thresholding, keeping the highest-weighted features.
func WithMaxFeatures(n int) SelectFromModelOption {
	return func(sfm *SelectFromModel) {
		sfm.maxFeatures = n
	}
}

// Fit trains the wrapped estimator on X and y and derives the support mask
// from its importance scores.
func (sfm *SelectFromModel) Fit(X, y mat.Matrix) (err error) {
	defer selgoErrors.Recover(&err, "SelectFromModel.Fit")

	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return selgoErrors.NewModelError("SelectFromModel.Fit", "empty data", selgoErrors.ErrEmptyData)
	}
	if sfm.estimator == nil {
		return selgoErrors.NewValidationError("estimator", "must not be nil", nil)
	}
	if sfm.maxFeatures < 0 || sfm.maxFeatures > nFeatures {
		return selgoErrors.NewValidationError("max_features", "must be in [0, n_features]", sfm.maxFeatures)
	}

	if err := sfm.estimator.Fit(X, y); err != nil {
		return selgoErrors.Wrap(err, "failed to fit wrapped estimator")
	}

	scores, err := featureWeights(sfm.estimator, nFeatures)
	if err != nil {
		return err
	}

	threshold := sfm.threshold
	if sfm.useMean {
		sum := 0.0
		for _, s := range scores {
			sum += s
		}
		threshold = sum / float64(nFeatures)
	}

	support := make([]bool, nFeatures)
	selected := 0
	for j, s := range scores {
		if s >= threshold {
			support[j] = true
			selected++
		}
	}

	if sfm.maxFeatures > 0 && selected > sfm.maxFeatures {
		order := SupportIndices(support)
		sort.SliceStable(order, func(a, b int) bool {
			return scores[order[a]] > scores[order[b]]
		})
		for _, j := range order[sfm.maxFeatures:] {
			support[j] = false
		}
	}

	sfm.scores_ = scores
	sfm.support_ = support
	sfm.nFeatures_ = nFeatures

	sfm.state.SetDimensions(nFeatures, nSamples)
	sfm.state.SetFitted()
	return nil
}

// Transform reduces X to the retained feature columns.
func (sfm *SelectFromModel) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer selgoErrors.Recover(&err, "SelectFromModel.Transform")
	if !sfm.state.IsFitted() {
		return nil, selgoErrors.NewNotFittedError("SelectFromModel", "Transform")
	}

	_, c := X.Dims()
	if c != sfm.nFeatures_ {
		return nil, selgoErrors.NewDimensionError("SelectFromModel.Transform", sfm.nFeatures_, c, 1)
	}

	return dataset.SelectColumns(X, SupportIndices(sfm.support_))
}

// FitTransform fits the selector and transforms X in one call.
func (sfm *SelectFromModel) FitTransform(X, y mat.Matrix) (_ mat.Matrix, err error) {
	defer selgoErrors.Recover(&err, "SelectFromModel.FitTransform")
	if err := sfm.Fit(X, y); err != nil {
		return nil, err
	}
	return sfm.Transform(X)
}

// Scores returns a copy of the per-feature importance scores.
func (sfm *SelectFromModel) Scores() []float64 {
	if sfm.scores_ == nil {
		return nil
	}
	scores := make([]float64, len(sfm.scores_))
	copy(scores, sfm.scores_)
	return scores
}

// Support returns a copy of the retained-feature mask.
func (sfm *SelectFromModel) Support() []bool {
	if sfm.support_ == nil {
		return nil
	}
	support := make([]bool, len(sfm.support_))
	copy(support, sfm.support_)
	return support
}

// Threshold returns the effective threshold used during Fit. It returns NaN
// before Fit when the mean-importance default is in effect.
func (sfm *SelectFromModel) Threshold() float64 {
	if sfm.useMean {
		if sfm.scores_ == nil {
			return math.NaN()
		}
		sum := 0.0
		for _, s := range sfm.scores_ {
			sum += s
		}
		return sum / float64(len(sfm.scores_))
	}
	return sfm.threshold
}

// Result reports the fitted selection.
func (sfm *SelectFromModel) Result() (*Result, error) {
	if !sfm.state.IsFitted() {
		return nil, selgoErrors.NewNotFittedError("SelectFromModel", "Result")
	}
	return &Result{
		Scores:  sfm.Scores(),
		Support: sfm.Support(),
	}, nil
}

// IsFitted reports whether the selector has been fitted.
func (sfm *SelectFromModel) IsFitted() bool {
	return sfm.state.IsFitted()
}
