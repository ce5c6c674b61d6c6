// Package decomposition implements linear dimensionality reduction. PCA
// projects data onto the directions of greatest variance and reports how
// much of the total variance each direction captures.
package decomposition

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/selgo-ml/selgo/core/model"
	selgoErrors "github.com/selgo-ml/selgo/pkg/errors"
	"github.com/selgo-ml/selgo/selection"
)

// PCA performs principal component analysis. Fit centers the data and
// extracts the top principal directions; Transform projects centered data
// onto them. Components are ordered by decreasing explained variance.
type PCA struct {
	state *model.StateManager

	nComponents int

	// Fitted state
	mean_                   []float64
	components_             *mat.Dense // nComponents x nFeatures
	explainedVariance_      []float64
	explainedVarianceRatio_ []float64
	nFeatures_              int
}

// PCAOption is a functional option.
type PCAOption func(*PCA)

// NewPCA creates a PCA transformer keeping 2 components by default.
func NewPCA(opts ...PCAOption) *PCA {
	p := &PCA{
		state:       model.NewStateManager(),
		nComponents: 2,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithNComponents sets the number of principal components to keep.
func WithNComponents(n int) PCAOption {
	return func(p *PCA) {
		p.nComponents = n
	}
}

// Fit learns the principal directions of X (n_samples x n_features). The
// number of components must lie in [1, min(n_samples, n_features)].
func (p *PCA) Fit(X mat.Matrix) (err error) {
	defer selgoErrors.Recover(&err, "PCA.Fit")

	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return selgoErrors.NewModelError("PCA.Fit", "empty data", selgoErrors.ErrEmptyData)
	}
	maxComponents := nSamples
	if nFeatures < maxComponents {
		maxComponents = nFeatures
	}
	if p.nComponents < 1 || p.nComponents > maxComponents {
		return selgoErrors.NewValidationError("n_components",
			"must be in [1, min(n_samples, n_features)]", p.nComponents)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(X, nil); !ok {
		return selgoErrors.NewModelError("PCA.Fit", "singular value decomposition failed",
			selgoErrors.ErrSingularMatrix)
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs) // nFeatures x min(nSamples, nFeatures)
	vars := pc.VarsTo(nil)

	totalVar := 0.0
	for _, v := range vars {
		totalVar += v
	}

	mean := make([]float64, nFeatures)
	col := make([]float64, nSamples)
	for j := 0; j < nFeatures; j++ {
		for i := 0; i < nSamples; i++ {
			col[i] = X.At(i, j)
		}
		mean[j] = stat.Mean(col, nil)
	}

	components := mat.NewDense(p.nComponents, nFeatures, nil)
	explained := make([]float64, p.nComponents)
	ratio := make([]float64, p.nComponents)
	for c := 0; c < p.nComponents; c++ {
		for j := 0; j < nFeatures; j++ {
			components.Set(c, j, vecs.At(j, c))
		}
		explained[c] = vars[c]
		if totalVar > 0 {
			ratio[c] = vars[c] / totalVar
		}
	}

	p.mean_ = mean
	p.components_ = components
	p.explainedVariance_ = explained
	p.explainedVarianceRatio_ = ratio
	p.nFeatures_ = nFeatures

	p.state.SetDimensions(nFeatures, nSamples)
	p.state.SetFitted()
	return nil
}

// Transform projects X onto the fitted principal components, producing an
// (n_samples x n_components) matrix.
func (p *PCA) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer selgoErrors.Recover(&err, "PCA.Transform")
	if !p.state.IsFitted() {
		return nil, selgoErrors.NewNotFittedError("PCA", "Transform")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != p.nFeatures_ {
		return nil, selgoErrors.NewDimensionError("PCA.Transform", p.nFeatures_, nFeatures, 1)
	}

	centered := mat.NewDense(nSamples, nFeatures, nil)
	for i := 0; i < nSamples; i++ {
		for j := 0; j < nFeatures; j++ {
			centered.Set(i, j, X.At(i, j)-p.mean_[j])
		}
	}

	projected := mat.NewDense(nSamples, p.nComponents, nil)
	projected.Mul(centered, p.components_.T())
	return projected, nil
}

// FitTransform fits the transformer and projects X in one call.
func (p *PCA) FitTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer selgoErrors.Recover(&err, "PCA.FitTransform")
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

// InverseTransform maps projected data back to the original feature space.
// The reconstruction is lossy when fewer components than features are kept.
func (p *PCA) InverseTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer selgoErrors.Recover(&err, "PCA.InverseTransform")
	if !p.state.IsFitted() {
		return nil, selgoErrors.NewNotFittedError("PCA", "InverseTransform")
	}

	nSamples, nComponents := X.Dims()
	if nComponents != p.nComponents {
		return nil, selgoErrors.NewDimensionError("PCA.InverseTransform", p.nComponents, nComponents, 1)
	}

	restored := mat.NewDense(nSamples, p.nFeatures_, nil)
	restored.Mul(X, p.components_)
	for i := 0; i < nSamples; i++ {
		for j := 0; j < p.nFeatures_; j++ {
			restored.Set(i, j, restored.At(i, j)+p.mean_[j])
		}
	}
	return restored, nil
}

// Components returns a copy of the loading matrix, one row per component and
// one column per original feature.
func (p *PCA) Components() *mat.Dense {
	if p.components_ == nil {
		return nil
	}
	return mat.DenseCopyOf(p.components_)
}

// ExplainedVariance returns a copy of the variance captured per component,
// in decreasing order.
func (p *PCA) ExplainedVariance() []float64 {
	if p.explainedVariance_ == nil {
		return nil
	}
	out := make([]float64, len(p.explainedVariance_))
	copy(out, p.explainedVariance_)
	return out
}

// ExplainedVarianceRatio returns a copy of the fraction of total variance
// captured per component. Values lie in [0, 1], are decreasing, and sum to
// at most 1.
func (p *PCA) ExplainedVarianceRatio() []float64 {
	if p.explainedVarianceRatio_ == nil {
		return nil
	}
	out := make([]float64, len(p.explainedVarianceRatio_))
	copy(out, p.explainedVarianceRatio_)
	return out
}

// Mean returns a copy of the per-feature means subtracted before projection.
func (p *PCA) Mean() []float64 {
	if p.mean_ == nil {
		return nil
	}
	out := make([]float64, len(p.mean_))
	copy(out, p.mean_)
	return out
}

// NComponents returns the number of components kept.
func (p *PCA) NComponents() int {
	return p.nComponents
}

// Result reports the fitted projection in the shared selection result shape.
func (p *PCA) Result() (*selection.Result, error) {
	if !p.state.IsFitted() {
		return nil, selgoErrors.NewNotFittedError("PCA", "Result")
	}
	return &selection.Result{
		ExplainedVarianceRatio: p.ExplainedVarianceRatio(),
		Components:             p.Components(),
	}, nil
}

// IsFitted reports whether the transformer has been fitted.
func (p *PCA) IsFitted() bool {
	return p.state.IsFitted()
}
