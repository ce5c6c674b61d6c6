// Package linear implements linear models for classification. The library
// uses LogisticRegression as the default wrapped estimator for recursive
// feature elimination: its fitted coefficients provide the per-feature
// weights the eliminator ranks by.
package linear

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/selgo-ml/selgo/core/model"
	selgoErrors "github.com/selgo-ml/selgo/pkg/errors"
)

const (
	solverLBFGS        = "lbfgs"
	solverGD           = "gd"
	penaltyNone        = "none"
	epsilonSmall       = 1e-15
	regularizationHalf = 0.5
)

// LogisticRegression implements binary logistic regression.
type LogisticRegression struct {
	state *model.StateManager

	// Hyperparameters
	penalty      string  // Regularization: "l2" or "none"
	c            float64 // Inverse regularization strength
	fitIntercept bool    // Whether to fit an intercept term
	solver       string  // "lbfgs" or "gd"
	maxIter      int     // Maximum optimizer iterations
	tol          float64 // Gradient tolerance for stopping
	seed         int64   // Seed for weight initialization

	// Fitted parameters
	coef_      []float64 // One weight per feature
	intercept_ float64
	classes_   [2]int // Sorted class labels; classes_[1] is the positive class
	nFeatures_ int
	nIter_     int
}

// LogisticRegressionOption is a functional option for LogisticRegression.
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a LogisticRegression classifier with l2
// penalty, LBFGS solver and a fixed default seed.
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		penalty:      "l2",
		c:            1.0,
		fitIntercept: true,
		solver:       solverLBFGS,
		maxIter:      100,
		tol:          1e-4,
		seed:         0,
	}

	for _, opt := range opts {
		opt(lr)
	}

	return lr
}

// WithLRPenalty sets the regularization type ("l2" or "none").
func WithLRPenalty(penalty string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.penalty = penalty
	}
}

// WithLRC sets the inverse regularization strength.
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.c = c
	}
}

// WithLRFitIntercept sets whether to fit an intercept.
func WithLRFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLRSolver sets the optimizer ("lbfgs" or "gd").
func WithLRSolver(solver string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.solver = solver
	}
}

// WithLRMaxIter sets the maximum number of optimizer iterations.
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the gradient tolerance for stopping.
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// WithLRSeed sets the seed used for weight initialization.
func WithLRSeed(seed int64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.seed = seed
	}
}

// stableSigmoid computes sigmoid(z) without overflowing for large |z|.
func stableSigmoid(z float64) float64 {
	if z >= 0 {
		ez := math.Exp(-z)
		return 1.0 / (1.0 + ez)
	}
	ez := math.Exp(z)
	return ez / (1.0 + ez)
}

// clampProbability keeps p away from 0 and 1 so log(p) stays finite.
func clampProbability(p float64) float64 {
	if p < epsilonSmall {
		return epsilonSmall
	}
	if p > 1-epsilonSmall {
		return 1 - epsilonSmall
	}
	return p
}

// Fit trains the model on X (n_samples x n_features) and binary labels y
// (n_samples x 1). Exactly two distinct labels must be present.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) (err error) {
	defer selgoErrors.Recover(&err, "LogisticRegression.Fit")

	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return selgoErrors.NewModelError("LogisticRegression.Fit", "empty data", selgoErrors.ErrEmptyData)
	}

	yRows, yCols := y.Dims()
	if yCols != 1 {
		return selgoErrors.NewDimensionError("LogisticRegression.Fit", 1, yCols, 1)
	}
	if nSamples != yRows {
		return selgoErrors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}

	if lr.penalty != "l2" && lr.penalty != penaltyNone {
		return selgoErrors.NewValidationError("penalty", "must be \"l2\" or \"none\"", lr.penalty)
	}
	if lr.penalty == "l2" && lr.c <= 0 {
		return selgoErrors.NewValidationError("C", "must be > 0 for l2 penalty", lr.c)
	}

	if err := lr.extractClasses(y); err != nil {
		return err
	}
	lr.nFeatures_ = nFeatures

	// Small random initialization, reproducible under the configured seed.
	rng := rand.New(rand.NewSource(lr.seed))
	lr.coef_ = make([]float64, nFeatures)
	for j := range lr.coef_ {
		lr.coef_[j] = rng.NormFloat64() * 0.01
	}
	lr.intercept_ = 0

	yBinary := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		if int(y.At(i, 0)) == lr.classes_[1] {
			yBinary[i] = 1.0
		}
	}

	switch lr.solver {
	case solverLBFGS:
		err = lr.fitLBFGS(X, yBinary)
	case solverGD:
		err = lr.fitGradientDescent(X, yBinary)
	default:
		return selgoErrors.NewValidationError("solver", "must be \"lbfgs\" or \"gd\"", lr.solver)
	}
	if err != nil {
		return err
	}

	if lr.nIter_ >= lr.maxIter {
		selgoErrors.Warn(selgoErrors.NewConvergenceWarning("LogisticRegression", lr.nIter_, ""))
	}

	lr.state.SetDimensions(nFeatures, nSamples)
	lr.state.SetFitted()
	return nil
}

// extractClasses identifies the two class labels, sorted ascending.
func (lr *LogisticRegression) extractClasses(y mat.Matrix) error {
	rows, _ := y.Dims()
	classMap := make(map[int]bool)
	for i := 0; i < rows; i++ {
		classMap[int(y.At(i, 0))] = true
	}
	if len(classMap) != 2 {
		return selgoErrors.NewValueError("LogisticRegression.Fit",
			"expected exactly 2 classes in y")
	}

	first := true
	for class := range classMap {
		if first {
			lr.classes_[0] = class
			first = false
			continue
		}
		lr.classes_[1] = class
	}
	if lr.classes_[0] > lr.classes_[1] {
		lr.classes_[0], lr.classes_[1] = lr.classes_[1], lr.classes_[0]
	}
	return nil
}

// fitLBFGS minimizes the regularized negative log-likelihood with gonum's
// L-BFGS implementation.
func (lr *LogisticRegression) fitLBFGS(X mat.Matrix, yBinary []float64) error {
	nSamples, nFeatures := X.Dims()

	// Parameter vector layout: [w0..w_{d-1}, b] when fitting an intercept.
	pDim := nFeatures
	if lr.fitIntercept {
		pDim++
	}
	x0 := make([]float64, pDim)
	copy(x0[:nFeatures], lr.coef_)

	xD := mat.DenseCopyOf(X)
	lambda := 0.0
	if lr.penalty == "l2" {
		lambda = 1.0 / lr.c
	}

	prob := optimize.Problem{
		Func: func(theta []float64) float64 {
			w := theta[:nFeatures]
			var b float64
			if lr.fitIntercept {
				b = theta[nFeatures]
			}
			loss := 0.0
			for i := 0; i < nSamples; i++ {
				z := b
				for j := 0; j < nFeatures; j++ {
					z += w[j] * xD.At(i, j)
				}
				p := clampProbability(stableSigmoid(z))
				loss += -yBinary[i]*math.Log(p) - (1.0-yBinary[i])*math.Log(1.0-p)
			}
			loss /= float64(nSamples)
			if lambda > 0 {
				reg := 0.0
				for j := 0; j < nFeatures; j++ {
					reg += w[j] * w[j]
				}
				loss += regularizationHalf * lambda * reg
			}
			return loss
		},
		Grad: func(grad, theta []float64) {
			w := theta[:nFeatures]
			var b float64
			if lr.fitIntercept {
				b = theta[nFeatures]
			}
			for j := range grad {
				grad[j] = 0
			}
			for i := 0; i < nSamples; i++ {
				z := b
				for j := 0; j < nFeatures; j++ {
					z += w[j] * xD.At(i, j)
				}
				diff := stableSigmoid(z) - yBinary[i]
				for j := 0; j < nFeatures; j++ {
					grad[j] += diff * xD.At(i, j)
				}
				if lr.fitIntercept {
					grad[nFeatures] += diff
				}
			}
			invN := 1.0 / float64(nSamples)
			for j := range grad {
				grad[j] *= invN
			}
			if lambda > 0 {
				for j := 0; j < nFeatures; j++ {
					grad[j] += lambda * w[j]
				}
			}
		},
	}

	settings := optimize.Settings{
		GradientThreshold: lr.tol,
		MajorIterations:   lr.maxIter,
	}
	method := &optimize.LBFGS{}
	result, err := optimize.Minimize(prob, x0, &settings, method)
	if err != nil {
		return selgoErrors.Wrap(err, "lbfgs optimization failed")
	}

	theta := result.X
	copy(lr.coef_, theta[:nFeatures])
	if lr.fitIntercept {
		lr.intercept_ = theta[nFeatures]
	}
	lr.nIter_ = result.Stats.MajorIterations
	return nil
}

// fitGradientDescent is a dependency-light fallback solver with a decaying
// learning rate.
func (lr *LogisticRegression) fitGradientDescent(X mat.Matrix, yBinary []float64) error {
	nSamples, nFeatures := X.Dims()
	baseLearningRate := 1.0

	for iter := 0; iter < lr.maxIter; iter++ {
		gradWeights := make([]float64, nFeatures)
		gradIntercept := 0.0

		for i := 0; i < nSamples; i++ {
			z := lr.intercept_
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * lr.coef_[j]
			}
			diff := stableSigmoid(z) - yBinary[i]
			gradIntercept += diff
			for j := 0; j < nFeatures; j++ {
				gradWeights[j] += diff * X.At(i, j)
			}
		}

		for j := range gradWeights {
			gradWeights[j] /= float64(nSamples)
		}
		gradIntercept /= float64(nSamples)

		if lr.penalty == "l2" {
			lambda := 1.0 / lr.c
			for j := range lr.coef_ {
				gradWeights[j] += lambda * lr.coef_[j]
			}
		}

		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))
		for j := range lr.coef_ {
			lr.coef_[j] -= learningRate * gradWeights[j]
		}
		if lr.fitIntercept {
			lr.intercept_ -= learningRate * gradIntercept
		}

		lr.nIter_ = iter + 1

		maxGrad := math.Abs(gradIntercept)
		for _, g := range gradWeights {
			if math.Abs(g) > maxGrad {
				maxGrad = math.Abs(g)
			}
		}
		if maxGrad < lr.tol {
			break
		}
	}

	return nil
}

// Predict returns the predicted class label for each row of X.
func (lr *LogisticRegression) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer selgoErrors.Recover(&err, "LogisticRegression.Predict")
	if !lr.state.IsFitted() {
		return nil, selgoErrors.NewNotFittedError("LogisticRegression", "Predict")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.nFeatures_ {
		return nil, selgoErrors.NewDimensionError("LogisticRegression.Predict", lr.nFeatures_, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		z := lr.intercept_
		for j := 0; j < lr.nFeatures_; j++ {
			z += X.At(i, j) * lr.coef_[j]
		}
		if stableSigmoid(z) >= 0.5 {
			predictions.Set(i, 0, float64(lr.classes_[1]))
		} else {
			predictions.Set(i, 0, float64(lr.classes_[0]))
		}
	}
	return predictions, nil
}

// PredictProba returns class probabilities, one column per class in
// ascending label order.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (_ mat.Matrix, err error) {
	defer selgoErrors.Recover(&err, "LogisticRegression.PredictProba")
	if !lr.state.IsFitted() {
		return nil, selgoErrors.NewNotFittedError("LogisticRegression", "PredictProba")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.nFeatures_ {
		return nil, selgoErrors.NewDimensionError("LogisticRegression.PredictProba", lr.nFeatures_, nFeatures, 1)
	}

	probas := mat.NewDense(nSamples, 2, nil)
	for i := 0; i < nSamples; i++ {
		z := lr.intercept_
		for j := 0; j < lr.nFeatures_; j++ {
			z += X.At(i, j) * lr.coef_[j]
		}
		p1 := stableSigmoid(z)
		probas.Set(i, 0, 1.0-p1)
		probas.Set(i, 1, p1)
	}
	return probas, nil
}

// Score returns the mean accuracy on the given test data and labels.
func (lr *LogisticRegression) Score(X, y mat.Matrix) float64 {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0.0
	}

	nSamples, _ := X.Dims()
	correct := 0
	for i := 0; i < nSamples; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples)
}

// Coef returns a copy of the fitted feature weights.
func (lr *LogisticRegression) Coef() []float64 {
	if lr.coef_ == nil {
		return nil
	}
	coef := make([]float64, len(lr.coef_))
	copy(coef, lr.coef_)
	return coef
}

// Intercept returns the fitted intercept term.
func (lr *LogisticRegression) Intercept() float64 {
	return lr.intercept_
}

// Classes returns the sorted class labels.
func (lr *LogisticRegression) Classes() [2]int {
	return lr.classes_
}

// NIter returns the number of optimizer iterations performed.
func (lr *LogisticRegression) NIter() int {
	return lr.nIter_
}

// IsFitted reports whether the model has been trained.
func (lr *LogisticRegression) IsFitted() bool {
	return lr.state.IsFitted()
}

// Reset returns the model to its untrained state.
func (lr *LogisticRegression) Reset() {
	lr.state.Reset()
	lr.coef_ = nil
	lr.intercept_ = 0
	lr.nFeatures_ = 0
	lr.nIter_ = 0
}
