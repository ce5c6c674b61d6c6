// Package pipeline chains transformers and an optional final predictor into
// a single estimator, so a scaling step, a selection step and a classifier
// can be fitted and applied as one unit.
package pipeline

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/selgo-ml/selgo/core/model"
	selgoErrors "github.com/selgo-ml/selgo/pkg/errors"
	"github.com/selgo-ml/selgo/pkg/log"
)

// Step is a named stage of a Pipeline. The stage must implement
// model.Transformer, model.SupervisedTransformer, or (final step only)
// model.Estimator.
type Step struct {
	Name  string
	Stage any
}

// Pipeline applies its steps in order. Fit threads the data through every
// step, passing the label vector to supervised stages; Transform applies the
// fitted transformations; Predict additionally consults a final predictor.
type Pipeline struct {
	state *model.StateManager

	steps  []Step
	logger log.Logger
}

// PipelineOption is a functional option.
type PipelineOption func(*Pipeline)

// NewPipeline creates a pipeline from the given steps.
func NewPipeline(steps []Step, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		state:  model.NewStateManager(),
		steps:  steps,
		logger: log.NewZerologProvider(log.LevelWarn).GetLoggerWithName("pipeline"),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithLogger replaces the pipeline's logger.
func WithLogger(logger log.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// Fit fits every step in order. Each transforming step is fitted on the
// output of the previous steps; a final model.Estimator is fitted last and
// serves Predict.
func (p *Pipeline) Fit(X, y mat.Matrix) (err error) {
	defer selgoErrors.Recover(&err, "Pipeline.Fit")

	if len(p.steps) == 0 {
		return selgoErrors.NewValidationError("steps", "must not be empty", nil)
	}
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return selgoErrors.NewModelError("Pipeline.Fit", "empty data", selgoErrors.ErrEmptyData)
	}

	start := time.Now()
	current := X
	for i, step := range p.steps {
		last := i == len(p.steps)-1

		switch stage := step.Stage.(type) {
		case model.SupervisedTransformer:
			if err := stage.Fit(current, y); err != nil {
				return selgoErrors.Wrapf(err, "step %q failed to fit", step.Name)
			}
			if !last {
				current, err = stage.Transform(current)
				if err != nil {
					return selgoErrors.Wrapf(err, "step %q failed to transform", step.Name)
				}
			}
		case model.Transformer:
			if err := stage.Fit(current); err != nil {
				return selgoErrors.Wrapf(err, "step %q failed to fit", step.Name)
			}
			if !last {
				current, err = stage.Transform(current)
				if err != nil {
					return selgoErrors.Wrapf(err, "step %q failed to transform", step.Name)
				}
			}
		case model.Estimator:
			if !last {
				return selgoErrors.NewValidationError("steps",
					"a predictor may only be the final step", step.Name)
			}
			if err := stage.Fit(current, y); err != nil {
				return selgoErrors.Wrapf(err, "step %q failed to fit", step.Name)
			}
		default:
			return selgoErrors.NewValidationError("steps",
				"step is neither a transformer nor a predictor", step.Name)
		}
	}

	p.state.SetDimensions(nFeatures, nSamples)
	p.state.SetFitted()

	p.logger.Info("pipeline fitted",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Transform applies the fitted transforming steps to X in order. A final
// predictor step is skipped.
func (p *Pipeline) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer selgoErrors.Recover(&err, "Pipeline.Transform")
	if !p.state.IsFitted() {
		return nil, selgoErrors.NewNotFittedError("Pipeline", "Transform")
	}

	current := X
	for _, step := range p.steps {
		stage, ok := step.Stage.(interface {
			Transform(X mat.Matrix) (mat.Matrix, error)
		})
		if !ok {
			continue
		}
		current, err = stage.Transform(current)
		if err != nil {
			return nil, selgoErrors.Wrapf(err, "step %q failed to transform", step.Name)
		}
	}
	return current, nil
}

// FitTransform fits the pipeline and transforms X in one call.
func (p *Pipeline) FitTransform(X, y mat.Matrix) (_ mat.Matrix, err error) {
	defer selgoErrors.Recover(&err, "Pipeline.FitTransform")
	if err := p.Fit(X, y); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

// Predict transforms X through the leading steps and asks the final
// predictor for labels.
func (p *Pipeline) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer selgoErrors.Recover(&err, "Pipeline.Predict")
	if !p.state.IsFitted() {
		return nil, selgoErrors.NewNotFittedError("Pipeline", "Predict")
	}

	final, ok := p.steps[len(p.steps)-1].Stage.(model.Estimator)
	if !ok {
		return nil, selgoErrors.NewValueError("Pipeline.Predict",
			"final step is not a predictor")
	}

	current := X
	for _, step := range p.steps[:len(p.steps)-1] {
		stage, ok := step.Stage.(interface {
			Transform(X mat.Matrix) (mat.Matrix, error)
		})
		if !ok {
			continue
		}
		current, err = stage.Transform(current)
		if err != nil {
			return nil, selgoErrors.Wrapf(err, "step %q failed to transform", step.Name)
		}
	}
	return final.Predict(current)
}

// Score returns the mean accuracy of Predict against y.
func (p *Pipeline) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := p.Predict(X)
	if err != nil {
		return 0, err
	}

	nSamples, _ := X.Dims()
	correct := 0
	for i := 0; i < nSamples; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples), nil
}

// Steps returns the pipeline's steps.
func (p *Pipeline) Steps() []Step {
	return p.steps
}

// NamedStep returns the stage registered under the given name.
func (p *Pipeline) NamedStep(name string) (any, bool) {
	for _, step := range p.steps {
		if step.Name == name {
			return step.Stage, true
		}
	}
	return nil, false
}

// IsFitted reports whether the pipeline has been fitted.
func (p *Pipeline) IsFitted() bool {
	return p.state.IsFitted()
}
