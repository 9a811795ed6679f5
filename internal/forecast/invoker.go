package forecast

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/greenpulse/greenpulse/internal/forecast"

// Model maps a feature vector to the 24h, 48h and 72h forecasts.
type Model interface {
	Predict(ctx context.Context, x []float64) ([3]float64, error)
}

// Explainer maps a feature vector to per-feature attributions for each horizon.
type Explainer interface {
	Explain(ctx context.Context, x []float64) ([3][]float64, error)
}

// PredictExplainer is implemented by collaborators that produce forecast and
// attributions in a single call.
type PredictExplainer interface {
	PredictExplain(ctx context.Context, x []float64) ([3]float64, [3][]float64, error)
}

// InvocationObserver records the outcome of each model invocation.
type InvocationObserver interface {
	ObserveInvocation(outcome string, elapsed time.Duration)
}

// Invocation outcomes passed to InvocationObserver.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// InvokerConfig holds configuration for the prediction invoker.
type InvokerConfig struct {
	Model     Model
	Explainer Explainer

	// FeatureNames is the model schema, in order.
	FeatureNames []string

	// Serialize holds a lock around every model call for collaborators that
	// are not safe for concurrent use.
	Serialize bool

	Observer InvocationObserver
	Logger   zerolog.Logger
}

// Invoker runs the model and explainer for a feature vector. It never retries.
type Invoker struct {
	model     Model
	explainer Explainer
	names     []string
	mu        *sync.Mutex
	observer  InvocationObserver
	logger    zerolog.Logger
}

// NewInvoker creates a new invoker. A nil Explainer yields zero contributions.
func NewInvoker(cfg InvokerConfig) *Invoker {
	inv := &Invoker{
		model:     cfg.Model,
		explainer: cfg.Explainer,
		names:     cfg.FeatureNames,
		observer:  cfg.Observer,
		logger:    cfg.Logger,
	}
	if cfg.Serialize {
		inv.mu = &sync.Mutex{}
	}
	return inv
}

// FeatureNames returns the model schema.
func (i *Invoker) FeatureNames() []string {
	return i.names
}

// Predict returns the forecast and contributions for vec.
func (i *Invoker) Predict(ctx context.Context, vec FeatureVector) (Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "forecast.Predict")
	defer span.End()
	span.SetAttributes(attribute.Int("model.features", len(vec.Values)))

	start := time.Now()
	res, err := i.invoke(ctx, vec.Values)
	i.observe(err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		i.logger.Debug().Err(err).Msg("model invocation failed")
		return Result{}, err
	}
	return res, nil
}

func (i *Invoker) invoke(ctx context.Context, x []float64) (Result, error) {
	if len(x) != len(i.names) {
		return Result{}, &InvocationError{
			Op:  "predict",
			Err: fmt.Errorf("%w: got %d features, want %d", ErrModelRejectedInput, len(x), len(i.names)),
		}
	}

	if i.mu != nil {
		i.mu.Lock()
		defer i.mu.Unlock()
	}

	res := zeroResult(i.names)

	if pe, ok := i.model.(PredictExplainer); ok && i.explainer == nil {
		forecast, attrs, err := pe.PredictExplain(ctx, x)
		if err != nil {
			return Result{}, &InvocationError{Op: "predict", Err: err}
		}
		res.Forecast = forecast
		return res, i.fill(&res, attrs)
	}

	forecast, err := i.model.Predict(ctx, x)
	if err != nil {
		return Result{}, &InvocationError{Op: "predict", Err: err}
	}
	res.Forecast = forecast

	if i.explainer == nil {
		return res, nil
	}

	attrs, err := i.explainer.Explain(ctx, x)
	if err != nil {
		return Result{}, &InvocationError{Op: "explain", Err: err}
	}
	return res, i.fill(&res, attrs)
}

func (i *Invoker) fill(res *Result, attrs [3][]float64) error {
	for h, values := range attrs {
		if len(values) != len(i.names) {
			return &InvocationError{
				Op:  "explain",
				Err: fmt.Errorf("horizon %s returned %d attributions, want %d", Horizons[h], len(values), len(i.names)),
			}
		}
		copy(res.Contributions[h].Values, values)
	}
	return nil
}

func (i *Invoker) observe(err error, elapsed time.Duration) {
	if i.observer == nil {
		return
	}
	outcome := OutcomeSuccess
	switch {
	case errors.Is(err, ErrModelRejectedInput):
		outcome = OutcomeRejected
	case err != nil:
		outcome = OutcomeError
	}
	i.observer.ObserveInvocation(outcome, elapsed)
}
