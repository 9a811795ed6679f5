package forecast_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenpulse/greenpulse/internal/forecast"
)

// fakeModel predicts sums of the inputs scaled per horizon and attributes
// each feature its own value, so results depend on station_code.
type fakeModel struct {
	calls      atomic.Int32
	predictErr error
	explainErr error
	shortAttrs bool
	inFlight   atomic.Int32
	maxSeen    atomic.Int32
	delay      time.Duration
}

func (m *fakeModel) Predict(_ context.Context, x []float64) ([3]float64, error) {
	m.calls.Add(1)
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	if n > m.maxSeen.Load() {
		m.maxSeen.Store(n)
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.predictErr != nil {
		return [3]float64{}, m.predictErr
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	return [3]float64{sum, 2 * sum, 3 * sum}, nil
}

func (m *fakeModel) Explain(_ context.Context, x []float64) ([3][]float64, error) {
	if m.explainErr != nil {
		return [3][]float64{}, m.explainErr
	}
	var out [3][]float64
	for h := range out {
		if m.shortAttrs {
			out[h] = x[:len(x)-1]
			continue
		}
		attrs := make([]float64, len(x))
		for i, v := range x {
			attrs[i] = v * float64(h+1)
		}
		out[h] = attrs
	}
	return out, nil
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveInvocation(outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func newInvoker(m *fakeModel, obs forecast.InvocationObserver) *forecast.Invoker {
	return forecast.NewInvoker(forecast.InvokerConfig{
		Model:        m,
		Explainer:    m,
		FeatureNames: testNames,
		Observer:     obs,
	})
}

func TestInvoker_Predict(t *testing.T) {
	model := &fakeModel{}
	obs := &recordingObserver{}
	inv := newInvoker(model, obs)

	res, err := inv.Predict(context.Background(), forecast.FeatureVector{Names: testNames, Values: []float64{100, 20, 4}})
	require.NoError(t, err)

	assert.Equal(t, [3]float64{124, 248, 372}, res.Forecast)
	for h, cm := range res.Contributions {
		assert.Equal(t, testNames, cm.Names)
		v, ok := cm.Get("pm25")
		require.True(t, ok)
		assert.Equal(t, 100*float64(h+1), v)
	}
	assert.Equal(t, []string{forecast.OutcomeSuccess}, obs.outcomes)
}

func TestInvoker_WrapsFailures(t *testing.T) {
	vec := forecast.FeatureVector{Names: testNames, Values: []float64{1, 2, 3}}

	t.Run("predict", func(t *testing.T) {
		obs := &recordingObserver{}
		_, err := newInvoker(&fakeModel{predictErr: errors.New("boom")}, obs).Predict(context.Background(), vec)

		var invErr *forecast.InvocationError
		require.ErrorAs(t, err, &invErr)
		assert.Equal(t, "predict", invErr.Op)
		assert.False(t, forecast.IsValidation(err))
		assert.Equal(t, []string{forecast.OutcomeError}, obs.outcomes)
	})

	t.Run("explain", func(t *testing.T) {
		_, err := newInvoker(&fakeModel{explainErr: errors.New("boom")}, nil).Predict(context.Background(), vec)

		var invErr *forecast.InvocationError
		require.ErrorAs(t, err, &invErr)
		assert.Equal(t, "explain", invErr.Op)
	})

	t.Run("attribution length", func(t *testing.T) {
		_, err := newInvoker(&fakeModel{shortAttrs: true}, nil).Predict(context.Background(), vec)

		var invErr *forecast.InvocationError
		require.ErrorAs(t, err, &invErr)
	})

	t.Run("rejected", func(t *testing.T) {
		obs := &recordingObserver{}
		model := &fakeModel{predictErr: forecast.ErrModelRejectedInput}
		_, err := newInvoker(model, obs).Predict(context.Background(), vec)

		assert.ErrorIs(t, err, forecast.ErrModelRejectedInput)
		assert.Equal(t, []string{forecast.OutcomeRejected}, obs.outcomes)
	})

	t.Run("wrong vector length", func(t *testing.T) {
		obs := &recordingObserver{}
		model := &fakeModel{}
		_, err := newInvoker(model, obs).Predict(context.Background(), forecast.FeatureVector{Values: []float64{1}})

		assert.ErrorIs(t, err, forecast.ErrModelRejectedInput)
		assert.Equal(t, int32(0), model.calls.Load())
		assert.Equal(t, []string{forecast.OutcomeRejected}, obs.outcomes)
	})
}

func TestInvoker_Serialize(t *testing.T) {
	model := &fakeModel{delay: 5 * time.Millisecond}
	inv := forecast.NewInvoker(forecast.InvokerConfig{
		Model:        model,
		Explainer:    model,
		FeatureNames: testNames,
		Serialize:    true,
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := inv.Predict(context.Background(), forecast.FeatureVector{Names: testNames, Values: []float64{1, 2, 3}})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(8), model.calls.Load())
	assert.Equal(t, int32(1), model.maxSeen.Load())
}

func TestInvoker_NoExplainer(t *testing.T) {
	inv := forecast.NewInvoker(forecast.InvokerConfig{
		Model:        &fakeModel{},
		FeatureNames: testNames,
	})

	res, err := inv.Predict(context.Background(), forecast.FeatureVector{Names: testNames, Values: []float64{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, res.Contributions[0].Values)
}

func TestResult_JSONShape(t *testing.T) {
	inv := newInvoker(&fakeModel{}, nil)
	res, err := inv.Predict(context.Background(), forecast.FeatureVector{Names: testNames, Values: []float64{1, 2, 3}})
	require.NoError(t, err)

	data, err := json.Marshal(map[string]any{
		"forecast":     res.ForecastValues(),
		"contribution": res.ContributionValues(),
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"forecast": {"24h": 6, "48h": 12, "72h": 18},
		"contribution": {
			"24h": {"pm25": 1, "temp": 2, "station_code": 3},
			"48h": {"pm25": 2, "temp": 4, "station_code": 6},
			"72h": {"pm25": 3, "temp": 6, "station_code": 9}
		}
	}`, string(data))

	raw, err := json.Marshal(res.Contributions[0])
	require.NoError(t, err)
	assert.Equal(t, `{"pm25":1,"temp":2,"station_code":3}`, string(raw))
}
