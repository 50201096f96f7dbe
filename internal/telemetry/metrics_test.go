package telemetry

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"versiond/transform"
)

func TestInstrumentResolver_CountsCallsAndErrors(t *testing.T) {
	m := NewMetrics()
	boom := errors.New("boom")
	fail := false
	r := m.InstrumentResolver(transform.ResolverFunc(func(string, int, bool) ([]transform.Step, error) {
		if fail {
			return nil, boom
		}
		return []transform.Step{{Index: 2}}, nil
	}))

	steps, err := r.Resolve("widgets.WidgetTransform", 1, false)
	require.NoError(t, err)
	assert.Len(t, steps, 1)

	fail = true
	_, err = r.Resolve("widgets.WidgetTransform", 1, true)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolves.WithLabelValues("widgets.WidgetTransform", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolves.WithLabelValues("widgets.WidgetTransform", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolveErrors.WithLabelValues("widgets.WidgetTransform")))
}

func TestObserveChain_LabelsFailingStep(t *testing.T) {
	m := NewMetrics()
	m.ObserveChain("w.F", transform.Forwards, 2, time.Millisecond, nil)
	m.ObserveChain("w.F", transform.Backwards, 1, time.Millisecond,
		&transform.StepError{Family: "w.F", Index: 3, Direction: transform.Backwards, Err: errors.New("x")})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.chainErrors.WithLabelValues("w.F", "backwards", "0003")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.chainSteps))
}

func TestHandler_ServesRegistry(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("widgets", "GET", 200)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `versiond_http_requests_total{code="200",method="GET",resource="widgets"} 1`))
}
