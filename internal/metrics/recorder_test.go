package metrics

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/escat/internal/model"
)

func TestRecorder_ObserveRequest(t *testing.T) {
	r, err := NewRecorder()
	require.NoError(t, err)

	r.ObserveRequest("mapping", 200, nil, 10*time.Millisecond)
	r.ObserveRequest("mapping", 200, nil, 20*time.Millisecond)
	r.ObserveRequest("mapping", 404, errors.New("not found"), time.Millisecond)
	r.ObserveRequest("root", 0, errors.New("dial tcp: refused"), time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.requests.WithLabelValues("mapping", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("mapping", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("root", "none")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.requestDuration))
}

func TestRecorder_ObserveStage(t *testing.T) {
	r, err := NewRecorder()
	require.NoError(t, err)

	r.ObserveStage("mappings", model.Stats{Typename: "mappings", TotalRecordCount: 8, FailedItemCount: 2}, time.Second)
	r.ObserveStage("mappings", model.Stats{Typename: "mappings", TotalRecordCount: 1}, time.Second)

	assert.Equal(t, 9.0, testutil.ToFloat64(r.stageRecords.WithLabelValues("mappings")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.stageFailures.WithLabelValues("mappings")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.stageDuration))
}

func TestRecorder_ObserveEntities(t *testing.T) {
	r, err := NewRecorder()
	require.NoError(t, err)

	r.ObserveEntities(model.EntityField, 12)
	r.ObserveEntities(model.EntityCluster, 1)

	assert.Equal(t, 12.0, testutil.ToFloat64(r.entities.WithLabelValues("FIELD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.entities.WithLabelValues("CLUSTER")))
}

func TestRecorder_NilIsSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveRequest("root", 200, nil, time.Millisecond)
		r.ObserveStage("cluster", model.Stats{}, time.Millisecond)
		r.ObserveEntities(model.EntityIndex, 1)
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecorder_Handler(t *testing.T) {
	r, err := NewRecorder()
	require.NoError(t, err)
	r.ObserveStage("indices", model.Stats{TotalRecordCount: 3}, time.Second)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `escat_stage_records_total{stage="indices"} 3`)
}

func TestRecorder_Serve(t *testing.T) {
	r, err := NewRecorder()
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "healthy")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
