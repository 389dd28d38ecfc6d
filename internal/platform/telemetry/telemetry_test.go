package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNew_Disabled(t *testing.T) {
	provider, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, provider)

	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestObserveQuery(t *testing.T) {
	before := testutil.CollectAndCount(storeQueryDuration)

	ObserveQuery("sqlite", "observe-test", time.Now(), nil)
	assert.Equal(t, before+1, testutil.CollectAndCount(storeQueryDuration))

	ObserveQuery("sqlite", "observe-test", time.Now(), errors.New("boom"))
	assert.Equal(t, before+2, testutil.CollectAndCount(storeQueryDuration))
}

func TestStartQuery_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	_, done := StartQuery(context.Background(), "postgres", "insert")
	done(nil)

	_, done = StartQuery(context.Background(), "postgres", "delete")
	done(errors.New("connection reset"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "quotes.insert", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, "quotes.delete", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "connection reset", spans[1].Status().Description)
}

func TestMiddleware_SetsTraceHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tp := sdktrace.NewTracerProvider()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	router := gin.New()
	router.Use(TracingMiddleware("quote-service"), Middleware())
	router.GET("/quotes", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quotes", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get("X-Trace-ID"), 32)
}
