package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestGinMiddleware_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/folders/:folder_id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	labels := []string{http.MethodGet, "/api/folders/:folder_id", "204"}
	before := counterValue(t, HttpRequestsTotal.WithLabelValues(labels...))

	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/folders/"+id, nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}

	after := counterValue(t, HttpRequestsTotal.WithLabelValues(labels...))
	assert.Equal(t, before+2, after)
}

func TestObserveAnalysis(t *testing.T) {
	ok := counterValue(t, AnalysesTotal.WithLabelValues("ok"))
	failed := counterValue(t, AnalysesTotal.WithLabelValues("error"))

	ObserveAnalysis(time.Now(), nil)
	ObserveAnalysis(time.Now(), errors.New("boom"))

	assert.Equal(t, ok+1, counterValue(t, AnalysesTotal.WithLabelValues("ok")))
	assert.Equal(t, failed+1, counterValue(t, AnalysesTotal.WithLabelValues("error")))
}
