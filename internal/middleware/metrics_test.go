package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observedRequest struct {
	method string
	path   string
	status int
}

type observerStub struct {
	calls []observedRequest
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	o.calls = append(o.calls, observedRequest{method: method, path: path, status: status})
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &observerStub{}
	r := gin.New()
	r.Use(Metrics(obs))
	r.GET("/timetables/previews/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, path := range []string{"/timetables/previews/abc", "/nope"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, obs.calls, 2)
	assert.Equal(t, observedRequest{http.MethodGet, "/timetables/previews/:id", http.StatusNoContent}, obs.calls[0])
	assert.Equal(t, "unmatched", obs.calls[1].path)
	assert.Equal(t, http.StatusNotFound, obs.calls[1].status)
}
