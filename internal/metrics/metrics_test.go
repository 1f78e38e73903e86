package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()

	// Exercising the setters must not panic after repeated Init.
	SetFrontierDepth(3)
	SetGraphSizes(1, 2, 3)
	ObserveSave("stored")
	ObserveSave("purged")
	ObservePurgedDomains(2)
	ObservePurgedDomains(0)
	ObserveStoreWriteFailure()
	ObserveStoreLoadFailure()
}

func TestHandlerExposesCollectors(t *testing.T) {
	Init()
	SetFrontierDepth(7)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "webgraph_frontier_depth"))
}
