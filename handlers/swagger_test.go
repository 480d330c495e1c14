package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestSwaggerEndpoints(t *testing.T) {
	g := gin.New()
	RegisterSwagger(g, "/api/checkRedundancy")

	req := httptest.NewRequest("GET", "/swagger/index.html", nil)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, 200, w.Code)
	require.Contains(t, w.Body.String(), "swagger-ui")

	req2 := httptest.NewRequest("GET", "/swagger/doc.json", nil)
	w2 := httptest.NewRecorder()
	g.ServeHTTP(w2, req2)
	require.Equal(t, 200, w2.Code)

	var doc struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &doc))
	require.Equal(t, "3.0.0", doc.OpenAPI)
	// the gateway is documented at both mounts
	for _, p := range []string{"/", "/api/checkRedundancy"} {
		require.Contains(t, doc.Paths, p)
		require.Contains(t, doc.Paths[p], "get")
		require.Contains(t, doc.Paths[p], "post")
		require.Contains(t, doc.Paths[p], "options")
	}
	require.Contains(t, doc.Paths, "/health")
	require.Contains(t, doc.Paths, "/ready")
	require.Contains(t, doc.Paths, "/metrics")
	require.NotContains(t, w2.Body.String(), "{{GATEWAY_PATH}}")
}
