package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nivedh-07/TechCare/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRouterAppliesMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	utils.SetupTestDB(t)

	router := SetupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	// Middleware is installed before route registration, so every route
	// carries the request id, CORS and security headers
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestSetupRouterHandlesPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	utils.SetupTestDB(t)

	router := SetupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/health", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
