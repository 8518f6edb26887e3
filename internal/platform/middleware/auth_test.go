package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatery/service-rental/internal/platform/auth"
)

func newTestRouter(m *auth.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/owner", AuthMiddleware(m), RequireRole(auth.RoleOwner), func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.String(http.StatusOK, id.String())
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	m := auth.NewJWTManager("secret", time.Minute)
	r := newTestRouter(m)
	ownerID := uuid.New()

	ownerToken, err := m.GenerateAccessToken(ownerID, auth.RoleOwner)
	require.NoError(t, err)
	renterToken, err := m.GenerateAccessToken(uuid.New(), auth.RoleRenter)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"bad token", "Bearer abc", http.StatusUnauthorized},
		{"wrong role", "Bearer " + renterToken, http.StatusForbidden},
		{"owner", "Bearer " + ownerToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/owner", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			if tt.status == http.StatusOK {
				assert.Equal(t, ownerID.String(), w.Body.String())
			}
		})
	}
}
