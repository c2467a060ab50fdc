package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LIBRIS-backend/internal/platform/auth"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString(testSecret)
	require.NoError(t, err)
	return s
}

func newRouter() (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var tenant string
	r.GET("/protected", auth.RequireAuth(testSecret), func(c *gin.Context) {
		tenant = auth.TenantFrom(c)
		c.Status(http.StatusOK)
	})
	r.GET("/admin", auth.RequireAuth(testSecret), auth.RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, &tenant
}

func TestRequireAuth(t *testing.T) {
	validClaims := jwt.MapClaims{
		"sub":    "acct-1",
		"role":   "staff",
		"tenant": "tenant-a",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{
			name:       "valid_token",
			authHeader: "Bearer " + signToken(t, validClaims),
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing_header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not_bearer",
			authHeader: "Basic abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage_token",
			authHeader: "Bearer not.a.jwt",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "expired_token",
			authHeader: "Bearer " + signToken(t, jwt.MapClaims{
				"sub":    "acct-1",
				"tenant": "tenant-a",
				"exp":    time.Now().Add(-time.Hour).Unix(),
			}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "missing_tenant_claim",
			authHeader: "Bearer " + signToken(t, jwt.MapClaims{
				"sub": "acct-1",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "missing_sub_claim",
			authHeader: "Bearer " + signToken(t, jwt.MapClaims{
				"tenant": "tenant-a",
				"exp":    time.Now().Add(time.Hour).Unix(),
			}),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, tenant := newRouter()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantStatus == http.StatusOK {
				assert.Equal(t, "tenant-a", *tenant)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{name: "admin_allowed", role: "admin", wantStatus: http.StatusOK},
		{name: "staff_forbidden", role: "staff", wantStatus: http.StatusForbidden},
		{name: "empty_role_forbidden", role: "", wantStatus: http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newRouter()
			token := signToken(t, jwt.MapClaims{
				"sub":    "acct-1",
				"role":   tc.role,
				"tenant": "tenant-a",
				"exp":    time.Now().Add(time.Hour).Unix(),
			})
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}
