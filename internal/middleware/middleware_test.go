package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tiendapos/internal/policy"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "secreto-de-prueba"

func init() { gin.SetMode(gin.TestMode) }

func firmar(t *testing.T, secret string, claims JWTClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func claimsValidos(rol string) JWTClaims {
	return JWTClaims{
		UserID:   uuid.NewString(),
		Username: "ana",
		Rol:      rol,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func engine(pol *policy.Policy, perm string) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", JWTAuth(testSecret), RequirePermission(pol, perm), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Username)
	})
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := engine(policy.Default(), policy.CrearVenta)

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, firmar(t, "otro-secreto", claimsValidos("cajero"))).Code)

	expirado := claimsValidos("cajero")
	expirado.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	assert.Equal(t, http.StatusUnauthorized, get(r, firmar(t, testSecret, expirado)).Code)

	sinUsuario := claimsValidos("cajero")
	sinUsuario.UserID = "no-es-uuid"
	assert.Equal(t, http.StatusUnauthorized, get(r, firmar(t, testSecret, sinUsuario)).Code)

	w := get(r, firmar(t, testSecret, claimsValidos("cajero")))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequirePermission(t *testing.T) {
	r := engine(policy.Default(), policy.CancelarVenta)

	assert.Equal(t, http.StatusForbidden, get(r, firmar(t, testSecret, claimsValidos("cajero"))).Code)
	assert.Equal(t, http.StatusOK, get(r, firmar(t, testSecret, claimsValidos("admin"))).Code)
	assert.Equal(t, http.StatusForbidden, get(r, firmar(t, testSecret, claimsValidos("desconocido"))).Code)

	custom := policy.New(map[string][]string{"cajero": {policy.CancelarVenta}})
	r = engine(custom, policy.CancelarVenta)
	assert.Equal(t, http.StatusOK, get(r, firmar(t, testSecret, claimsValidos("cajero"))).Code)
}

func TestRequestID_Propaga(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestIPRateLimiter(t *testing.T) {
	rl := NewIPRateLimiter(0.001, 2)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = get(r, "").Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	assert.Equal(t, 0, rl.Cleanup(time.Now()))
	assert.Equal(t, 1, rl.Cleanup(time.Now().Add(time.Hour)))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/x", func(*gin.Context) { panic("boom") })

	w := get(r, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/sin-respuesta", func(c *gin.Context) { _ = c.Error(errors.New("dial tcp: refused")) })
	r.GET("/con-respuesta", func(c *gin.Context) {
		_ = c.Error(errors.New("dial tcp: refused"))
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "ocupado"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sin-respuesta", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "dial tcp")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/con-respuesta", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
