package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func signed(t *testing.T, role, typ string, exp time.Duration) string {
	t.Helper()
	claims := JWTClaims{
		UserID:   uuid.NewString(),
		Username: "rina",
		Role:     role,
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(exp)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func protected(roles ...string) *gin.Engine {
	r := gin.New()
	r.GET("/x", JWTAuth(testSecret), RequireRole(roles...), func(c *gin.Context) {
		s, _ := GetSession(c)
		c.String(http.StatusOK, s.Role)
	})
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_MissingToken(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, do(protected(RoleAdmin), "").Code)
}

func TestJWTAuth_RejectsRefreshTokenAsAccess(t *testing.T) {
	w := do(protected(RoleAdmin), signed(t, RoleAdmin, TokenRefresh, time.Hour))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_RejectsExpired(t *testing.T) {
	w := do(protected(RoleAdmin), signed(t, RoleAdmin, TokenAccess, -time.Minute))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := protected(RoleAdmin)

	w := do(r, signed(t, RoleCashier, TokenAccess, time.Hour))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, signed(t, RoleAdmin, TokenAccess, time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, RoleAdmin, w.Body.String())
}

func TestRequestID_PropagatesOrAssigns(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestLimiter_WindowResets(t *testing.T) {
	l := NewLimiter(2, time.Minute)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ok, _ := l.Allow("1.1.1.1")
	assert.True(t, ok)
	ok, _ = l.Allow("1.1.1.1")
	assert.True(t, ok)
	ok, _ = l.Allow("1.1.1.1")
	assert.False(t, ok)
	ok, _ = l.Allow("2.2.2.2")
	assert.True(t, ok, "other clients are counted separately")

	now = now.Add(61 * time.Second)
	ok, _ = l.Allow("1.1.1.1")
	assert.True(t, ok)
	assert.Equal(t, 1, l.Purge(), "only the idle client window is expired")
}
