package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong horse", hash))
}

func authRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetString("userId"), "role": c.GetString("role")})
	})
	r.GET("/admin", AuthMiddleware(), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	ConfigureAuth("test-secret", time.Hour)
	defer ConfigureAuth("", 0)

	token, err := GenerateToken("user-1", "landlord")
	require.NoError(t, err)
	r := authRouter()

	tests := []struct {
		name   string
		header string
		path   string
		want   int
	}{
		{"bearer token", "Bearer " + token, "/me", http.StatusOK},
		{"raw token", token, "/me", http.StatusOK},
		{"missing", "", "/me", http.StatusUnauthorized},
		{"garbage", "Bearer nope", "/me", http.StatusUnauthorized},
		{"wrong role", "Bearer " + token, "/admin", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAuthMiddlewareCookie(t *testing.T) {
	ConfigureAuth("test-secret", time.Hour)
	defer ConfigureAuth("", 0)

	token, err := GenerateToken("user-2", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	w := httptest.NewRecorder()
	authRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTokenSignedWithOtherSecretRejected(t *testing.T) {
	ConfigureAuth("secret-a", time.Hour)
	token, err := GenerateToken("user-1", "admin")
	require.NoError(t, err)

	ConfigureAuth("secret-b", time.Hour)
	defer ConfigureAuth("", 0)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	authRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	ConfigureAuth("", 0)
	t.Setenv("JWT_SECRET", "")
	_, err := GenerateToken("user-1", "admin")
	assert.Error(t, err)
}
