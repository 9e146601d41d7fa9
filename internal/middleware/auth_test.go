package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"skillbridge_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubVerifier map[string]uint

func (s stubVerifier) VerifySession(token string) (uint, bool) {
	id, ok := s[token]
	return id, ok
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(stubVerifier{"good": 42}), func(c *gin.Context) {
		id, ok := util.GetUserIDFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"no bearer prefix", "good", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"id":42}`, w.Body.String())
			} else {
				assert.JSONEq(t, `{"code":401,"message":"Unauthorized"}`, w.Body.String())
			}
		})
	}
}
