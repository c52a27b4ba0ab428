package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jsvc "github.com/harambee/studentliving/internal/auth/jwt"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var hdrSvc = func() *jsvc.Service {
	s, _ := jsvc.NewService(config.JWTConfig{SecretKey: strings.Repeat("s", 40), Duration: time.Hour})
	return s
}()

func performRequest(mw gin.HandlerFunc, headers map[string]string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/p", mw, LanguageMiddleware(), func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"ok": ok, "user": p.UserID, "role": p.Role, "lang": LanguageFrom(c)})
	})
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware_Rejects(t *testing.T) {
	tests := map[string]map[string]string{
		"missing header": nil,
		"bad scheme":     {"Authorization": "Token abc"},
		"invalid token":  {"Authorization": "Bearer invalid"},
	}
	for name, headers := range tests {
		t.Run(name, func(t *testing.T) {
			w := performRequest(JWTAuthMiddleware(hdrSvc), headers)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "unauthenticated", gjson.Get(w.Body.String(), "error.kind").String())
		})
	}
}

func TestJWTAuthMiddleware_Valid(t *testing.T) {
	tok, _, err := hdrSvc.GenerateToken(7, cnst.RoleAdmin)
	require.NoError(t, err)
	w := performRequest(JWTAuthMiddleware(hdrSvc), map[string]string{"Authorization": "Bearer " + tok, cnst.XLang: "zh-CN"})
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, gjson.Get(body, "ok").Bool())
	assert.EqualValues(t, 7, gjson.Get(body, "user").Int())
	assert.Equal(t, "Admin", gjson.Get(body, "role").String())
	assert.Equal(t, "zh", gjson.Get(body, "lang").String())
}

func TestOptionalAuthMiddleware(t *testing.T) {
	w := performRequest(OptionalAuthMiddleware(hdrSvc), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "ok").Bool())
	assert.Equal(t, "en", gjson.Get(w.Body.String(), "lang").String())

	w = performRequest(OptionalAuthMiddleware(hdrSvc), map[string]string{"Authorization": "Bearer junk"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "ok").Bool())

	tok, _, err := hdrSvc.GenerateToken(3, cnst.RoleStudent)
	require.NoError(t, err)
	w = performRequest(OptionalAuthMiddleware(hdrSvc), map[string]string{"Authorization": "bearer " + tok})
	assert.True(t, gjson.Get(w.Body.String(), "ok").Bool())
}
