package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/i18n"
)

// LanguageMiddleware negotiates the request language from X-Lang and Accept-Language
func LanguageMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(cnst.CtxKeyLang, i18n.LanguageFromRequest(c.Request))
		c.Next()
	}
}

// LanguageFrom returns the negotiated language, or the default when none was set
func LanguageFrom(c *gin.Context) string {
	if lang := c.GetString(cnst.CtxKeyLang); lang != "" {
		return lang
	}
	return cnst.LangDefault
}
