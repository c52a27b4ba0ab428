package cnst

const (
	LangEN      = "en"
	LangZH      = "zh"
	LangDefault = LangEN
)

const (
	// XLang overrides the recipient locale on API requests
	XLang = "X-Lang"
	// CtxKeyPrincipal is the gin context key holding the authenticated principal
	CtxKeyPrincipal = "principal"
	// CtxKeyLang holds the language negotiated for the request
	CtxKeyLang = "lang"
)
