package api

import (
	"encoding/gob"
	"net/http"

	"github.com/blog-cms/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const (
	sessionName     = "blog_session"
	loginAccountKey = "LOGIN_ACCOUNT_ID"

	flashMessage = "message"
	flashError   = "error"
)

func init() {
	// flashes are stored as []interface{} inside the gob-encoded cookie
	gob.Register([]interface{}{})
}

// newSessionStore builds the signed cookie store used for login state and flashes
func newSessionStore(cfg config.SessionConfig) sessions.Store {
	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

func setLoginAccount(c *gin.Context, id int64) error {
	s := sessions.Default(c)
	s.Clear()
	s.Set(loginAccountKey, id)
	return s.Save()
}

func getLoginAccountID(c *gin.Context) (int64, bool) {
	s := sessions.Default(c)
	id, ok := s.Get(loginAccountKey).(int64)
	return id, ok && id > 0
}

func clearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	return s.Save()
}

func addFlash(c *gin.Context, key, msg string) error {
	s := sessions.Default(c)
	s.AddFlash(msg, key)
	return s.Save()
}

// takeFlashes pops pending flash messages. It must run before the
// response is written because it rewrites the session cookie.
func takeFlashes(c *gin.Context) (message, errMsg string) {
	s := sessions.Default(c)
	message = firstFlash(s.Flashes(flashMessage))
	errMsg = firstFlash(s.Flashes(flashError))
	if message != "" || errMsg != "" {
		_ = s.Save()
	}
	return message, errMsg
}

func firstFlash(values []interface{}) string {
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}
