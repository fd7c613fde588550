package server

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nadwiabd/insight-edms/internal/store"
	"github.com/nadwiabd/insight-edms/pkg/api"
	"github.com/nadwiabd/insight-edms/pkg/log"
)

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Next     string `form:"next"`
}

const (
	// SessionCookie is the name of the cookie carrying the session token
	SessionCookie = "sessionid"

	userKey    = "user"
	sessionKey = "session"

	msgInvalidLogin = "Please enter a correct username and password. Note " +
		"that both fields are case-sensitive."
)

// loadSession resolves the session cookie to its user, if any
func (s *Server) loadSession(c *gin.Context) {
	token, err := c.Cookie(SessionCookie)
	if err != nil || token == "" {
		c.Next()
		return
	}

	u, err := s.store.SessionUser(c.Request.Context(), token)
	switch {
	case err == nil:
		c.Set(userKey, u)
		c.Set(sessionKey, token)
	case errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, store.ErrUserNotFound):
		s.clearSessionCookie(c)
	default:
		slog.Warn("Failed to load session", log.Error(err))
	}
	c.Next()
}

func (s *Server) requireLogin(c *gin.Context) {
	if currentUser(c) == nil {
		s.redirectToLogin(c)
		return
	}
	c.Next()
}

func (s *Server) redirectToLogin(c *gin.Context) {
	target := reverse(viewLogin) + "?" + url.Values{
		"next": {c.Request.URL.RequestURI()},
	}.Encode()
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

func (s *Server) loginForm(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, localURL(c, c.Query("next"), "/"))
		return
	}
	s.renderLogin(c, http.StatusOK, &loginForm{Next: c.Query("next")}, "")
}

func (s *Server) login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderLogin(c, http.StatusBadRequest, &form, msgInvalidLogin)
		return
	}

	ctx := c.Request.Context()
	u, err := s.store.Authenticate(ctx, form.Username, form.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		slog.Info("Login failed", log.Username(form.Username))
		s.renderLogin(c, http.StatusOK, &form, msgInvalidLogin)
		return
	}
	if err != nil {
		s.handleError(c, err)
		return
	}

	token, err := s.store.CreateSession(ctx, u.ID)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		SessionCookie, token, int(s.cfg.SessionTTL.Seconds()), "/", "",
		false, true,
	)
	slog.Info("User logged in",
		log.Username(u.Username),
		log.UserID(u.ID))
	c.Redirect(http.StatusFound, localURL(c, form.Next, "/"))
}

func (s *Server) renderLogin(
	c *gin.Context, status int, form *loginForm, errMsg string,
) {
	data := gin.H{
		"Title": "Login",
		"Form":  form,
		"Error": errMsg,
	}
	if aa, err := s.store.GetAutoAdmin(c.Request.Context()); err == nil {
		if u, err := s.store.GetUser(c.Request.Context(), aa.Account); err == nil {
			data["AutoAdmin"] = gin.H{
				"Username": u.Username,
				"Password": aa.Password,
			}
		}
	}
	s.render(c, status, viewLogin, "login.html", data)
}

func (s *Server) logout(c *gin.Context) {
	if token := sessionToken(c); token != "" {
		if err := s.store.DeleteSession(c.Request.Context(), token); err != nil {
			slog.Warn("Failed to delete session", log.Error(err))
		}
	}
	s.clearSessionCookie(c)
	c.Redirect(http.StatusFound, reverse(viewLogin))
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}

func currentUser(c *gin.Context) *api.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*api.User); ok {
			return u
		}
	}
	return nil
}

func sessionToken(c *gin.Context) string {
	return c.GetString(sessionKey)
}

// localURL reduces raw to a path on this host, returning def for empty
// values and URLs pointing elsewhere
func localURL(c *gin.Context, raw, def string) string {
	if raw == "" {
		return def
	}
	u, err := url.Parse(raw)
	if err != nil {
		return def
	}
	if u.Host != "" && u.Host != c.Request.Host {
		return def
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return def
	}
	if !strings.HasPrefix(u.Path, "/") {
		if u.Host != "" {
			return "/"
		}
		return def
	}
	res := u.EscapedPath()
	if u.RawQuery != "" {
		res += "?" + u.RawQuery
	}
	return res
}
