package server_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	as "github.com/nadwiabd/insight-edms/internal/assert"
	"github.com/nadwiabd/insight-edms/internal/assert/helpers"
	"github.com/nadwiabd/insight-edms/internal/server"
	"github.com/nadwiabd/insight-edms/pkg/api"
)

func TestHealthEndpoint(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	w := env.Get("/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var res api.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, api.HealthHealthy, res.Status)
	assert.Equal(t, "insight-edms", res.Service)

	env.Redis.Close()
	w = env.Get("/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, api.HealthUnhealthy, res.Status)
	assert.NotEmpty(t, res.Error)
}

func TestRequireLogin(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	w := env.Get("/setup/workflows?x=1", nil)
	as.New(t).Redirect(w, "/login?next="+url.QueryEscape("/setup/workflows?x=1"))

	w = env.Get("/", &http.Cookie{Name: server.SessionCookie, Value: "stale"})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), server.SessionCookie+"=;")
}

func TestLogin(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()
	a := as.New(t)
	env.CreateUser(t, "alice")

	t.Run("form renders", func(t *testing.T) {
		w := env.Get("/login", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `name="username"`)
		assert.NotContains(t, w.Body.String(), "First time login")
	})

	t.Run("bad credentials", func(t *testing.T) {
		w := env.PostForm("/login", nil, url.Values{
			"username": {"alice"}, "password": {"wrong"},
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Please enter a correct username")
		assert.Empty(t, w.Header().Get("Set-Cookie"))
	})

	t.Run("success redirects to next", func(t *testing.T) {
		w := env.PostForm("/login", nil, url.Values{
			"username": {"alice"},
			"password": {helpers.TestPassword},
			"next":     {"/account"},
		})
		a.Redirect(w, "/account")
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, server.SessionCookie, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)

		w = env.Get("/account", cookies[0])
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice")
	})

	t.Run("external next is ignored", func(t *testing.T) {
		w := env.PostForm("/login", nil, url.Values{
			"username": {"alice"},
			"password": {helpers.TestPassword},
			"next":     {"https://evil.example.org/"},
		})
		a.Redirect(w, "/")
	})
}

func TestLogout(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	u := env.CreateUser(t, "alice")
	cookie := env.Login(t, u)

	w := env.PostForm("/logout", cookie, nil)
	as.New(t).Redirect(w, "/login")

	w = env.Get("/", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestHomeSetupLinks(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	admin := env.CreateSuperuser(t, "root")
	w := env.Get("/", env.Login(t, admin))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="/setup/workflows"`)
	assert.Contains(t, w.Body.String(), `href="/setup/states"`)

	plain := env.CreateUser(t, "plain")
	w = env.Get("/", env.Login(t, plain))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `href="/setup/workflows"`)
	assert.Contains(t, w.Body.String(), "No setup options are available")
}

func TestAboutAndLicense(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()
	cookie := env.Login(t, env.CreateUser(t, "alice"))

	w := env.Get("/about", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "insight-edms")
	assert.Contains(t, w.Body.String(), `href="/license"`)

	w = env.Get("/license", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Apache License")
}

func TestNotFound(t *testing.T) {
	env := helpers.NewTestServer(t)
	defer env.Cleanup()

	w := env.Get("/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
