package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
	"golang.org/x/crypto/bcrypt"

	"github.com/nadwiabd/insight-edms/internal/archive"
	"github.com/nadwiabd/insight-edms/internal/bootstrap"
	"github.com/nadwiabd/insight-edms/internal/config"
	"github.com/nadwiabd/insight-edms/internal/navigation"
	"github.com/nadwiabd/insight-edms/internal/server"
	"github.com/nadwiabd/insight-edms/internal/setup"
	"github.com/nadwiabd/insight-edms/internal/store"
	"github.com/nadwiabd/insight-edms/pkg/api"
)

type (
	// TestStoreEnv holds a store backed by an in-memory Redis
	TestStoreEnv struct {
		Store   *store.Store
		Redis   *miniredis.Miniredis
		Config  *config.Config
		Cleanup func()
	}

	// TestServerEnv holds every component needed for web server testing
	TestServerEnv struct {
		*TestStoreEnv
		Server    *server.Server
		Router    *gin.Engine
		Setup     *setup.Service
		Archive   *archive.Archive
		Bootstrap *bootstrap.Bootstrap
	}
)

// TestPassword is the password given to users created by CreateUser
const TestPassword = "correct-horse"

// NewTestConfig creates a default configuration with debug logging enabled
// and a fixed auto admin password
func NewTestConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.LogLevel = "debug"
	cfg.AutoAdminPassword = "auto-admin-pw"
	cfg.SessionTTL = time.Hour
	return cfg
}

// NewTestStore creates a store on top of a fresh in-memory Redis
func NewTestStore(t *testing.T) *TestStoreEnv {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	cfg := NewTestConfig()
	cfg.Store.Addr = mr.Addr()
	cfg.Store.Prefix = "test-edms"

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	st := store.New(client, cfg.Store.Prefix,
		store.WithPasswordCost(bcrypt.MinCost),
		store.WithSessionTTL(cfg.SessionTTL),
	)

	return &TestStoreEnv{
		Store:  st,
		Redis:  mr,
		Config: cfg,
		Cleanup: func() {
			_ = st.Close()
			mr.Close()
		},
	}
}

// NewTestServer creates a web server wired to an in-memory Redis and an
// in-memory archive bucket
func NewTestServer(t *testing.T) *TestServerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := NewTestStore(t)
	ar := archive.New(memblob.OpenBucket(nil), env.Config.ArchivePrefix)
	svc := setup.NewService(env.Store, ar)

	nav := navigation.NewRegistry()
	server.RegisterLinks(nav)
	setup.RegisterLinks(nav)

	boot := bootstrap.New(env.Store, env.Config)
	boot.Register()

	srv := server.NewServer(env.Store, svc, nav, env.Config)
	storeCleanup := env.Cleanup
	env.Cleanup = func() {
		srv.CloseWebSockets()
		_ = ar.Close()
		storeCleanup()
	}

	return &TestServerEnv{
		TestStoreEnv: env,
		Server:       srv,
		Router:       srv.SetupRoutes(),
		Setup:        svc,
		Archive:      ar,
		Bootstrap:    boot,
	}
}

// CreateUser creates an active account with TestPassword and the given
// blanket permissions
func (e *TestStoreEnv) CreateUser(
	t *testing.T, username string, perms ...api.Permission,
) *api.User {
	t.Helper()
	ctx := context.Background()
	u := &api.User{Username: username, IsActive: true}
	require.NoError(t, e.Store.CreateUser(ctx, u, TestPassword))
	for _, p := range perms {
		require.NoError(t, e.Store.GrantPermission(ctx, u.ID, p.Key()))
	}
	return u
}

// CreateSuperuser creates an active superuser account with TestPassword
func (e *TestStoreEnv) CreateSuperuser(t *testing.T, username string) *api.User {
	t.Helper()
	u := &api.User{Username: username, IsActive: true, IsSuperuser: true}
	require.NoError(t, e.Store.CreateUser(context.Background(), u, TestPassword))
	return u
}

// CreateState creates a state definition
func (e *TestStoreEnv) CreateState(t *testing.T, label string) *api.State {
	t.Helper()
	st := &api.State{Label: label}
	require.NoError(t, e.Store.CreateState(context.Background(), st))
	return st
}

// CreateWorkflow creates a workflow definition
func (e *TestStoreEnv) CreateWorkflow(
	t *testing.T, label string, initial *api.StateID,
) *api.Workflow {
	t.Helper()
	wf := &api.Workflow{Label: label, InitialState: initial}
	require.NoError(t, e.Store.CreateWorkflow(context.Background(), wf))
	return wf
}

// Login opens a session for the user and returns its cookie
func (e *TestStoreEnv) Login(t *testing.T, u *api.User) *http.Cookie {
	t.Helper()
	token, err := e.Store.CreateSession(context.Background(), u.ID)
	require.NoError(t, err)
	return &http.Cookie{Name: server.SessionCookie, Value: token}
}

// Messages pops the flash messages queued for a session
func (e *TestStoreEnv) Messages(t *testing.T, cookie *http.Cookie) []string {
	t.Helper()
	msgs, err := e.Store.PopMessages(context.Background(), cookie.Value)
	require.NoError(t, err)
	res := make([]string, len(msgs))
	for i, m := range msgs {
		res[i] = m.Text
	}
	return res
}

// Get performs a GET request against the router
func (e *TestServerEnv) Get(
	path string, cookie *http.Cookie, headers ...string,
) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	return e.do(req, cookie, headers)
}

// PostForm performs a form POST against the router
func (e *TestServerEnv) PostForm(
	path string, cookie *http.Cookie, form url.Values, headers ...string,
) *httptest.ResponseRecorder {
	req := httptest.NewRequest(
		http.MethodPost, path, strings.NewReader(form.Encode()),
	)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req, cookie, headers)
}

func (e *TestServerEnv) do(
	req *http.Request, cookie *http.Cookie, headers []string,
) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
