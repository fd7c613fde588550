package server

import (
	"log/slog"
	"net/http"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	"github.com/nadwiabd/insight-edms/internal/config"
	"github.com/nadwiabd/insight-edms/internal/navigation"
	"github.com/nadwiabd/insight-edms/internal/permission"
	"github.com/nadwiabd/insight-edms/internal/setup"
	"github.com/nadwiabd/insight-edms/internal/store"
)

// Server implements the web interface of the setup service
type Server struct {
	store   *store.Store
	setup   *setup.Service
	checker *permission.Checker
	nav     *navigation.Registry
	cfg     *config.Config
	sockets map[*Client]struct{}
	mu      sync.Mutex
}

// NewServer creates a new web server
func NewServer(
	st *store.Store, svc *setup.Service, nav *navigation.Registry,
	cfg *config.Config,
) *Server {
	return &Server{
		store:   st,
		setup:   svc,
		checker: permission.NewChecker(st),
		nav:     nav,
		cfg:     cfg,
		sockets: map[*Client]struct{}{},
	}
}

// SetupRoutes configures and returns the HTTP router with every view
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))
	router.SetHTMLTemplate(templates)
	router.Use(s.loadSession)

	// Health check
	router.GET(path(viewHealth), s.handleHealth)

	// Authentication
	router.GET(path(viewLogin), s.loginForm)
	router.POST(path(viewLogin), s.login)
	router.GET(path(viewLogout), s.logout)
	router.POST(path(viewLogout), s.logout)

	auth := router.Group("", s.requireLogin)
	{
		auth.GET(path(viewHome), s.home)
		auth.GET(path(viewAbout), s.about)
		auth.GET(path(viewLicense), s.license)

		// Current user
		auth.GET(path(viewUserDetails), s.userDetails)
		auth.GET(path(viewUserEdit), s.userEditForm)
		auth.POST(path(viewUserEdit), s.userEdit)
		auth.GET(path(viewPasswordChange), s.passwordChangeForm)
		auth.POST(path(viewPasswordChange), s.passwordChange)

		// Workflows
		auth.GET(path(setup.ViewWorkflowList), s.listWorkflows)
		auth.GET(path(setup.ViewWorkflowCreate), s.createWorkflowForm)
		auth.POST(path(setup.ViewWorkflowCreate), s.createWorkflow)
		auth.GET(path(setup.ViewWorkflowEdit), s.editWorkflowForm)
		auth.POST(path(setup.ViewWorkflowEdit), s.editWorkflow)
		auth.GET(path(setup.ViewWorkflowDelete), s.deleteWorkflow)
		auth.POST(path(setup.ViewWorkflowDelete), s.deleteWorkflow)
		auth.GET(path(setup.ViewWorkflowMultipleDelete), s.deleteWorkflows)
		auth.POST(path(setup.ViewWorkflowMultipleDelete), s.deleteWorkflows)
		auth.GET(path(setup.ViewWorkflowStates), s.listWorkflowStates)
		auth.POST(path(setup.ViewWorkflowStateAdd), s.addWorkflowState)
		auth.POST(path(setup.ViewWorkflowStateRemove), s.removeWorkflowState)

		// States
		auth.GET(path(setup.ViewStateList), s.listStates)
		auth.GET(path(setup.ViewStateCreate), s.createStateForm)
		auth.POST(path(setup.ViewStateCreate), s.createState)
		auth.GET(path(setup.ViewStateEdit), s.editStateForm)
		auth.POST(path(setup.ViewStateEdit), s.editState)
		auth.GET(path(setup.ViewStateDelete), s.deleteState)
		auth.POST(path(setup.ViewStateDelete), s.deleteState)
		auth.GET(path(setup.ViewStateMultipleDelete), s.deleteStates)
		auth.POST(path(setup.ViewStateMultipleDelete), s.deleteStates)

		// WebSocket
		auth.GET(path(viewSetupEvents), s.handleWebSocket)
	}

	router.NoRoute(func(c *gin.Context) {
		s.renderError(c, http.StatusNotFound, "")
	})

	return router
}

func (s *Server) registerWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets[c] = struct{}{}
}

func (s *Server) unregisterWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sockets, c)
}

// CloseWebSockets closes all active WebSocket connections
func (s *Server) CloseWebSockets() {
	s.mu.Lock()
	conns := make([]*Client, 0, len(s.sockets))
	for c := range s.sockets {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
