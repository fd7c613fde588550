package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	edms "github.com/nadwiabd/insight-edms"
	"github.com/nadwiabd/insight-edms/internal/store"
)

func (s *Server) home(c *gin.Context) {
	setupLinks := s.links(c, viewHome, s.allowedLinks(c, s.nav.SetupLinks()))
	s.render(c, http.StatusOK, viewHome, "home.html", gin.H{
		"Title": "Home",
		"Setup": setupLinks,
	})
}

func (s *Server) about(c *gin.Context) {
	version, _ := s.store.SchemaVersion(c.Request.Context(), "common")
	s.render(c, http.StatusOK, viewAbout, "about.html", gin.H{
		"Title":      "About",
		"Name":       edms.Name,
		"Version":    edms.Version,
		"Schema":     version,
		"Migrations": store.Migrations,
	})
}

func (s *Server) license(c *gin.Context) {
	s.render(c, http.StatusOK, viewLicense, "license.html", gin.H{
		"Title":   "License",
		"Name":    edms.Name,
		"License": edms.License,
	})
}
