package server

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/nadwiabd/insight-edms/internal/setup"
)

func TestReverse(t *testing.T) {
	assert.Equal(t, "/setup/workflows", reverse(setup.ViewWorkflowList))
	assert.Equal(t, "/setup/states/4/edit", reverse(setup.ViewStateEdit, 4))
	assert.Equal(t,
		"/setup/workflows/2/states/7/remove",
		reverse(setup.ViewWorkflowStateRemove, 2, 7),
	)
	assert.Panics(t, func() { reverse("missing_view") })
}

func TestLocalURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "http://example.com/", nil)

	for _, tc := range []struct {
		raw  string
		want string
	}{
		{"", "/fallback"},
		{"/setup/states", "/setup/states"},
		{"/setup/states?page=2", "/setup/states?page=2"},
		{"http://example.com/about", "/about"},
		{"http://example.com", "/"},
		{"https://elsewhere.org/about", "/fallback"},
		{"//elsewhere.org/about", "/fallback"},
		{"javascript:alert(1)", "/fallback"},
		{"relative/path", "/fallback"},
		{"/a%20b", "/a%20b"},
	} {
		assert.Equal(t, tc.want, localURL(c, tc.raw, "/fallback"), tc.raw)
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Workflow", capitalize("workflow"))
	assert.Equal(t, "", capitalize(""))
}
