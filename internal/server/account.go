package server

import (
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/nadwiabd/insight-edms/internal/store"
	"github.com/nadwiabd/insight-edms/pkg/api"
)

type (
	userEditForm struct {
		FirstName string `form:"first_name"`
		LastName  string `form:"last_name"`
		Email     string `form:"email"`
	}

	passwordChangeForm struct {
		OldPassword  string `form:"old_password"`
		NewPassword1 string `form:"new_password1"`
		NewPassword2 string `form:"new_password2"`
	}
)

const (
	maxNameLength     = 30
	minPasswordLength = 8
)

func (s *Server) userDetails(c *gin.Context) {
	u := currentUser(c)
	lastLogin := "Never"
	if !u.LastLogin.IsZero() {
		lastLogin = u.LastLogin.Format("2006-01-02 15:04")
	}
	s.render(c, http.StatusOK, viewUserDetails, "account.html", gin.H{
		"Title": "Current user details",
		"Details": [][2]string{
			{"Username", u.Username},
			{"Full name", u.FullName()},
			{"Email", u.Email},
			{"Superuser", yesNo(u.IsSuperuser)},
			{"Staff", yesNo(u.IsStaff)},
			{"Date joined", u.DateJoined.Format("2006-01-02 15:04")},
			{"Last login", lastLogin},
		},
	})
}

func (s *Server) userEditForm(c *gin.Context) {
	u := currentUser(c)
	s.renderUserEditForm(c, &userEditForm{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}, nil)
}

func (s *Server) userEdit(c *gin.Context) {
	var form userEditForm
	if err := c.ShouldBind(&form); err != nil {
		s.handleError(c, err)
		return
	}
	if errs := form.validate(); len(errs) > 0 {
		s.renderUserEditForm(c, &form, errs)
		return
	}

	u := currentUser(c)
	u.FirstName = form.FirstName
	u.LastName = form.LastName
	u.Email = form.Email
	if err := s.store.SaveUser(c.Request.Context(), u); err != nil {
		s.handleError(c, err)
		return
	}
	s.flash(c, api.MessageSuccess, "Current user's details updated.")
	c.Redirect(http.StatusFound, reverse(viewUserDetails))
}

func (s *Server) passwordChangeForm(c *gin.Context) {
	s.renderPasswordChangeForm(c, nil)
}

func (s *Server) passwordChange(c *gin.Context) {
	var form passwordChangeForm
	if err := c.ShouldBind(&form); err != nil {
		s.handleError(c, err)
		return
	}
	u := currentUser(c)
	if errs := form.validate(u); len(errs) > 0 {
		s.renderPasswordChangeForm(c, errs)
		return
	}
	if err := s.store.SetPassword(
		c.Request.Context(), u, form.NewPassword1,
	); err != nil {
		s.handleError(c, err)
		return
	}
	s.flash(c, api.MessageSuccess,
		"Your password has been successfully changed.")
	c.Redirect(http.StatusFound, reverse(viewUserDetails))
}

func (s *Server) renderUserEditForm(
	c *gin.Context, form *userEditForm, errs map[string]string,
) {
	s.render(c, http.StatusOK, viewUserEdit, "generic_form.html", gin.H{
		"Title":  "Edit current user details",
		"Action": reverse(viewUserEdit),
		"Cancel": reverse(viewUserDetails),
		"Submit": "Save",
		"Fields": []formField{
			{
				Name: "first_name", Label: "First name", Type: "text",
				Value: form.FirstName, Error: errs["first_name"],
			},
			{
				Name: "last_name", Label: "Last name", Type: "text",
				Value: form.LastName, Error: errs["last_name"],
			},
			{
				Name: "email", Label: "Email", Type: "email",
				Value: form.Email, Error: errs["email"],
			},
		},
	})
}

func (s *Server) renderPasswordChangeForm(
	c *gin.Context, errs map[string]string,
) {
	s.render(c, http.StatusOK, viewPasswordChange, "generic_form.html", gin.H{
		"Title":  "Change password",
		"Action": reverse(viewPasswordChange),
		"Cancel": reverse(viewUserDetails),
		"Submit": "Change password",
		"Fields": []formField{
			{
				Name: "old_password", Label: "Old password",
				Type: "password", Error: errs["old_password"],
				Required: true,
			},
			{
				Name: "new_password1", Label: "New password",
				Type: "password", Error: errs["new_password1"],
				Required: true,
			},
			{
				Name: "new_password2", Label: "New password confirmation",
				Type: "password", Error: errs["new_password2"],
				Required: true,
			},
		},
	})
}

func (f *userEditForm) validate() map[string]string {
	errs := map[string]string{}
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)

	if utf8.RuneCountInString(f.FirstName) > maxNameLength {
		errs["first_name"] = "Ensure this value has at most 30 characters."
	}
	if utf8.RuneCountInString(f.LastName) > maxNameLength {
		errs["last_name"] = "Ensure this value has at most 30 characters."
	}
	if f.Email != "" {
		if _, err := mail.ParseAddress(f.Email); err != nil {
			errs["email"] = "Enter a valid email address."
		}
	}
	return errs
}

func (f *passwordChangeForm) validate(u *api.User) map[string]string {
	errs := map[string]string{}
	if !store.CheckPassword(u, f.OldPassword) {
		errs["old_password"] = "Your old password was entered incorrectly. " +
			"Please enter it again."
	}
	switch {
	case f.NewPassword1 == "":
		errs["new_password1"] = "This field is required."
	case utf8.RuneCountInString(f.NewPassword1) < minPasswordLength:
		errs["new_password1"] = "This password is too short. It must " +
			"contain at least 8 characters."
	}
	if f.NewPassword1 != f.NewPassword2 {
		errs["new_password2"] = "The two password fields didn't match."
	}
	return errs
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
