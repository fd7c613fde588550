package api

import "time"

type (
	// User is an account able to sign in to the setup views
	User struct {
		DateJoined   time.Time `json:"date_joined"`
		LastLogin    time.Time `json:"last_login,omitzero"`
		Username     string    `json:"username"`
		Email        string    `json:"email,omitempty"`
		FirstName    string    `json:"first_name,omitempty"`
		LastName     string    `json:"last_name,omitempty"`
		PasswordHash string    `json:"password_hash"`
		ID           UserID    `json:"id"`
		IsSuperuser  bool      `json:"is_superuser"`
		IsStaff      bool      `json:"is_staff"`
		IsActive     bool      `json:"is_active"`
	}

	// AutoAdmin records the credentials of the automatically created admin
	// account until its password is changed
	AutoAdmin struct {
		Account      UserID `json:"account"`
		Password     string `json:"password"`
		PasswordHash string `json:"password_hash"`
	}
)

func (u *User) String() string {
	return u.Username
}

// FullName joins the first and last names, falling back to the username
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}
