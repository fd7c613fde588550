package api

type (
	// PermissionKey is the stable "namespace.name" identity of a permission
	PermissionKey string

	// Permission is a named capability that can be granted to users
	Permission struct {
		Namespace string `json:"namespace"`
		Name      string `json:"name"`
		Label     string `json:"label"`
	}
)

// Key returns the "namespace.name" identity of the permission
func (p Permission) Key() PermissionKey {
	return PermissionKey(p.Namespace + "." + p.Name)
}

func (p Permission) String() string {
	return p.Label
}
