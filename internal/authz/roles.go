package authz

const (
	RoleViewer  = 10
	RoleCreator = 20
	RoleAdmin   = 50
)

func IsCreator(roleID int) bool {
	return roleID == RoleCreator
}
