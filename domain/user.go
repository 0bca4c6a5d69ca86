package domain

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// User is the directory record owned by the external store.
// Active is false once an administrator deactivates the account.
type User struct {
	ID          string
	DisplayName string
	Email       string
	Role        Role
	Active      bool
	CreatedAt   time.Time
}

// UserIdentity is the authenticated principal attached to a connection.
// It is resolved once at handshake and never changes afterwards.
type UserIdentity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
}

func (u User) Identity() UserIdentity {
	return UserIdentity{ID: u.ID, DisplayName: u.DisplayName, Role: u.Role}
}
