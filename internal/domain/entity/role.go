package entity

// Role names stored on users and carried in access tokens
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
