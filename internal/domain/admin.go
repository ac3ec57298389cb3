package domain

import "time"

// AdminRole enumerates operator roles.
type AdminRole string

const (
	AdminRoleAdmin  AdminRole = "ADMIN"
	AdminRoleViewer AdminRole = "VIEWER"
)

// Admin is an operator allowed to run or inspect imports.
type Admin struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         AdminRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
