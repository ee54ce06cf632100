package models

import "github.com/golang-jwt/jwt/v5"

// UserRole is the role claim minted by the auth service.
type UserRole string

const (
	RoleStudent      UserRole = "Estudiante"
	RolePractitioner UserRole = "Psicologo"
	RoleAdmin        UserRole = "Administrador"
)

// JWTClaims mirrors the access token payload issued by the auth service.
type JWTClaims struct {
	UserID   int64    `json:"id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	LastName string   `json:"lastName"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the caller may act on any practitioner or client.
func (c *JWTClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}
