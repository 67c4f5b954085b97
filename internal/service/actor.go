package service

import "xdrive-logistics-api-server/internal/auth"

// Actor is the authenticated identity a request runs as. Handlers build
// it from the JWT claims placed in the request context; services never
// read session state themselves.
type Actor struct {
	UserID    string
	Role      auth.Role
	CompanyID string
}
