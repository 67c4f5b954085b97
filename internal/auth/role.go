package auth

// Role is the closed set of portal roles. Every authorization check goes
// through this type rather than comparing raw strings at call sites.
type Role string

const (
	// RoleAdmin is the platform owner/operator.
	RoleAdmin Role = "admin"
	// RoleBroker posts freight jobs on behalf of shippers.
	RoleBroker Role = "broker"
	// RoleCompanyAdmin administers a company (broker or carrier side).
	RoleCompanyAdmin Role = "company_admin"
	// RoleDriver executes assigned jobs.
	RoleDriver Role = "driver"
)

// ParseRole maps a stored string onto a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleBroker, RoleCompanyAdmin, RoleDriver:
		return Role(s), true
	default:
		return "", false
	}
}

// IsPlatformAdmin reports whether the role bypasses company ownership checks.
func (r Role) IsPlatformAdmin() bool {
	return r == RoleAdmin
}

// CanPostJobs reports whether the role may create marketplace jobs.
func (r Role) CanPostJobs() bool {
	return r == RoleAdmin || r == RoleBroker || r == RoleCompanyAdmin
}

// CanBid reports whether the role may submit bids for its company.
func (r Role) CanBid() bool {
	return r == RoleCompanyAdmin || r == RoleDriver
}
