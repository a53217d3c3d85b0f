package common

// DefaultAdminRoleName is the role the bootstrap routine guarantees to exist.
const DefaultAdminRoleName = "Admin"

// TokenPurpose values used by the user token provider.
const (
	TokenPurposeResetPassword = "ResetPassword"
	TokenPurposeConfirmEmail  = "Confirmation"
)
