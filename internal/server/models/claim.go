package models

// Claim is a (type, value) pair attached to a user.
type Claim struct {
	Type  string
	Value string
}

// UserLoginInfo identifies an external login binding.
type UserLoginInfo struct {
	LoginProvider string
	ProviderKey   string
}

// UserLogin is a row of the external logins table.
type UserLogin struct {
	LoginProvider string
	ProviderKey   string
	UserID        string
}

func NewUserLogin(userID string, info UserLoginInfo) UserLogin {
	return UserLogin{LoginProvider: info.LoginProvider, ProviderKey: info.ProviderKey, UserID: userID}
}

// Info drops the owning user id.
func (l UserLogin) Info() UserLoginInfo {
	return UserLoginInfo{LoginProvider: l.LoginProvider, ProviderKey: l.ProviderKey}
}
