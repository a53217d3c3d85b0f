package services

// SignInResult is the outcome of PasswordSignIn.
type SignInResult int

const (
	SignInFailure SignInResult = iota
	SignInSuccess
	SignInLockedOut
	SignInRequiresVerification
)

func (r SignInResult) String() string {
	switch r {
	case SignInSuccess:
		return "success"
	case SignInLockedOut:
		return "locked_out"
	case SignInRequiresVerification:
		return "requires_verification"
	default:
		return "failure"
	}
}
