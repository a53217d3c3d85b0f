// Package hasher produces and verifies password hashes.
//
// New hashes use PBKDF2-HMAC-SHA256 and are encoded as
//
//	PBKDF2$SHA256$<iterations>$<base64 salt>$<base64 subkey>
//
// so the work factor and salt travel with the hash. Hashes in the older
// ASP.NET Identity binary formats are still accepted; a match on one of them
// yields SuccessRehashNeeded so callers can replace the stored value.
//
// Verification never panics and never returns an error: anything malformed
// is reported as Failed.
package hasher
