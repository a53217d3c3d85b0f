package models

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewSecurityStamp returns a fresh opaque security stamp. Any change to
// credentials should rotate it so that outstanding user tokens stop verifying.
func NewSecurityStamp() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
