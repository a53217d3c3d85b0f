package hasher

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	DefaultIterations = 200000
	// MaxIterations bounds the work factor on both sides: HashWithIterations
	// refuses to produce what Verify would refuse to accept.
	MaxIterations = 10_000_000
	SaltSize      = 16
	KeySize       = 32

	formatTag = "PBKDF2"
	prfTag    = "SHA256"
	prefix    = formatTag + "$" + prfTag + "$"
	fieldSep  = "$"
	numFields = 5
)

// Result is the outcome of a verification.
type Result int

const (
	Failed Result = iota
	Success
	SuccessRehashNeeded
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case SuccessRehashNeeded:
		return "success_rehash_needed"
	default:
		return "failed"
	}
}

// Config controls hash production. Non-positive Iterations select
// DefaultIterations; values above MaxIterations are clamped.
type Config struct {
	Iterations int
}

// PasswordHasher is what the identity manager depends on.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	VerifyHashedPassword(hashedPassword, providedPassword string) Result
}

type Hasher struct {
	iterations int
}

func New(cfg Config) *Hasher {
	it := cfg.Iterations
	switch {
	case it <= 0:
		it = DefaultIterations
	case it > MaxIterations:
		it = MaxIterations
	}
	return &Hasher{iterations: it}
}

// Iterations reports the work factor used for new hashes.
func (h *Hasher) Iterations() int {
	return h.iterations
}

// HashPassword hashes password with the configured iteration count.
func (h *Hasher) HashPassword(password string) (string, error) {
	return HashWithIterations(password, h.iterations)
}

// HashWithIterations hashes password with a fresh random salt and n rounds.
// n must lie in [1, MaxIterations]. The empty password is a valid input.
func HashWithIterations(password string, n int) (string, error) {
	if n <= 0 || n > MaxIterations {
		return "", fmt.Errorf("%w: iterations %d outside [1, %d]", ErrInvalidInput, n, MaxIterations)
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	subkey := pbkdf2.Key([]byte(password), salt, n, KeySize, sha256.New)

	b64 := base64.StdEncoding
	return strings.Join([]string{
		formatTag,
		prfTag,
		strconv.Itoa(n),
		b64.EncodeToString(salt),
		b64.EncodeToString(subkey),
	}, fieldSep), nil
}

// VerifyHashedPassword checks providedPassword against hashedPassword.
func (h *Hasher) VerifyHashedPassword(hashedPassword, providedPassword string) Result {
	return Verify(hashedPassword, providedPassword)
}

// Verify is the configuration-independent verification routine.
func Verify(hashedPassword, providedPassword string) Result {
	if hashedPassword == "" {
		return Failed
	}

	if strings.HasPrefix(hashedPassword, prefix) {
		iterations, salt, expected, err := decode(hashedPassword)
		if err != nil {
			return Failed
		}
		actual := pbkdf2.Key([]byte(providedPassword), salt, iterations, KeySize, sha256.New)
		if equal(actual, expected) {
			return Success
		}
		return Failed
	}

	if verifyLegacy(hashedPassword, providedPassword) {
		return SuccessRehashNeeded
	}
	return Failed
}

func decode(encoded string) (int, []byte, []byte, error) {
	parts := strings.Split(encoded, fieldSep)
	if len(parts) != numFields || parts[0] != formatTag || parts[1] != prfTag {
		return 0, nil, nil, errMalformedHash
	}

	iterations, err := strconv.Atoi(parts[2])
	if err != nil || iterations <= 0 || iterations > MaxIterations {
		return 0, nil, nil, errMalformedHash
	}

	b64 := base64.StdEncoding
	salt, err := b64.DecodeString(parts[3])
	if err != nil || len(salt) == 0 {
		return 0, nil, nil, errMalformedHash
	}
	subkey, err := b64.DecodeString(parts[4])
	if err != nil || len(subkey) == 0 {
		return 0, nil, nil, errMalformedHash
	}

	return iterations, salt, subkey, nil
}

// equal is a length-checked constant-time comparison.
func equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Pbkdf2Blocks is the number of PRF blocks PBKDF2 computes for a key of
// keyLen bytes with a PRF producing hLen bytes: ceil(keyLen/hLen).
func Pbkdf2Blocks(keyLen, hLen int) int {
	if keyLen <= 0 || hLen <= 0 {
		return 0
	}
	return (keyLen + hLen - 1) / hLen
}
