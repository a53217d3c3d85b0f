package hasher

import (
	"encoding/base64"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIterations = 1000

func TestNew_IterationsFallback(t *testing.T) {
	assert.Equal(t, DefaultIterations, New(Config{}).Iterations())
	assert.Equal(t, DefaultIterations, New(Config{Iterations: -5}).Iterations())
	assert.Equal(t, 1234, New(Config{Iterations: 1234}).Iterations())
	assert.Equal(t, MaxIterations, New(Config{Iterations: MaxIterations + 1}).Iterations())
}

func TestHashPassword_RoundTrip(t *testing.T) {
	h := New(Config{Iterations: testIterations})

	for _, pw := range []string{"P@ssw0rd", "x", "пароль-ünïcødé", strings.Repeat("long", 64)} {
		hashed, err := h.HashPassword(pw)
		require.NoError(t, err)
		assert.Equal(t, Success, h.VerifyHashedPassword(hashed, pw), "password %q", pw)
	}
}

func TestHashPassword_DefaultIterations(t *testing.T) {
	h := New(Config{})

	hashed, err := h.HashPassword("Admin@12345")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hashed, "PBKDF2$SHA256$200000$"))
	assert.Equal(t, Success, h.VerifyHashedPassword(hashed, "Admin@12345"))
}

func TestHashPassword_Format(t *testing.T) {
	hashed, err := HashWithIterations("secret", testIterations)
	require.NoError(t, err)

	parts := strings.Split(hashed, "$")
	require.Len(t, parts, 5)
	assert.Equal(t, "PBKDF2", parts[0])
	assert.Equal(t, "SHA256", parts[1])

	n, err := strconv.Atoi(parts[2])
	require.NoError(t, err)
	assert.Equal(t, testIterations, n)

	salt, err := base64.StdEncoding.DecodeString(parts[3])
	require.NoError(t, err)
	assert.Len(t, salt, SaltSize)

	subkey, err := base64.StdEncoding.DecodeString(parts[4])
	require.NoError(t, err)
	assert.Len(t, subkey, KeySize)
}

func TestHashPassword_FreshSaltPerCall(t *testing.T) {
	a, err := HashWithIterations("same", testIterations)
	require.NoError(t, err)
	b, err := HashWithIterations("same", testIterations)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_InvalidIterations(t *testing.T) {
	for _, n := range []int{0, -1, MaxIterations + 1} {
		_, err := HashWithIterations("pw", n)
		require.ErrorIs(t, err, ErrInvalidInput, "n=%d", n)
	}
}

func TestHashPassword_EmptyPasswordRoundTrip(t *testing.T) {
	hashed, err := HashWithIterations("", testIterations)
	require.NoError(t, err)
	assert.Equal(t, Success, Verify(hashed, ""))
	assert.Equal(t, Failed, Verify(hashed, " "))
}

// A hasher configured past the bound must still produce hashes it can verify.
func TestHasher_ClampedIterationsRoundTrip(t *testing.T) {
	h := New(Config{Iterations: MaxIterations + 1})

	stored := "PBKDF2$SHA256$" + strconv.Itoa(h.Iterations()) + "$c2FsdA==$a2V5"
	iterations, _, _, err := decode(stored)
	require.NoError(t, err)
	assert.Equal(t, MaxIterations, iterations)
}

func TestVerify_WrongPassword(t *testing.T) {
	hashed, err := HashWithIterations("correct horse", testIterations)
	require.NoError(t, err)
	assert.Equal(t, Failed, Verify(hashed, "battery staple"))
	assert.Equal(t, Failed, Verify(hashed, ""))
}

func TestVerify_Malformed(t *testing.T) {
	good, err := HashWithIterations("pw", testIterations)
	require.NoError(t, err)
	parts := strings.Split(good, "$")

	with := func(i int, v string) string {
		cp := append([]string(nil), parts...)
		cp[i] = v
		return strings.Join(cp, "$")
	}

	tests := map[string]string{
		"empty":               "",
		"prefix only":         "PBKDF2$SHA256$",
		"four fields":         strings.Join(parts[:4], "$"),
		"six fields":          good + "$extra",
		"zero iterations":     with(2, "0"),
		"negative iterations": with(2, "-10"),
		"text iterations":     with(2, "many"),
		"huge iterations":     with(2, "99999999999"),
		"bad salt base64":     with(3, "!!notbase64!!"),
		"empty salt":          with(3, ""),
		"bad subkey base64":   with(4, "%%%"),
		"empty subkey":        with(4, ""),
		"random text":         "not-a-hash",
	}

	for name, stored := range tests {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, Failed, Verify(stored, "pw"))
			})
		})
	}
}

func TestVerify_TamperedSubkeyFails(t *testing.T) {
	hashed, err := HashWithIterations("pw", testIterations)
	require.NoError(t, err)

	parts := strings.Split(hashed, "$")
	subkey, err := base64.StdEncoding.DecodeString(parts[4])
	require.NoError(t, err)

	for i := range subkey {
		tampered := append([]byte(nil), subkey...)
		tampered[i] ^= 0x01
		parts[4] = base64.StdEncoding.EncodeToString(tampered)
		assert.Equal(t, Failed, Verify(strings.Join(parts, "$"), "pw"), "byte %d", i)
	}
}

func TestVerify_TamperedSaltOrIterationsFails(t *testing.T) {
	hashed, err := HashWithIterations("pw", testIterations)
	require.NoError(t, err)
	parts := strings.Split(hashed, "$")

	iter := append([]string(nil), parts...)
	iter[2] = strconv.Itoa(testIterations + 1)
	assert.Equal(t, Failed, Verify(strings.Join(iter, "$"), "pw"))

	salt := append([]string(nil), parts...)
	salt[3] = base64.StdEncoding.EncodeToString(make([]byte, SaltSize))
	assert.Equal(t, Failed, Verify(strings.Join(salt, "$"), "pw"))
}

func TestVerify_SubkeyLengthMismatchFails(t *testing.T) {
	hashed, err := HashWithIterations("pw", testIterations)
	require.NoError(t, err)
	parts := strings.Split(hashed, "$")

	subkey, err := base64.StdEncoding.DecodeString(parts[4])
	require.NoError(t, err)

	short := append([]string(nil), parts...)
	short[4] = base64.StdEncoding.EncodeToString(subkey[:16])
	assert.Equal(t, Failed, Verify(strings.Join(short, "$"), "pw"))

	long := append([]string(nil), parts...)
	long[4] = base64.StdEncoding.EncodeToString(append(subkey, 0x00))
	assert.Equal(t, Failed, Verify(strings.Join(long, "$"), "pw"))
}

func TestVerify_IsConfigIndependent(t *testing.T) {
	hashed, err := HashWithIterations("pw", 1500)
	require.NoError(t, err)
	assert.Equal(t, Success, New(Config{Iterations: 9999}).VerifyHashedPassword(hashed, "pw"))
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "success_rehash_needed", SuccessRehashNeeded.String())
	assert.Equal(t, "failed", Result(42).String())
}

func TestPbkdf2Blocks(t *testing.T) {
	assert.Equal(t, 1, Pbkdf2Blocks(32, 32))
	assert.Equal(t, 2, Pbkdf2Blocks(32, 20))
	assert.Equal(t, 1, Pbkdf2Blocks(32, 64))
	assert.Equal(t, 3, Pbkdf2Blocks(41, 20))
	assert.Equal(t, 0, Pbkdf2Blocks(0, 32))
	assert.Equal(t, 0, Pbkdf2Blocks(32, 0))
}

// Produced by an independent PBKDF2 implementation (OpenSSL via Python
// hashlib.pbkdf2_hmac), salt 0x40..0x4f, 1000 rounds.
func TestVerify_FrozenCurrentFormat(t *testing.T) {
	const stored = "PBKDF2$SHA256$1000$QEFCQ0RFRkdISUpLTE1OTw==$h0UWZTCnHa1TdzdBRXrc83AOB/1SHN7G2+FRBZN7nec="

	assert.Equal(t, Success, Verify(stored, "Correct Horse 9!"))
	assert.Equal(t, Failed, Verify(stored, "correct horse 9!"))
}

func TestVerify_KnownExample(t *testing.T) {
	hashed, err := HashWithIterations("Sup3r$ecret", 10000)
	require.NoError(t, err)
	assert.Equal(t, Success, Verify(hashed, "Sup3r$ecret"))
	assert.Equal(t, Failed, Verify(hashed, "wrong"))
}
