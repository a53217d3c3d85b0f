package hasher

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/binary"
	"hash"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

func legacyV2(password string, salt []byte) string {
	subkey := pbkdf2.Key([]byte(password), salt, 1000, 32, sha1.New)
	raw := append([]byte{0x00}, salt...)
	raw = append(raw, subkey...)
	return base64.StdEncoding.EncodeToString(raw)
}

func legacyV3(password string, prf uint32, h func() hash.Hash, iterations uint32, salt []byte, keyLen int) string {
	subkey := pbkdf2.Key([]byte(password), salt, int(iterations), keyLen, h)
	raw := make([]byte, 13, 13+len(salt)+keyLen)
	raw[0] = 0x01
	binary.BigEndian.PutUint32(raw[1:5], prf)
	binary.BigEndian.PutUint32(raw[5:9], iterations)
	binary.BigEndian.PutUint32(raw[9:13], uint32(len(salt)))
	raw = append(raw, salt...)
	raw = append(raw, subkey...)
	return base64.StdEncoding.EncodeToString(raw)
}

func testSalt() []byte {
	salt := make([]byte, 16)
	for i := range salt {
		salt[i] = byte(i * 7)
	}
	return salt
}

func TestVerify_LegacyV2(t *testing.T) {
	stored := legacyV2("Admin@12345", testSalt())

	assert.Equal(t, SuccessRehashNeeded, Verify(stored, "Admin@12345"))
	assert.Equal(t, Failed, Verify(stored, "admin@12345"))
}

func TestVerify_LegacyV3(t *testing.T) {
	tests := []struct {
		name string
		prf  uint32
		h    func() hash.Hash
	}{
		{"sha1", 0, sha1.New},
		{"sha256", 1, sha256.New},
		{"sha512", 2, sha512.New},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := legacyV3("Secret#1", tt.prf, tt.h, 1000, testSalt(), 32)
			assert.Equal(t, SuccessRehashNeeded, Verify(stored, "Secret#1"))
			assert.Equal(t, Failed, Verify(stored, "Secret#2"))
		})
	}
}

func TestVerify_LegacyV3_ASPNETMarker(t *testing.T) {
	// 0x01, prf=1 (SHA256), 10000 rounds: encodes with the familiar "AQAAAAEAACcQ" prefix.
	stored := legacyV3("P@ssw0rd!", 1, sha256.New, 10000, testSalt(), 32)
	require.Equal(t, "AQAAAAEAACcQ", stored[:12])
	assert.Equal(t, SuccessRehashNeeded, Verify(stored, "P@ssw0rd!"))
}

// Frozen hashes produced outside this package with Python's OpenSSL-backed
// hashlib.pbkdf2_hmac and the ASP.NET Identity byte layouts.
func TestVerify_LegacyFrozenVectors(t *testing.T) {
	const password = "Correct Horse 9!"

	tests := []struct {
		name   string
		stored string
	}{
		{"v2 sha1 1000", "ABAREhMUFRYXGBkaGxwdHh9/YX8vrkFZLvdT5LBwa280jvERL1fpeaEquyP3T3BtaQ=="},
		{"v3 sha256 10000", "AQAAAAEAACcQAAAAEKChoqOkpaanqKmqq6ytrq8SFNEpia9dQ1iextPN0hs58pYsmfa5rcVqHUZ46IuWsA=="},
		{"v3 sha512 5000 64-byte key", "AQAAAAIAABOIAAAAEDAxMjM0NTY3ODk6Ozw9Pj/xQNpDWkfsXuASD53w0d7ff+Uegzcg4wCbdrltkAPHhoyjBdMPD6BZImtVKagSnmY7Z7w5qm8ar++sJGmJhcaa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, SuccessRehashNeeded, Verify(tt.stored, password))
			assert.Equal(t, Failed, Verify(tt.stored, password+" "))
		})
	}
}

func TestVerify_LegacyV3_WorkBound(t *testing.T) {
	// MaxIterations rounds over a SHA1 key needing 5 blocks exceeds the block budget.
	raw := make([]byte, 13, 13+16+100)
	raw[0] = 0x01
	binary.BigEndian.PutUint32(raw[1:5], 0)
	binary.BigEndian.PutUint32(raw[5:9], MaxIterations)
	binary.BigEndian.PutUint32(raw[9:13], 16)
	raw = append(raw, testSalt()...)
	raw = append(raw, make([]byte, 100)...)

	assert.Equal(t, 5, Pbkdf2Blocks(100, sha1.Size))
	assert.Equal(t, Failed, Verify(base64.StdEncoding.EncodeToString(raw), "pw"))
}

func TestVerify_LegacyMalformed(t *testing.T) {
	good := legacyV2("pw", testSalt())
	raw, err := base64.StdEncoding.DecodeString(good)
	require.NoError(t, err)

	truncated := base64.StdEncoding.EncodeToString(raw[:len(raw)-1])
	unknownMarker := append([]byte{0x07}, raw[1:]...)

	v3 := legacyV3("pw", 1, sha256.New, 1000, testSalt(), 32)
	v3raw, err := base64.StdEncoding.DecodeString(v3)
	require.NoError(t, err)

	badPrf := append([]byte(nil), v3raw...)
	binary.BigEndian.PutUint32(badPrf[1:5], 9)
	zeroIter := append([]byte(nil), v3raw...)
	binary.BigEndian.PutUint32(zeroIter[5:9], 0)
	hugeSalt := append([]byte(nil), v3raw...)
	binary.BigEndian.PutUint32(hugeSalt[9:13], 1<<31)

	tests := map[string]string{
		"not base64":     "$$$",
		"truncated v2":   truncated,
		"unknown marker": base64.StdEncoding.EncodeToString(unknownMarker),
		"short v3":       base64.StdEncoding.EncodeToString(v3raw[:10]),
		"bad prf":        base64.StdEncoding.EncodeToString(badPrf),
		"zero rounds":    base64.StdEncoding.EncodeToString(zeroIter),
		"salt overflow":  base64.StdEncoding.EncodeToString(hugeSalt),
	}
	for name, stored := range tests {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, Failed, Verify(stored, "pw"))
			})
		})
	}
}

func TestVerify_LegacyMigrationFlow(t *testing.T) {
	h := New(Config{Iterations: testIterations})
	stored := legacyV2("migrate-me", testSalt())

	require.Equal(t, SuccessRehashNeeded, h.VerifyHashedPassword(stored, "migrate-me"))

	rehashed, err := h.HashPassword("migrate-me")
	require.NoError(t, err)
	assert.Equal(t, Success, h.VerifyHashedPassword(rehashed, "migrate-me"))
}
