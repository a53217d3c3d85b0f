package hasher

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/binary"
	"hash"

	"golang.org/x/crypto/pbkdf2"
)

// ASP.NET Identity binary hash formats.
//
// v2: base64( 0x00 | salt[16] | subkey[32] ), PBKDF2-HMAC-SHA1, 1000 rounds.
// v3: base64( 0x01 | prf u32 | iter u32 | saltLen u32 | salt | subkey ),
// integers big-endian, prf 0=SHA1 1=SHA256 2=SHA512.
const (
	legacyV2Marker     = 0x00
	legacyV2Iterations = 1000
	legacyV2SaltSize   = 16
	legacyV2KeySize    = 32

	legacyV3Marker     = 0x01
	legacyV3HeaderSize = 13
	legacyV3MinSalt    = 16
	legacyV3MinKey     = 16

	// legacyV3MaxBlockRounds caps iterations times PRF blocks, since the
	// stored subkey length decides how many blocks are derived.
	legacyV3MaxBlockRounds = 4 * MaxIterations
)

func verifyLegacy(hashedPassword, providedPassword string) bool {
	raw, err := base64.StdEncoding.DecodeString(hashedPassword)
	if err != nil || len(raw) == 0 {
		return false
	}

	switch raw[0] {
	case legacyV2Marker:
		return verifyLegacyV2(raw, providedPassword)
	case legacyV3Marker:
		return verifyLegacyV3(raw, providedPassword)
	default:
		return false
	}
}

func verifyLegacyV2(raw []byte, password string) bool {
	if len(raw) != 1+legacyV2SaltSize+legacyV2KeySize {
		return false
	}
	salt := raw[1 : 1+legacyV2SaltSize]
	expected := raw[1+legacyV2SaltSize:]

	actual := pbkdf2.Key([]byte(password), salt, legacyV2Iterations, legacyV2KeySize, sha1.New)
	return equal(actual, expected)
}

func verifyLegacyV3(raw []byte, password string) bool {
	if len(raw) < legacyV3HeaderSize {
		return false
	}

	prf := prfFor(binary.BigEndian.Uint32(raw[1:5]))
	iterations := binary.BigEndian.Uint32(raw[5:9])
	saltLen := binary.BigEndian.Uint32(raw[9:13])

	if prf == nil || iterations == 0 || iterations > MaxIterations {
		return false
	}
	if saltLen < legacyV3MinSalt || uint64(saltLen) > uint64(len(raw)-legacyV3HeaderSize) {
		return false
	}

	salt := raw[legacyV3HeaderSize : legacyV3HeaderSize+int(saltLen)]
	expected := raw[legacyV3HeaderSize+int(saltLen):]
	if len(expected) < legacyV3MinKey {
		return false
	}

	blocks := Pbkdf2Blocks(len(expected), prf().Size())
	if uint64(iterations)*uint64(blocks) > legacyV3MaxBlockRounds {
		return false
	}

	actual := pbkdf2.Key([]byte(password), salt, int(iterations), len(expected), prf)
	return equal(actual, expected)
}

func prfFor(id uint32) func() hash.Hash {
	switch id {
	case 0:
		return sha1.New
	case 1:
		return sha256.New
	case 2:
		return sha512.New
	default:
		return nil
	}
}
