// Package cryptox derives the one-way identifiers the device sends to the
// study server. Raw identifiers never leave the device; only these hashes do.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"math/big"
	"strings"
	"unicode"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the length of the per-install salt used for anonymized hashing.
	SaltSize = 64

	// MinIterations and MaxIterations bound the per-install PBKDF2 work factor.
	MinIterations = 900
	MaxIterations = 1100

	derivedKeyLen = 32
	phoneDigits   = 10
)

// SafeHash returns the URL-safe base64 SHA-256 digest of s.
func SafeHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.URLEncoding.EncodeToString(sum[:])
}

// Hasher hashes hardware and phone identifiers. In anonymized mode the value
// goes through PBKDF2 with a salt that never leaves the device, so the server
// cannot link it to the real identifier. Otherwise the plain SafeHash is used,
// which lets study staff match a known phone number or MAC address.
type Hasher struct {
	Salt       []byte
	Iterations int
}

// NewHasher returns a Hasher with the given per-install parameters.
func NewHasher(salt []byte, iterations int) Hasher {
	return Hasher{Salt: salt, Iterations: iterations}
}

// HashMAC hashes a Bluetooth MAC address.
func (h Hasher) HashMAC(mac string, anonymized bool) string {
	if anonymized {
		return h.derive(mac)
	}
	return SafeHash(mac)
}

// HashPhoneNumber keeps the last ten digits of phone and hashes them.
func (h Hasher) HashPhoneNumber(phone string, anonymized bool) string {
	digits := NormalizePhoneNumber(phone)
	if anonymized {
		return h.derive(digits)
	}
	return SafeHash(digits)
}

func (h Hasher) derive(value string) string {
	iterations := h.Iterations
	if iterations <= 0 {
		iterations = MinIterations
	}
	key := pbkdf2.Key([]byte(value), h.Salt, iterations, derivedKeyLen, sha256.New)
	return base64.URLEncoding.EncodeToString(key)
}

// NormalizePhoneNumber drops every non-digit and keeps the trailing ten
// digits, so "+1 (617) 555-0100" and "6175550100" hash the same.
func NormalizePhoneNumber(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > phoneDigits {
		digits = digits[len(digits)-phoneDigits:]
	}
	return digits
}

// RandomBytes returns n bytes from crypto/rand. It panics if the system
// source fails, which only happens on a broken host.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// RandomIterations picks a PBKDF2 iteration count in [MinIterations, MaxIterations].
func RandomIterations() int {
	n, err := rand.Int(rand.Reader, big.NewInt(MaxIterations-MinIterations+1))
	if err != nil {
		panic(err)
	}
	return MinIterations + int(n.Int64())
}
