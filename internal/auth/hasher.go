// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// OWASP-recommended argon2id parameters.
const (
	DefaultArgon2Time    = 1         // iterations
	DefaultArgon2Memory  = 64 * 1024 // 64 MiB, in KiB
	DefaultArgon2Threads = 4         // parallelism
	argon2SaltLen        = 16
	argon2KeyLen         = 32
)

// Upper bounds accepted when decoding a stored hash. Anything larger is
// treated as malformed rather than computed.
const (
	maxArgon2Time   = 64
	maxArgon2Memory = 4 * 1024 * 1024 // 4 GiB
	maxArgon2Key    = 1024
)

// MaxPasswordLength bounds the plaintext accepted by Hash.
const MaxPasswordLength = 1024

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code(CodeEmptyPassword).Errorf("password cannot be empty")

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted, self-describing hash of the password.
	Hash(password string) (string, error)

	// Verify reports whether password matches the encoded hash.
	// A malformed hash is a mismatch, never an error.
	Verify(password, encoded string) bool

	// NeedsUpgrade returns true if the hash was produced by a legacy
	// algorithm or with parameters other than the current ones.
	NeedsUpgrade(encoded string) bool
}

// Params is the argon2id work factor.
type Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultParams returns the recommended argon2id parameters.
func DefaultParams() Params {
	return Params{
		Time:      DefaultArgon2Time,
		MemoryKiB: DefaultArgon2Memory,
		Threads:   DefaultArgon2Threads,
	}
}

// Validate checks the parameters are usable.
func (p Params) Validate() error {
	switch {
	case p.Time == 0 || p.Time > maxArgon2Time:
		return oops.Code(CodeValidation).With("time", p.Time).Errorf("argon2 time must be between 1 and %d", maxArgon2Time)
	case p.MemoryKiB < 8*uint32(p.Threads) || p.MemoryKiB > maxArgon2Memory:
		return oops.Code(CodeValidation).With("memory_kib", p.MemoryKiB).Errorf("argon2 memory must be at least 8 KiB per thread and at most %d KiB", maxArgon2Memory)
	case p.Threads == 0:
		return oops.Code(CodeValidation).Errorf("argon2 threads must be at least 1")
	}
	return nil
}

// Argon2idHasher implements PasswordHasher using argon2id. It also verifies
// bcrypt hashes so accounts imported from older deployments keep working.
type Argon2idHasher struct {
	params Params
}

// NewArgon2idHasher creates an Argon2idHasher with DefaultParams.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{params: DefaultParams()}
}

// NewArgon2idHasherWithParams creates an Argon2idHasher with a custom work factor.
func NewArgon2idHasherWithParams(p Params) (*Argon2idHasher, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Argon2idHasher{params: p}, nil
}

// Params returns the work factor used for new hashes.
func (h *Argon2idHasher) Params() Params {
	return h.params
}

// Hash produces an argon2id hash of the password.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > MaxPasswordLength {
		return "", oops.Code(CodePasswordTooLong).
			With("max_length", MaxPasswordLength).
			Errorf("password exceeds maximum length")
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").With("operation", "generate salt").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.MemoryKiB, h.params.Threads, argon2KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryKiB,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify checks if the password matches the hash.
func (h *Argon2idHasher) Verify(password, encoded string) bool {
	if isBcrypt(encoded) {
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
	}

	decoded, err := decodeArgon2id(encoded)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), decoded.salt,
		decoded.params.Time, decoded.params.MemoryKiB, decoded.params.Threads, uint32(len(decoded.key)))

	return subtle.ConstantTimeCompare(computed, decoded.key) == 1
}

// NeedsUpgrade returns true for bcrypt hashes and for argon2id hashes whose
// parameters differ from the hasher's.
func (h *Argon2idHasher) NeedsUpgrade(encoded string) bool {
	decoded, err := decodeArgon2id(encoded)
	if err != nil {
		return true
	}
	return decoded.params != h.params
}

// ValidateHash returns an error if encoded is neither a well-formed argon2id
// hash nor a bcrypt hash.
func ValidateHash(encoded string) error {
	if isBcrypt(encoded) {
		if _, err := bcrypt.Cost([]byte(encoded)); err != nil {
			return oops.Code("AUTH_INVALID_HASH").Wrap(err)
		}
		return nil
	}
	_, err := decodeArgon2id(encoded)
	return err
}

type argon2idHash struct {
	params Params
	salt   []byte
	key    []byte
}

func decodeArgon2id(encoded string) (*argon2idHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	if version != argon2.Version {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("unsupported argon2 version: %d", version)
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return nil, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	// Validate threads fits in uint8 to prevent silent truncation
	if threads == 0 || threads > 255 {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("threads value %d out of range", threads)
	}
	if time == 0 || time > maxArgon2Time || memory == 0 || memory > maxArgon2Memory {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("argon2 cost parameters out of range")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	if len(salt) == 0 || len(key) == 0 || len(key) > maxArgon2Key {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("invalid salt or key length")
	}

	return &argon2idHash{
		params: Params{Time: time, MemoryKiB: memory, Threads: uint8(threads)},
		salt:   salt,
		key:    key,
	}, nil
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}
