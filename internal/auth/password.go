package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrHashFormat reports a digest that cannot be parsed. Callers must treat
// it as an infrastructure failure, not as a failed credential check.
var ErrHashFormat = errors.New("auth: malformed password digest")

// Argon2Params control the cost of the argon2id key derivation.
type Argon2Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params match the widely deployed argon2id baseline
// (64 MiB memory, single pass, four lanes).
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:      64 * 1024,
		Time:        1,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher derives and verifies argon2id password digests in PHC string
// format. The zero value is unusable; construct with NewHasher.
type Hasher struct {
	params Argon2Params
}

// NewHasher validates params and returns a Hasher.
func NewHasher(params Argon2Params) (*Hasher, error) {
	if params.Memory < 8*1024 {
		return nil, errors.New("auth: argon2 memory must be >= 8192 KiB")
	}
	if params.Time < 1 {
		return nil, errors.New("auth: argon2 time must be >= 1")
	}
	if params.Parallelism < 1 {
		return nil, errors.New("auth: argon2 parallelism must be >= 1")
	}
	if params.SaltLength < 16 {
		return nil, errors.New("auth: argon2 salt length must be >= 16")
	}
	if params.KeyLength < 16 {
		return nil, errors.New("auth: argon2 key length must be >= 16")
	}
	return &Hasher{params: params}, nil
}

// Hash derives a digest with a fresh random salt. The output embeds the
// algorithm version and parameters so it can be verified independently of
// the Hasher's current configuration.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the digest with the parameters embedded in encoded and
// compares in constant time. A malformed digest returns ErrHashFormat.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	params, salt, key, err := decodeDigest(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

func decodeDigest(encoded string) (Argon2Params, []byte, []byte, error) {
	var params Argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return params, nil, nil, ErrHashFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return params, nil, nil, ErrHashFormat
	}

	if err := parseCostParams(parts[3], &params); err != nil {
		return params, nil, nil, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return params, nil, nil, ErrHashFormat
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return params, nil, nil, ErrHashFormat
	}

	return params, salt, key, nil
}

func parseCostParams(part string, params *Argon2Params) error {
	pairs := strings.Split(part, ",")
	if len(pairs) != 3 {
		return ErrHashFormat
	}
	for _, pair := range pairs {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return ErrHashFormat
		}
		switch kv[0] {
		case "m":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || v == 0 {
				return ErrHashFormat
			}
			params.Memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || v == 0 {
				return ErrHashFormat
			}
			params.Time = uint32(v)
		case "p":
			v, err := strconv.ParseUint(kv[1], 10, 8)
			if err != nil || v == 0 {
				return ErrHashFormat
			}
			params.Parallelism = uint8(v)
		default:
			return ErrHashFormat
		}
	}
	return nil
}
