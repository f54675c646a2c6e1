package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the required key length in bytes.
const KeySize = 32

// Algorithm identifies the AEAD used for a sealed blob.
type Algorithm byte

const (
	AESGCM   Algorithm = 1
	ChaCha20 Algorithm = 2
)

func (a Algorithm) String() string {
	switch a {
	case AESGCM:
		return "aes-256-gcm"
	case ChaCha20:
		return "chacha20-poly1305"
	default:
		return fmt.Sprintf("algorithm(%d)", byte(a))
	}
}

const (
	magic0     = 'T'
	magic1     = 'M'
	version    = 1
	headerSize = 4
)

// Errors returned by Open.
var (
	ErrNotSealed      = errors.New("adaptive: data is not sealed")
	ErrUnknownVersion = errors.New("adaptive: unknown envelope version")
	ErrTruncated      = errors.New("adaptive: sealed data truncated")
	ErrAuth           = errors.New("adaptive: message authentication failed")
)

// Sealer encrypts and authenticates data. It is safe for concurrent use.
type Sealer struct {
	alg  Algorithm
	key  []byte
	aead cipher.AEAD
}

// New creates a Sealer using the preferred algorithm for this platform.
func New(key []byte) (*Sealer, error) {
	return NewWithAlgorithm(key, Preferred())
}

// NewWithAlgorithm creates a Sealer that seals with alg.
func NewWithAlgorithm(key []byte, alg Algorithm) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("adaptive: key must be %d bytes, got %d", KeySize, len(key))
	}
	aead, err := newAEAD(key, alg)
	if err != nil {
		return nil, err
	}
	return &Sealer{alg: alg, key: append([]byte(nil), key...), aead: aead}, nil
}

// Preferred returns the algorithm New selects. Go's AES implementation is
// hardware accelerated on amd64 and arm64.
func Preferred() Algorithm {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return AESGCM
	default:
		return ChaCha20
	}
}

// Algorithm returns the algorithm used by Seal.
func (s *Sealer) Algorithm() Algorithm {
	return s.alg
}

// Seal encrypts plaintext and binds it to ad.
func (s *Sealer) Seal(plaintext, ad []byte) ([]byte, error) {
	ns := s.aead.NonceSize()
	out := make([]byte, headerSize+ns, headerSize+ns+len(plaintext)+s.aead.Overhead())
	out[0], out[1], out[2], out[3] = magic0, magic1, version, byte(s.alg)

	nonce := out[headerSize:]
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("adaptive: nonce: %w", err)
	}
	return s.aead.Seal(out, nonce, plaintext, ad), nil
}

// Open authenticates and decrypts a blob produced by Seal with the same
// key and ad, whichever algorithm sealed it.
func (s *Sealer) Open(sealed, ad []byte) ([]byte, error) {
	if !IsSealed(sealed) {
		return nil, ErrNotSealed
	}
	if sealed[2] != version {
		return nil, ErrUnknownVersion
	}

	aead := s.aead
	if alg := Algorithm(sealed[3]); alg != s.alg {
		var err error
		if aead, err = newAEAD(s.key, alg); err != nil {
			return nil, err
		}
	}

	body := sealed[headerSize:]
	ns := aead.NonceSize()
	if len(body) < ns+aead.Overhead() {
		return nil, ErrTruncated
	}

	pt, err := aead.Open(nil, body[:ns], body[ns:], ad)
	if err != nil {
		return nil, ErrAuth
	}
	return pt, nil
}

// IsSealed reports whether data starts with a sealed-envelope header.
func IsSealed(data []byte) bool {
	return len(data) >= headerSize && data[0] == magic0 && data[1] == magic1
}

// ParseKey decodes a key given as hex or standard base64.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if b, err := hex.DecodeString(s); err == nil && len(b) == KeySize {
		return b, nil
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == KeySize {
		return b, nil
	}
	return nil, fmt.Errorf("adaptive: key must be %d bytes encoded as hex or base64", KeySize)
}

func newAEAD(key []byte, alg Algorithm) (cipher.AEAD, error) {
	switch alg {
	case AESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	case ChaCha20:
		return chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("adaptive: unsupported %s", alg)
	}
}
