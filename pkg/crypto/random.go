package crypto

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"io"
)

// GenerateRandomString ...
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes)[:length], nil
}

// getRandReader returns a deterministic reader derived from seed, or
// crypto/rand.Reader when seed is empty.
func getRandReader(seed string) io.Reader {
	if seed == "" {
		return rand.Reader
	}
	return newDRand(seed)
}

// generateRandomString generates a random string of the given length using r.
func generateRandomString(length int, r io.Reader) (string, error) {
	bytes := make([]byte, length)
	if _, err := io.ReadFull(r, bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes)[:length], nil
}

func newDRand(seed string) io.Reader {
	return &dRand{next: []byte(seed)}
}

type dRand struct {
	next []byte
}

func (d *dRand) cycle() []byte {
	result := sha512.Sum512(d.next)
	d.next = result[:sha512.Size/2]
	return result[sha512.Size/2:]
}

func (d *dRand) Read(b []byte) (int, error) {
	if len(b) == 1 {
		return 0, errors.New("dRand: single-byte reads are not supported")
	}
	n := 0
	for n < len(b) {
		out := d.cycle()
		n += copy(b[n:], out)
	}
	return n, nil
}
