package product

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"github.com/go-faster/errors"
	gslug "github.com/gosimple/slug"
)

// Slugger derives unguessable, URL-safe product slugs from product names
// using a keyed hash. The secret is injected at construction time and never
// read from ambient process state.
type Slugger struct {
	secret []byte
}

// NewSlugger returns a Slugger keyed with the given secret.
func NewSlugger(secret []byte) *Slugger {
	return &Slugger{secret: secret}
}

// Derive returns an encrypted slug for name. The human-readable slug form of
// the name is salted with 8 random bytes, HMAC-SHA256 hashed, and the first
// 16 bytes of the digest are base64url encoded without padding. The salt makes
// repeated derivations of the same name produce distinct slugs.
func (s *Slugger) Derive(name string) (string, error) {
	salt := make([]byte, 8)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "read salt")
	}
	return s.encode(gslug.Make(name) + hex.EncodeToString(salt)), nil
}

func (s *Slugger) encode(text string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(text))
	digest := mac.Sum(nil)[:16]
	return base64.RawURLEncoding.EncodeToString(digest)
}
