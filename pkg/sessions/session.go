package sessions

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/japap-media/server/pkg/structs"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// TokenLifetime is how long a viewer token stays valid after it was issued.
const TokenLifetime = 21 * 24 * time.Hour

type Session struct {
	_msgpack struct{} `msgpack:",as_array"`

	ViewerId string
	IssuedAt int64
}

type Signer struct {
	key []byte
	now func() time.Time
}

func NewSigner(key []byte) *Signer {
	return &Signer{key: key, now: time.Now}
}

// New mints a session for a brand new anonymous viewer.
func (s *Signer) New() Session {
	return Session{
		ViewerId: uuid.New().String(),
		IssuedAt: s.now().UnixMilli(),
	}
}

func (s *Signer) Token(sess Session) (string, error) {
	// Claims
	claims, err := msgpack.Marshal(&sess)
	if err != nil {
		return "", err
	}

	// Signature
	h := hmac.New(sha256.New, s.key)
	if _, err := h.Write(claims); err != nil {
		return "", err
	}
	signature := h.Sum(nil)

	return base64.URLEncoding.EncodeToString(claims) + "." + base64.URLEncoding.EncodeToString(signature), nil
}

func (s *Signer) Parse(token string) (Session, error) {
	var sess Session

	// Split token into claims and signature
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return sess, ErrInvalidTokenFormat
	}

	claims, err := base64.URLEncoding.DecodeString(parts[0])
	if err != nil {
		return sess, ErrInvalidTokenFormat
	}
	signature, err := base64.URLEncoding.DecodeString(parts[1])
	if err != nil {
		return sess, ErrInvalidTokenFormat
	}

	// Check signature
	h := hmac.New(sha256.New, s.key)
	if _, err := h.Write(claims); err != nil {
		return sess, err
	}
	if !hmac.Equal(signature, h.Sum(nil)) {
		return sess, ErrInvalidTokenSignature
	}

	if err := msgpack.Unmarshal(claims, &sess); err != nil {
		return sess, errors.Wrap(err, "decode claims")
	}
	if sess.ViewerId == "" {
		return sess, ErrInvalidTokenFormat
	}

	// Make sure token hasn't expired
	if s.now().UnixMilli()-sess.IssuedAt > TokenLifetime.Milliseconds() {
		return sess, ErrTokenExpired
	}

	return sess, nil
}

func (s *Signer) V0(sess Session) (structs.V0Session, error) {
	token, err := s.Token(sess)
	return structs.V0Session{
		ViewerId: sess.ViewerId,
		IssuedAt: sess.IssuedAt,
		Token:    token,
	}, err
}
