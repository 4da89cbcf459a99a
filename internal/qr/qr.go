// Package qr implements the textual payload printed into job QR codes.
//
// A payload is the urlsafe base64 encoding of "<jobID>|<issuedAt>" followed
// by "." and an HMAC-SHA256 signature over that body. The signature ties a
// payload to this installation's secret so random scanner input cannot
// resolve to a job.
package qr

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var ErrMalformedPayload = errors.New("malformed qr payload")

type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Encode builds the payload for a job id, stamped with the issue time.
func (c *Codec) Encode(jobID uint, issuedAt time.Time) string {
	body := fmt.Sprintf("%d|%s", jobID, issuedAt.UTC().Format(time.RFC3339))
	sig := c.sign([]byte(body))
	raw := append([]byte(body), '.')
	raw = append(raw, sig...)
	return base64.URLEncoding.EncodeToString(raw)
}

// Decode verifies the payload's signature and returns the encoded job id and
// issue time. Any parse or verification failure is ErrMalformedPayload: the
// caller cannot distinguish tampering from garbage, and must not.
func (c *Codec) Decode(token string) (uint, time.Time, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return 0, time.Time{}, ErrMalformedPayload
	}

	// the signature is a fixed sha256.Size bytes, so split by length rather
	// than by separator: raw signature bytes may themselves contain '.'
	if len(raw) < sha256.Size+2 || raw[len(raw)-sha256.Size-1] != '.' {
		return 0, time.Time{}, ErrMalformedPayload
	}
	body, sig := raw[:len(raw)-sha256.Size-1], raw[len(raw)-sha256.Size:]

	if !hmac.Equal(c.sign(body), sig) {
		return 0, time.Time{}, ErrMalformedPayload
	}

	sep := bytes.IndexByte(body, '|')
	if sep < 0 {
		return 0, time.Time{}, ErrMalformedPayload
	}

	jobID, err := strconv.ParseUint(string(body[:sep]), 10, 32)
	if err != nil || jobID == 0 {
		return 0, time.Time{}, ErrMalformedPayload
	}

	issuedAt, err := time.Parse(time.RFC3339, string(body[sep+1:]))
	if err != nil {
		return 0, time.Time{}, ErrMalformedPayload
	}

	return uint(jobID), issuedAt, nil
}

func (c *Codec) sign(body []byte) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(body)
	return mac.Sum(nil)
}
