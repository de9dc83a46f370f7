package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTokenInvalid = errors.New("download token invalid")
	ErrTokenExpired = errors.New("download token expired")
)

// DownloadClaims is the content of a verified download token.
type DownloadClaims struct {
	VersionID uint
	Path      string
	ExpiresAt time.Time
}

// SignedURLSigner creates and validates HMAC download tokens bound to a version and its file path.
// Re-uploading a file changes the path, which invalidates links issued for the previous file.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token for versionID/path and its expiry.
func (s *SignedURLSigner) Sign(versionID uint, path string) (string, time.Time, error) {
	if versionID == 0 || path == "" {
		return "", time.Time{}, fmt.Errorf("version id and path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	payload := strings.Join([]string{
		strconv.FormatUint(uint64(versionID), 10),
		strconv.FormatInt(expiresAt.Unix(), 10),
		path,
	}, "|")
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return encoded + "." + s.sign(encoded), expiresAt, nil
}

// Verify checks signature and expiry and returns the embedded claims.
func (s *SignedURLSigner) Verify(token string) (DownloadClaims, error) {
	encoded, signature, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || signature == "" {
		return DownloadClaims{}, ErrTokenInvalid
	}
	if !hmac.Equal([]byte(s.sign(encoded)), []byte(signature)) {
		return DownloadClaims{}, ErrTokenInvalid
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return DownloadClaims{}, ErrTokenInvalid
	}
	parts := strings.SplitN(string(raw), "|", 3)
	if len(parts) != 3 {
		return DownloadClaims{}, ErrTokenInvalid
	}
	versionID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return DownloadClaims{}, ErrTokenInvalid
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return DownloadClaims{}, ErrTokenInvalid
	}
	claims := DownloadClaims{VersionID: uint(versionID), Path: parts[2], ExpiresAt: time.Unix(exp, 0)}
	if s.now().After(claims.ExpiresAt) {
		return claims, ErrTokenExpired
	}
	return claims, nil
}

func (s *SignedURLSigner) sign(encoded string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(encoded))
	return hex.EncodeToString(mac.Sum(nil))
}
