package coupang

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const signatureAlgorithm = "HmacSHA256"

// compactUTCLayout is the yyMMdd'T'HHmmss'Z' layout the API expects on the
// body-signed (POST) form.
const compactUTCLayout = "060102T150405Z"

// TimestampFormat selects how the signed-date is encoded.
type TimestampFormat int

// Timestamp formats. TimestampAuto picks millis for GET and compact UTC for
// everything else.
const (
	TimestampAuto TimestampFormat = iota
	TimestampMillis
	TimestampCompactUTC
)

// DigestEncoding selects how the HMAC digest is rendered in the header.
type DigestEncoding int

// Digest encodings.
const (
	DigestHex DigestEncoding = iota
	DigestBase64
)

// Credentials are the Partners API keys. They are read once at startup and
// never mutated.
type Credentials struct {
	AccessKey string
	SecretKey string
	SubID     string
}

// Validate returns ErrConfiguration when either key is missing.
func (c Credentials) Validate() error {
	if c.AccessKey == "" {
		return fmt.Errorf("%w: access key is empty", ErrConfiguration)
	}
	if c.SecretKey == "" {
		return fmt.Errorf("%w: secret key is empty", ErrConfiguration)
	}
	return nil
}

// Signer builds CEA Authorization header values.
type Signer struct {
	creds    Credentials
	tsFormat TimestampFormat
	encoding DigestEncoding
	nowFunc  func() time.Time
}

// SignerOption configures the Signer.
type SignerOption func(*Signer)

// WithTimestampFormat forces a timestamp encoding for every request.
func WithTimestampFormat(f TimestampFormat) SignerOption {
	return func(s *Signer) {
		s.tsFormat = f
	}
}

// WithDigestEncoding selects hex or base64 digests.
func WithDigestEncoding(e DigestEncoding) SignerOption {
	return func(s *Signer) {
		s.encoding = e
	}
}

// WithSignerNowFunc overrides the time function for testing.
func WithSignerNowFunc(f func() time.Time) SignerOption {
	return func(s *Signer) {
		s.nowFunc = f
	}
}

// NewSigner creates a Signer. It fails with ErrConfiguration if either key is
// empty.
func NewSigner(creds Credentials, opts ...SignerOption) (*Signer, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	s := &Signer{
		creds:   creds,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign returns the Authorization header value and the signed-date for a
// request issued now. queryOrBody is the canonical query string for GET or the
// exact body bytes for POST.
func (s *Signer) Sign(method, path, queryOrBody string) (string, string, error) {
	return s.SignAt(s.nowFunc(), method, path, queryOrBody)
}

// SignAt is Sign with an explicit issue time.
func (s *Signer) SignAt(t time.Time, method, path, queryOrBody string) (string, string, error) {
	if err := s.creds.Validate(); err != nil {
		return "", "", err
	}

	ts := s.timestamp(t, method)
	digest := s.digest(ts, method, path, queryOrBody)

	header := fmt.Sprintf(
		"CEA algorithm=%s, access-key=%s, signed-date=%s, signature=%s",
		signatureAlgorithm,
		s.creds.AccessKey,
		ts,
		digest,
	)
	return header, ts, nil
}

// digest computes the HMAC of signed-date, method, path and payload in the
// configured encoding.
func (s *Signer) digest(ts, method, path, queryOrBody string) string {
	mac := hmac.New(sha256.New, []byte(s.creds.SecretKey))
	mac.Write([]byte(ts + method + path + queryOrBody)) //nolint:errcheck // hash.Hash.Write never returns an error

	if s.encoding == DigestBase64 {
		return base64.StdEncoding.EncodeToString(mac.Sum(nil))
	}
	return hex.EncodeToString(mac.Sum(nil))
}

// ErrInvalidSignature is returned by Verify when a header does not match.
var ErrInvalidSignature = errors.New("invalid signature")

// AuthHeader is a parsed CEA Authorization header.
type AuthHeader struct {
	Algorithm  string
	AccessKey  string
	SignedDate string
	Signature  string
}

// ParseAuthorization splits a CEA header into its fields.
func ParseAuthorization(header string) (AuthHeader, error) {
	rest, ok := strings.CutPrefix(header, "CEA ")
	if !ok {
		return AuthHeader{}, fmt.Errorf("%w: missing CEA scheme", ErrInvalidSignature)
	}

	var h AuthHeader
	for _, part := range strings.Split(rest, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return AuthHeader{}, fmt.Errorf("%w: malformed field %q", ErrInvalidSignature, part)
		}
		switch k {
		case "algorithm":
			h.Algorithm = v
		case "access-key":
			h.AccessKey = v
		case "signed-date":
			h.SignedDate = v
		case "signature":
			// base64 digests may end in '=' padding, which Cut leaves intact.
			h.Signature = v
		}
	}

	if h.Algorithm == "" || h.AccessKey == "" || h.SignedDate == "" || h.Signature == "" {
		return AuthHeader{}, fmt.Errorf("%w: incomplete header", ErrInvalidSignature)
	}
	return h, nil
}

// SignedAt decodes the signed-date as either epoch millis or compact UTC.
func (h AuthHeader) SignedAt() (time.Time, error) {
	if ms, err := strconv.ParseInt(h.SignedDate, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	t, err := time.Parse(compactUTCLayout, h.SignedDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: signed-date %q", ErrInvalidSignature, h.SignedDate)
	}
	return t, nil
}

// Verify checks that header was produced by these credentials for the given
// request. It is the server-side counterpart of Sign.
func (s *Signer) Verify(header, method, path, queryOrBody string) (AuthHeader, error) {
	h, err := ParseAuthorization(header)
	if err != nil {
		return h, err
	}
	if h.Algorithm != signatureAlgorithm {
		return h, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidSignature, h.Algorithm)
	}
	if h.AccessKey != s.creds.AccessKey {
		return h, fmt.Errorf("%w: unknown access key", ErrInvalidSignature)
	}
	if _, err := h.SignedAt(); err != nil {
		return h, err
	}

	want := s.digest(h.SignedDate, method, path, queryOrBody)
	if !hmac.Equal([]byte(want), []byte(h.Signature)) {
		return h, fmt.Errorf("%w: digest mismatch", ErrInvalidSignature)
	}
	return h, nil
}

func (s *Signer) timestamp(t time.Time, method string) string {
	format := s.tsFormat
	if format == TimestampAuto {
		if method == http.MethodGet {
			format = TimestampMillis
		} else {
			format = TimestampCompactUTC
		}
	}

	if format == TimestampCompactUTC {
		return t.UTC().Format(compactUTCLayout)
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}
