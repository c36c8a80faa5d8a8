package auth

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/abdul-hamid-achik/fetchkit/packages/fetch"
)

// DigestDoer wraps a transport with RFC 2617 digest authentication. A 401
// response carrying a Digest challenge is answered exactly once with a
// recomputed Authorization header; anything else passes through untouched.
type DigestDoer struct {
	username string
	password string
	next     fetch.Doer
}

// NewDigest builds a DigestDoer around next. A nil next falls back to
// http.DefaultClient.
func NewDigest(username, password string, next fetch.Doer) *DigestDoer {
	if next == nil {
		next = http.DefaultClient
	}
	return &DigestDoer{username: username, password: password, next: next}
}

// Do dispatches the request, answering a digest challenge if one comes
// back. The retry reuses the original body via GetBody.
func (d *DigestDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.next.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	header := resp.Header.Get("WWW-Authenticate")
	if !strings.HasPrefix(header, "Digest ") {
		return resp, nil
	}

	challenge := ParseChallenge(header)
	cnonce, err := generateCnonce()
	if err != nil {
		return nil, err
	}

	answer := digestAnswer{
		username: d.username,
		password: d.password,
		method:   req.Method,
		uri:      req.URL.RequestURI(),
		realm:    challenge["realm"],
		nonce:    challenge["nonce"],
		opaque:   challenge["opaque"],
		qop:      challenge["qop"],
		nc:       "00000001",
		cnonce:   cnonce,
	}

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", answer.header())

	// Drain the challenge response so the connection can be reused.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return d.next.Do(retry)
}

// ParseChallenge splits a WWW-Authenticate digest header into its
// key/value parameters.
func ParseChallenge(header string) map[string]string {
	params := make(map[string]string)
	header = strings.TrimPrefix(header, "Digest ")
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		params[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	return params
}

type digestAnswer struct {
	username string
	password string
	method   string
	uri      string
	realm    string
	nonce    string
	opaque   string
	qop      string
	nc       string
	cnonce   string
}

// response computes the digest response hash. With qop the newer
// HA1:nonce:nc:cnonce:qop:HA2 form applies, without it the original
// HA1:nonce:HA2 form.
func (a digestAnswer) response() string {
	ha1 := md5Hash(fmt.Sprintf("%s:%s:%s", a.username, a.realm, a.password))
	ha2 := md5Hash(fmt.Sprintf("%s:%s", a.method, a.uri))

	if a.qop == "auth" || a.qop == "auth-int" {
		return md5Hash(fmt.Sprintf("%s:%s:%s:%s:%s:%s", ha1, a.nonce, a.nc, a.cnonce, a.qop, ha2))
	}
	return md5Hash(fmt.Sprintf("%s:%s:%s", ha1, a.nonce, ha2))
}

func (a digestAnswer) header() string {
	parts := []string{
		fmt.Sprintf(`username="%s"`, a.username),
		fmt.Sprintf(`realm="%s"`, a.realm),
		fmt.Sprintf(`nonce="%s"`, a.nonce),
		fmt.Sprintf(`uri="%s"`, a.uri),
		fmt.Sprintf(`response="%s"`, a.response()),
	}

	if a.qop != "" {
		parts = append(parts,
			fmt.Sprintf(`qop=%s`, a.qop),
			fmt.Sprintf(`nc=%s`, a.nc),
			fmt.Sprintf(`cnonce="%s"`, a.cnonce),
		)
	}
	if a.opaque != "" {
		parts = append(parts, fmt.Sprintf(`opaque="%s"`, a.opaque))
	}

	return "Digest " + strings.Join(parts, ", ")
}

func generateCnonce() (string, error) {
	b := make([]byte, 8)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func md5Hash(s string) string {
	h := md5.New()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}
