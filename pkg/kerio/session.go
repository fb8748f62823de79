package kerio

import (
	"net/http"
	"strings"
)

// Session carries the opaque credentials issued by Session.login.
// None of the fields are parsed; Token and Cookie are forwarded verbatim.
type Session struct {
	BaseURL string `json:"baseUrl"`
	Token   string `json:"token"`
	Cookie  string `json:"cookie"`
}

// NormalizeBaseURL strips trailing slashes from a server origin.
func NormalizeBaseURL(serverURL string) string {
	return strings.TrimRight(serverURL, "/")
}

// Endpoint returns the JSON-RPC endpoint URL for the session's server.
func (s Session) Endpoint() string {
	return NormalizeBaseURL(s.BaseURL) + APIPath
}

// UploadEndpoint returns the attachment upload URL for the session's server.
func (s Session) UploadEndpoint() string {
	return NormalizeBaseURL(s.BaseURL) + UploadPath
}

// WithoutToken returns a copy of the session that sends no X-Token header.
func (s Session) WithoutToken() Session {
	s.Token = ""

	return s
}

// FirstCookie extracts the first name=value pair of the first Set-Cookie header.
func FirstCookie(header http.Header) string {
	values := header.Values("Set-Cookie")
	if len(values) == 0 {
		return ""
	}

	pair, _, _ := strings.Cut(values[0], ";")

	return pair
}
