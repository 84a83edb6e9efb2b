package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// TokenReader yields the current auth token, if any.
type TokenReader interface {
	Token(ctx context.Context) (string, bool, error)
}

// bearerTransport attaches the stored token as a bearer credential.
type bearerTransport struct {
	tokens TokenReader
	base   http.RoundTripper
}

// Compile-time check that bearerTransport implements http.RoundTripper.
var _ http.RoundTripper = (*bearerTransport)(nil)

// RoundTrip clones req with an Authorization header when a token is stored and
// forwards req untouched otherwise.
func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, ok, err := t.tokens.Token(req.Context())
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, fmt.Errorf("reading auth token: %w", err)
	}
	if !ok {
		return t.base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	authReq := req.Clone(req.Context())
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(authReq)

	return t.base.RoundTrip(authReq)
}
