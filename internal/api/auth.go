package api

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// Authenticate exchanges a username and password for an access token. The
// token arrives both in the body and in the X-Auth-Token header.
func (s AuthService) Authenticate(
	ctx context.Context,
	domain, username, password string,
	onSuccess func(AccessToken, *string),
	onFailure func(*StructuredError),
) {
	call(ctx, s.Client, func() (Request, error) {
		if username == "" || password == "" {
			return Request{Verb: VerbGet}, errors.New("username and password are required")
		}
		u, err := s.rootURL(domain, "/users/access_token")
		return Request{
			Verb: VerbGet,
			URL:  u,
			Headers: map[string]string{
				"username": username,
				"password": password,
			},
		}, err
	}, DecodeObject[AccessToken], onSuccess, onFailure)
}

// PublicKey fetches the HAT's token signing key as PEM text.
func (s AuthService) PublicKey(
	ctx context.Context,
	domain string,
	onSuccess func(string, *string),
	onFailure func(*StructuredError),
) {
	call(ctx, s.Client, func() (Request, error) {
		u, err := s.rootURL(domain, "/publickey")
		return Request{Verb: VerbGet, URL: u, Expect: ExpectString}, err
	}, DecodeString, onSuccess, onFailure)
}

// QueryParam returns the named query parameter of rawURL, or "" when the URL
// does not parse or lacks it. Login redirects carry the token this way.
func QueryParam(rawURL, name string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return u.Query().Get(name)
}
