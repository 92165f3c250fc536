package auth

import (
	"net/http"
	"strings"
)

// Authenticator resolves a request to the owning account.
type Authenticator interface {
	Authenticate(r *http.Request) (owner string, ok bool)
}

// StaticTokens maps fixed bearer tokens to account emails, configured as
// "token:email,token2:email2". Good enough for a small invite-only
// deployment, anything bigger needs a real identity provider.
type StaticTokens struct {
	owners map[string]string
}

func NewStaticTokens(conf string) *StaticTokens {
	owners := map[string]string{}
	for _, pair := range strings.Split(conf, ",") {
		token, owner, found := strings.Cut(strings.TrimSpace(pair), ":")
		if !found || token == "" || owner == "" {
			continue
		}
		owners[token] = owner
	}

	return &StaticTokens{owners: owners}
}

func (s *StaticTokens) Authenticate(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return "", false
	}
	owner, ok := s.owners[strings.TrimSpace(token)]

	return owner, ok
}
