package identity

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/foxseedlab/kikitori/internal/identity"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

type fakeExchanger struct {
	token *oauth2.Token
	err   error
}

func (f *fakeExchanger) Exchange(context.Context, string, ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	return f.token, f.err
}

func (f *fakeExchanger) AuthCodeURL(state string, _ ...oauth2.AuthCodeOption) string {
	return "https://accounts.example.com/auth?state=" + state
}

func tokenWithIDToken(idToken string) *oauth2.Token {
	return (&oauth2.Token{AccessToken: "access"}).WithExtra(map[string]any{"id_token": idToken})
}

func TestAuthCodeURL_RequestsOpenIDScopes(t *testing.T) {
	p := NewGoogleProvider(GoogleConfig{ClientID: "cid", ClientSecret: "secret", RedirectURL: "http://localhost/auth/callback"})
	u, err := url.Parse(p.AuthCodeURL("state-1"))
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	q := u.Query()
	if q.Get("state") != "state-1" || q.Get("client_id") != "cid" {
		t.Fatalf("unexpected query: %s", u.RawQuery)
	}
	if scope := q.Get("scope"); !strings.Contains(scope, "openid") || !strings.Contains(scope, "email") || !strings.Contains(scope, "profile") {
		t.Fatalf("unexpected scope: %q", scope)
	}
}

func TestExchange_Success(t *testing.T) {
	var gotAudience string
	p := &GoogleProvider{
		clientID: "cid",
		oauth:    &fakeExchanger{token: tokenWithIDToken("raw-id-token")},
		validate: func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
			if token != "raw-id-token" {
				t.Fatalf("unexpected token: %s", token)
			}
			gotAudience = audience
			return &idtoken.Payload{Subject: "sub-1", Claims: map[string]any{"email": "a@example.com", "email_verified": true}}, nil
		},
	}
	profile, err := p.Exchange(context.Background(), "code")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gotAudience != "cid" {
		t.Fatalf("expected client id audience, got %s", gotAudience)
	}
	if profile.Email != "a@example.com" || profile.SubjectID != "sub-1" || profile.Provider != "google" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestExchange_Failures(t *testing.T) {
	okValidate := func(context.Context, string, string) (*idtoken.Payload, error) {
		return &idtoken.Payload{Subject: "s", Claims: map[string]any{"email": "a@example.com"}}, nil
	}
	cases := map[string]*GoogleProvider{
		"exchange error": {oauth: &fakeExchanger{err: errors.New("bad code")}, validate: okValidate},
		"no id token":    {oauth: &fakeExchanger{token: &oauth2.Token{AccessToken: "a"}}, validate: okValidate},
		"invalid token": {oauth: &fakeExchanger{token: tokenWithIDToken("x")}, validate: func(context.Context, string, string) (*idtoken.Payload, error) {
			return nil, errors.New("signature mismatch")
		}},
		"no email": {oauth: &fakeExchanger{token: tokenWithIDToken("x")}, validate: func(context.Context, string, string) (*idtoken.Payload, error) {
			return &idtoken.Payload{Subject: "s", Claims: map[string]any{}}, nil
		}},
	}
	for name, p := range cases {
		if _, err := p.Exchange(context.Background(), "code"); !errors.Is(err, identity.ErrInvalidLogin) {
			t.Fatalf("%s: expected ErrInvalidLogin, got %v", name, err)
		}
	}
}
