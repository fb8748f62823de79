package operations

import (
	"context"

	"github.com/dukex/operion-kerio/pkg/kerio"
)

func authenticationDescriptors() []Descriptor {
	return []Descriptor{
		{
			Resource:    "authentication",
			Operation:   "login",
			Method:      kerio.LoginMethod,
			ID:          1,
			Description: "Log in and return the session token and cookie",
			run:         (*Translator).login,
		},
		{
			Resource:    "authentication",
			Operation:   "logout",
			Method:      kerio.LogoutMethod,
			ID:          2,
			Description: "Invalidate a session",
			run:         (*Translator).logout,
		},
	}
}

// LoginParams returns the Session.login parameters for fields, falling back
// to the configured credentials.
func (t *Translator) LoginParams(f Fields) kerio.LoginParams {
	return kerio.LoginParams{
		Application: t.application,
		UserName:    f.StringOr("username", t.username),
		Password:    f.StringOr("password", t.password),
	}
}

func (t *Translator) login(ctx context.Context, session kerio.Session, f Fields) (any, error) {
	reply, err := t.caller.Call(ctx, kerio.Session{BaseURL: session.BaseURL}, kerio.LoginRequest(t.LoginParams(f)))
	if err != nil {
		return nil, err
	}

	established, err := kerio.SessionFromReply(session.BaseURL, reply)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"token":  established.Token,
		"cookie": established.Cookie,
	}, nil
}

func (t *Translator) logout(ctx context.Context, session kerio.Session, _ Fields) (any, error) {
	reply, err := t.caller.Call(ctx, session.WithoutToken(), kerio.LogoutRequest(session.Token))
	if err != nil {
		return nil, err
	}

	return reply.Result, nil
}
