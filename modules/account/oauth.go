package account

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/accountkit/handler"
	"github.com/dmitrymomot/accountkit/pkg/auth"
)

// Federation runs the OAuth handshake for one identity provider.
type Federation interface {
	Provider() string
	Redirect(ctx context.Context) (string, error)
	Callback(ctx context.Context, code, state string) (*auth.HandshakeResult, error)
}

var _ Federation = (*auth.FederationBridge)(nil)

type callbackResponse struct {
	Account auth.PublicAccount `json:"account"`
	auth.IssuedToken
	Created bool `json:"created"`
}

type oauthAPI struct {
	providers map[string]Federation
}

func newOAuthAPI(bridges []Federation) *oauthAPI {
	providers := make(map[string]Federation, len(bridges))
	for _, b := range bridges {
		providers[b.Provider()] = b
	}
	return &oauthAPI{providers: providers}
}

func (o *oauthAPI) bridge(ctx handler.Context) (Federation, error) {
	b, ok := o.providers[chi.URLParam(ctx.Request(), "provider")]
	if !ok {
		return nil, auth.ErrUnknownProvider
	}
	return b, nil
}

func (o *oauthAPI) redirect(ctx handler.Context, _ struct{}) handler.Response {
	b, err := o.bridge(ctx)
	if err != nil {
		return handler.Error(err)
	}
	url, err := b.Redirect(ctx)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Redirect(url)
}

func (o *oauthAPI) callback(ctx handler.Context, _ struct{}) handler.Response {
	b, err := o.bridge(ctx)
	if err != nil {
		return handler.Error(err)
	}

	q := ctx.Request().URL.Query()
	if q.Get("error") != "" {
		// the user declined consent or the provider refused the request
		return handler.Error(auth.ErrUpstreamFailure)
	}

	res, err := b.Callback(ctx, q.Get("code"), q.Get("state"))
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(callbackResponse{
		Account:     res.Account.Public(),
		IssuedToken: res.Token,
		Created:     res.Created,
	})
}
