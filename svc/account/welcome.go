package account

import (
	"context"

	"github.com/dmitrymomot/accountkit/pkg/auth"
	"github.com/dmitrymomot/accountkit/pkg/email"
)

// WelcomeEmailHook returns an after-register hook that mails a welcome
// message through sender.
func WelcomeEmailHook(sender email.Sender, product string) func(context.Context, auth.PublicAccount) error {
	return func(ctx context.Context, account auth.PublicAccount) error {
		msg, err := email.Welcome(email.WelcomeData{
			Product: product,
			Name:    account.DisplayName,
			Email:   account.Email,
		})
		if err != nil {
			return err
		}
		return sender.Send(ctx, msg)
	}
}
