package account

import (
	"context"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/handler"
	"github.com/dmitrymomot/accountkit/pkg/auth"
	"github.com/dmitrymomot/accountkit/pkg/binder"
	"github.com/dmitrymomot/accountkit/pkg/jwt"
	accountsvc "github.com/dmitrymomot/accountkit/svc/account"
)

// Accounts is the account service as seen by the HTTP layer.
type Accounts interface {
	Register(ctx context.Context, in accountsvc.RegisterInput) (auth.PublicAccount, error)
	SignIn(ctx context.Context, email, password string) (*accountsvc.SignInResult, error)
	Logout(ctx context.Context, token string) error
	GetProfile(ctx context.Context, id uuid.UUID) (auth.PublicAccount, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch accountsvc.ProfilePatch) (auth.PublicAccount, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, in accountsvc.AvatarInput) (auth.PublicAccount, error)
	SetVisibility(ctx context.Context, id uuid.UUID, visibility auth.Visibility) (auth.PublicAccount, error)
	SetRole(ctx context.Context, requesterID, targetID uuid.UUID, role auth.Role) (auth.PublicAccount, error)
	ListAllProfiles(ctx context.Context, requesterID uuid.UUID) ([]auth.PublicAccount, error)
	ListPublicProfiles(ctx context.Context) ([]auth.PublicAccount, error)
}

var _ Accounts = (*accountsvc.Service)(nil)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type visibilityRequest struct {
	Visibility auth.Visibility `json:"visibility"`
}

type roleRequest struct {
	Role auth.Role `json:"role"`
}

type photoRequest struct {
	URL  string             `json:"photo" form:"photo"`
	File *binder.FileUpload `json:"-" file:"photo"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type api struct {
	accounts Accounts
	extract  jwt.Extractor
}

func (a *api) signup(ctx handler.Context, req accountsvc.RegisterInput) handler.Response {
	acc, err := a.accounts.Register(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Created(acc)
}

func (a *api) login(ctx handler.Context, req loginRequest) handler.Response {
	res, err := a.accounts.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res)
}

func (a *api) logout(ctx handler.Context, _ struct{}) handler.Response {
	token, err := a.extract(ctx.Request())
	if err != nil {
		return handler.Error(auth.ErrMissingToken)
	}
	if err := a.accounts.Logout(ctx, token); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(messageResponse{Message: "logged out"})
}

func (a *api) getProfile(ctx handler.Context, _ struct{}) handler.Response {
	acc, err := a.accounts.GetProfile(ctx, currentAccount(ctx))
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(acc)
}

func (a *api) updateProfile(ctx handler.Context, req accountsvc.ProfilePatch) handler.Response {
	acc, err := a.accounts.UpdateProfile(ctx, currentAccount(ctx), req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(acc)
}

func (a *api) updatePhoto(ctx handler.Context, req photoRequest) handler.Response {
	in := accountsvc.AvatarInput{URL: req.URL}
	if req.File != nil {
		in.Upload = &accountsvc.Upload{
			Content:     req.File.Reader(),
			Size:        req.File.Size,
			ContentType: req.File.DetectedContentType(),
		}
	}

	acc, err := a.accounts.UpdateAvatar(ctx, currentAccount(ctx), in)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(acc)
}

func (a *api) updatePrivacy(ctx handler.Context, req visibilityRequest) handler.Response {
	acc, err := a.accounts.SetVisibility(ctx, currentAccount(ctx), req.Visibility)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(acc)
}

func (a *api) listAll(ctx handler.Context, _ struct{}) handler.Response {
	list, err := a.accounts.ListAllProfiles(ctx, currentAccount(ctx))
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(list)
}

func (a *api) listPublic(ctx handler.Context, _ struct{}) handler.Response {
	list, err := a.accounts.ListPublicProfiles(ctx)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(list)
}

func (a *api) setRole(ctx handler.Context, req roleRequest) handler.Response {
	target, err := uuid.Parse(chi.URLParam(ctx.Request(), "id"))
	if err != nil {
		return handler.Error(auth.ErrAccountNotFound)
	}
	acc, err := a.accounts.SetRole(ctx, currentAccount(ctx), target, req.Role)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(acc)
}

// currentAccount returns the id stored by RequireAuth.
func currentAccount(ctx context.Context) uuid.UUID {
	id, _ := auth.AccountIDFromContext(ctx)
	return id
}

// photoBinder picks the multipart binder for form uploads and JSON otherwise.
func photoBinder(maxBytes int64) binder.Func {
	multipart := binder.Multipart(maxBytes)
	json := binder.JSON(0)
	return func(r *http.Request, v any) error {
		if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && mt == "multipart/form-data" {
			return multipart(r, v)
		}
		return json(r, v)
	}
}
