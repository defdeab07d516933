package account

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrymomot/accountkit/pkg/file"
	"github.com/dmitrymomot/accountkit/pkg/sanitizer"
	"github.com/dmitrymomot/accountkit/pkg/validator"
)

const (
	maxDisplayNameLen = 100
	maxBioLen         = 500
	maxURLLen         = 2048
)

// RegisterInput is the data needed to create a local account.
type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"name"`
	AvatarURL   string `json:"photo"`
	Bio         string `json:"bio"`
	Phone       string `json:"phone"`
}

func (in RegisterInput) sanitize() RegisterInput {
	in.Email = sanitizer.NormalizeEmail(in.Email)
	in.DisplayName = sanitizer.Name(in.DisplayName)
	in.Bio = sanitizer.MultiLine(in.Bio)
	in.Phone = sanitizer.Phone(in.Phone)
	in.AvatarURL = strings.TrimSpace(in.AvatarURL)
	return in
}

func (in RegisterInput) validate(policy validator.PasswordPolicy) error {
	return validator.Apply(
		validator.Required("email", in.Email),
		validator.Optional(in.Email, validator.ValidEmail("email", in.Email)),
		validator.Required("password", in.Password),
		validator.Optional(in.Password, validator.StrongPassword("password", in.Password, policy)),
		validator.Optional(in.Password, validator.NotCommonPassword("password", in.Password)),
		validator.MaxLen("name", in.DisplayName, maxDisplayNameLen),
		validator.MaxLen("bio", in.Bio, maxBioLen),
		validator.Optional(in.Phone, validator.ValidPhone("phone", in.Phone)),
		validator.Optional(in.AvatarURL, validator.ValidURL("photo", in.AvatarURL)),
		validator.MaxLen("photo", in.AvatarURL, maxURLLen),
	)
}

// ProfilePatch holds a partial profile update. Nil fields are left unchanged.
type ProfilePatch struct {
	DisplayName *string `json:"name"`
	Bio         *string `json:"bio"`
	Phone       *string `json:"phone"`
	AvatarURL   *string `json:"photo"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
}

func (p ProfilePatch) sanitize() ProfilePatch {
	p.DisplayName = apply(p.DisplayName, sanitizer.Name)
	p.Bio = apply(p.Bio, sanitizer.MultiLine)
	p.Phone = apply(p.Phone, sanitizer.Phone)
	p.AvatarURL = apply(p.AvatarURL, strings.TrimSpace)
	p.Email = apply(p.Email, sanitizer.NormalizeEmail)
	return p
}

func (p ProfilePatch) validate(policy validator.PasswordPolicy) error {
	var rules []validator.Rule
	if p.DisplayName != nil {
		rules = append(rules, validator.MaxLen("name", *p.DisplayName, maxDisplayNameLen))
	}
	if p.Bio != nil {
		rules = append(rules, validator.MaxLen("bio", *p.Bio, maxBioLen))
	}
	if p.Phone != nil {
		rules = append(rules, validator.Optional(*p.Phone, validator.ValidPhone("phone", *p.Phone)))
	}
	if p.AvatarURL != nil {
		rules = append(rules,
			validator.Optional(*p.AvatarURL, validator.ValidURL("photo", *p.AvatarURL)),
			validator.MaxLen("photo", *p.AvatarURL, maxURLLen),
		)
	}
	if p.Email != nil {
		rules = append(rules,
			validator.Required("email", *p.Email),
			validator.Optional(*p.Email, validator.ValidEmail("email", *p.Email)),
		)
	}
	if p.Password != nil {
		rules = append(rules,
			validator.StrongPassword("password", *p.Password, policy),
			validator.NotCommonPassword("password", *p.Password),
		)
	}
	return validator.Apply(rules...)
}

func apply(v *string, fn func(string) string) *string {
	if v == nil {
		return nil
	}
	out := fn(*v)
	return &out
}

// Upload is an image to store as the profile photo.
type Upload struct {
	Content     io.Reader
	Size        int64
	ContentType string
}

// AvatarInput sets the profile photo from either a URL or an upload.
// The upload wins when both are present.
type AvatarInput struct {
	URL    string
	Upload *Upload
}

func (in AvatarInput) validate(uploadsEnabled bool, maxSize int64) error {
	if in.Upload == nil {
		url := strings.TrimSpace(in.URL)
		if url == "" {
			return validator.NewError("photo", "required", "photo is required")
		}
		return validator.Apply(
			validator.ValidURL("photo", url),
			validator.MaxLen("photo", url, maxURLLen),
		)
	}

	switch {
	case !uploadsEnabled:
		return validator.NewError("photo", "unsupported", "photo uploads are not enabled")
	case in.Upload.Size <= 0:
		return validator.NewError("photo", "required", "photo is empty")
	case in.Upload.Size > maxSize:
		return validator.NewError("photo", "too_large", fmt.Sprintf("photo must be at most %d bytes", maxSize))
	}
	if _, ok := file.ImageExtension(in.Upload.ContentType); !ok {
		return validator.NewError("photo", "image_type", "photo must be a JPEG, PNG, GIF or WebP image")
	}
	return nil
}
