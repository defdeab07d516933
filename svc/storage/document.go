package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/pkg/auth"
)

// accountDocument is the BSON shape of an account.
type accountDocument struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash,omitempty"`
	Provider     string    `bson:"provider"`
	Issuer       string    `bson:"issuer,omitempty"`
	ExternalID   string    `bson:"external_id,omitempty"`
	DisplayName  string    `bson:"display_name"`
	AvatarURL    string    `bson:"avatar_url,omitempty"`
	Bio          string    `bson:"bio,omitempty"`
	Phone        string    `bson:"phone,omitempty"`
	Visibility   string    `bson:"visibility"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toDocument(a *auth.Account) accountDocument {
	return accountDocument{
		ID:           a.ID.String(),
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Provider:     string(a.Identity.Provider),
		Issuer:       a.Identity.Issuer,
		ExternalID:   a.Identity.ExternalID,
		DisplayName:  a.Profile.DisplayName,
		AvatarURL:    a.Profile.AvatarURL,
		Bio:          a.Profile.Bio,
		Phone:        a.Profile.Phone,
		Visibility:   string(a.Profile.Visibility),
		Role:         string(a.Role),
		CreatedAt:    a.CreatedAt.UTC(),
		UpdatedAt:    a.UpdatedAt.UTC(),
	}
}

func (d accountDocument) toAccount() (*auth.Account, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("malformed account id %q: %w", d.ID, err)
	}
	return &auth.Account{
		ID:           id,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Identity: auth.Identity{
			Provider:   auth.Provider(d.Provider),
			Issuer:     d.Issuer,
			ExternalID: d.ExternalID,
		},
		Profile: auth.Profile{
			DisplayName: d.DisplayName,
			AvatarURL:   d.AvatarURL,
			Bio:         d.Bio,
			Phone:       d.Phone,
			Visibility:  auth.Visibility(d.Visibility),
		},
		Role:      auth.Role(d.Role),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}
