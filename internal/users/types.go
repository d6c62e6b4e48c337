// Package users manages persisted user records keyed by token identity.
package users

import "time"

// User is a persisted user record. Users are provisioned on first token
// exchange and updated on every subsequent one; they are never deleted here.
type User struct {
	ID              string    `json:"id"`
	TokenIdentifier string    `json:"tokenIdentifier"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty"`
	CompanyID       string    `json:"companyId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// UpsertRequest is the payload for CreateOrUpdate.
type UpsertRequest struct {
	Token           string `json:"token"`
	TokenIdentifier string `json:"tokenIdentifier"`
	Name            string `json:"name"`
	Email           string `json:"email,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
	CompanyID       string `json:"companyId,omitempty"`
}

// UpsertParams is what the store persists after validation.
type UpsertParams struct {
	TokenIdentifier string
	Name            string
	Email           string
	ProfileImageURL string
	CompanyID       string
}
