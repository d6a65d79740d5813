// Package user holds the user identity records and the document-store
// repository they live in.
package user

import "time"

// PartitionKey is the fixed partition value for all user documents.
const PartitionKey = "user"

// User is the persisted identity record. One document per end-user, keyed by
// the generated id within the "user" partition. GoogleUserID is Google's
// stable subject identifier and is unique across users.
type User struct {
	ID                string           `json:"id"`
	GoogleUserID      string           `json:"googleUserId"`
	Email             string           `json:"email"`
	DisplayName       string           `json:"displayName"`
	ProfilePictureURL string           `json:"profilePictureUrl"`
	CreatedAt         time.Time        `json:"createdAt"`
	LastLoginAt       time.Time        `json:"lastLoginAt"`
	PartitionKey      string           `json:"partitionKey"`
	ExtensionTokens   []ExtensionToken `json:"extensionTokens"`
}

// ExtensionToken records a token issued to a browser extension. Only the hash
// is kept; the raw token never touches storage. The list is append-only and
// currently write-only audit data.
type ExtensionToken struct {
	ExtensionID string    `json:"extensionId"`
	TokenHash   string    `json:"tokenHash"`
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Profile is the wire shape returned to clients.
type Profile struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	DisplayName       string    `json:"displayName"`
	ProfilePictureURL string    `json:"profilePictureUrl"`
	CreatedAt         time.Time `json:"createdAt"`
	LastLoginAt       time.Time `json:"lastLoginAt"`
}

// ProfileOf projects a user record onto its public profile.
func ProfileOf(u *User) *Profile {
	return &Profile{
		ID:                u.ID,
		Email:             u.Email,
		DisplayName:       u.DisplayName,
		ProfilePictureURL: u.ProfilePictureURL,
		CreatedAt:         u.CreatedAt,
		LastLoginAt:       u.LastLoginAt,
	}
}
