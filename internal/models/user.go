package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Preferences are the user-facing toggles shown on the settings page.
type Preferences struct {
	Notifications bool `bson:"notifications" json:"notifications"`
	DataSharing   bool `bson:"data_sharing" json:"dataSharing"`
	DarkMode      bool `bson:"dark_mode" json:"darkMode"`
}

// User is keyed by the identity provider's UID; the Mongo _id is internal.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`

	FirebaseUID string `bson:"firebase_uid" json:"firebaseUid"`
	DisplayName string `bson:"display_name" json:"displayName"`
	Email       string `bson:"email" json:"email"`

	Preferences       Preferences     `bson:"preferences" json:"preferences"`
	AnonymousMode     bool            `bson:"anonymous_mode" json:"anonymousMode"`
	ConnectedAccounts map[string]bool `bson:"connected_accounts" json:"connectedAccounts"`

	// Encrypted OAuth access tokens per fitness provider. Never serialized to clients.
	FitnessTokens map[string]string `bson:"fitness_tokens,omitempty" json:"-"`
}

// PreferencesPatch carries only the fields a client wants to change.
type PreferencesPatch struct {
	Notifications *bool   `json:"notifications,omitempty"`
	DataSharing   *bool   `json:"dataSharing,omitempty"`
	DarkMode      *bool   `json:"darkMode,omitempty"`
	AnonymousMode *bool   `json:"anonymousMode,omitempty"`
	DisplayName   *string `json:"displayName,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p PreferencesPatch) Empty() bool {
	return p.Notifications == nil && p.DataSharing == nil && p.DarkMode == nil &&
		p.AnonymousMode == nil && p.DisplayName == nil
}

// Apply mutates u with the non-nil fields of p.
func (p PreferencesPatch) Apply(u *User) {
	if p.Notifications != nil {
		u.Preferences.Notifications = *p.Notifications
	}
	if p.DataSharing != nil {
		u.Preferences.DataSharing = *p.DataSharing
	}
	if p.DarkMode != nil {
		u.Preferences.DarkMode = *p.DarkMode
	}
	if p.AnonymousMode != nil {
		u.AnonymousMode = *p.AnonymousMode
	}
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
}
