package models

import "time"

// UserRole controls access to moderation and admin surfaces.
type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

// SocialLinks holds optional profile links.
type SocialLinks struct {
	LinkedIn  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	GitHub    string `bson:"github,omitempty" json:"github,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Website   string `bson:"website,omitempty" json:"website,omitempty"`
	Portfolio string `bson:"portfolio,omitempty" json:"portfolio,omitempty"`
}

// User represents a platform member. The TimeBank balance is mutated only by
// the accounting engine; accounts are soft-deactivated, never deleted.
type User struct {
	ID             string       `bson:"id" json:"id"`
	Username       string       `bson:"username" json:"username"`
	Email          string       `bson:"email" json:"email,omitempty"`
	PasswordHash   string       `bson:"password_hash" json:"-"`
	FullName       string       `bson:"full_name,omitempty" json:"full_name,omitempty"`
	Bio            string       `bson:"bio,omitempty" json:"bio,omitempty"`
	Location       string       `bson:"location,omitempty" json:"location,omitempty"`
	ProfilePicture string       `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"`
	SocialLinks    *SocialLinks `bson:"social_links,omitempty" json:"social_links,omitempty"`
	Interests      []string     `bson:"interests,omitempty" json:"interests,omitempty"`
	Role           UserRole     `bson:"role" json:"role"`
	IsActive       bool         `bson:"is_active" json:"is_active"`
	IsVerified     bool         `bson:"is_verified" json:"is_verified"`

	// Privacy settings.
	ProfileVisible bool `bson:"profile_visible" json:"profile_visible"`
	ShowEmail      bool `bson:"show_email" json:"show_email"`
	ShowLocation   bool `bson:"show_location" json:"show_location"`

	// Notification settings.
	EmailNotifications          bool `bson:"email_notifications" json:"email_notifications"`
	ServiceMatchesNotifications bool `bson:"service_matches_notifications" json:"service_matches_notifications"`
	MessagesNotifications       bool `bson:"messages_notifications" json:"messages_notifications"`

	TimeBankBalance float64   `bson:"timebank_balance" json:"timebank_balance"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at"`
}

// PublicView strips fields the user has chosen to hide.
func (u User) PublicView() User {
	out := u
	out.PasswordHash = ""
	if !u.ShowEmail {
		out.Email = ""
	}
	if !u.ShowLocation {
		out.Location = ""
	}
	return out
}

// UserCreate is the registration payload.
type UserCreate struct {
	Username        string       `json:"username" binding:"required,min=3,max=50"`
	Email           string       `json:"email" binding:"required,email"`
	Password        string       `json:"password" binding:"required,min=8"`
	ConfirmPassword string       `json:"confirm_password" binding:"required"`
	FullName        string       `json:"full_name"`
	Bio             string       `json:"bio"`
	Location        string       `json:"location"`
	SocialLinks     *SocialLinks `json:"social_links"`
	Interests       []string     `json:"interests"`
}

// UserUpdate carries partial profile edits; nil fields are left untouched.
type UserUpdate struct {
	Username       *string      `json:"username,omitempty"`
	FullName       *string      `json:"full_name,omitempty"`
	Bio            *string      `json:"bio,omitempty"`
	Location       *string      `json:"location,omitempty"`
	ProfilePicture *string      `json:"profile_picture,omitempty"`
	SocialLinks    *SocialLinks `json:"social_links,omitempty"`
	Interests      []string     `json:"interests,omitempty"`
}

// UserSettingsUpdate carries partial privacy/notification edits.
type UserSettingsUpdate struct {
	ProfileVisible              *bool `json:"profile_visible,omitempty"`
	ShowEmail                   *bool `json:"show_email,omitempty"`
	ShowLocation                *bool `json:"show_location,omitempty"`
	EmailNotifications          *bool `json:"email_notifications,omitempty"`
	ServiceMatchesNotifications *bool `json:"service_matches_notifications,omitempty"`
	MessagesNotifications       *bool `json:"messages_notifications,omitempty"`
}
