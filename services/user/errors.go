package user

import "errors"

var (
	// ErrNotFound is returned when the target user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering with an email already in use.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken is returned when registering a username already in use.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrPasswordMismatch is returned when the confirmation password differs.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrWrongPassword is returned when the current password does not verify.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrAccountDisabled is returned when the account has been deactivated.
	ErrAccountDisabled = errors.New("account is deactivated")
)
