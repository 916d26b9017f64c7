package models

import (
	"errors"
	"time"
)

var ErrIncompleteUser = errors.New("user record is incomplete")

// User is created on successful OTP verification and replaced wholesale on
// re-login.
type User struct {
	ID          string    `json:"id"`
	Phone       string    `json:"phone"`
	CountryCode string    `json:"countryCode"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate reports whether u is structurally usable as a session owner.
func (u *User) Validate() error {
	if u.ID == "" || u.Phone == "" || u.CountryCode == "" || u.CreatedAt.IsZero() {
		return ErrIncompleteUser
	}
	return nil
}

// AuthSession is the process-wide authentication snapshot.
// IsAuthenticated is true exactly when User is non-nil.
type AuthSession struct {
	User            *User
	IsLoading       bool
	IsAuthenticated bool
}

// OTPChallenge is the single live one-time code and the phone it was sent to.
type OTPChallenge struct {
	Code        string
	TargetPhone string
}
