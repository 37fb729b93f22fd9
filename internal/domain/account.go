package domain

import "time"

// Account is a registered user. A pending account carries OTP fields; a
// verified one never does.
type Account struct {
	AccountID    string     `json:"id" dynamodbav:"account_id"`
	Username     string     `json:"username" dynamodbav:"username"`
	Email        string     `json:"email" dynamodbav:"email"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	Verified     bool       `json:"verified" dynamodbav:"verified"`
	OTPCode      *string    `json:"-" dynamodbav:"otp_code,omitempty"`
	OTPCreatedAt *time.Time `json:"-" dynamodbav:"otp_created_at,omitempty"`
	OTPExpiresAt *time.Time `json:"-" dynamodbav:"otp_expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// Pending reports whether the account still waits for OTP confirmation.
func (a *Account) Pending() bool {
	return !a.Verified && a.OTPCode != nil && a.OTPExpiresAt != nil
}

// Attribute names accepted in AccountStore.UpdateFields maps. Both storage
// backends map these onto their own column/attribute names.
const (
	FieldUsername     = "username"
	FieldPasswordHash = "password_hash"
	FieldVerified     = "verified"
	FieldOTPCode      = "otp_code"
	FieldOTPCreatedAt = "otp_created_at"
	FieldOTPExpiresAt = "otp_expires_at"
)

// AccountMatch selects the record an UpdateFields call applies to.
// A nil Verified matches regardless of verification state.
type AccountMatch struct {
	Email    string
	Verified *bool
}

// Profile is the public view of a verified account.
type Profile struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

// ProfileOf strips credential and OTP material from a.
func ProfileOf(a *Account) Profile {
	return Profile{
		Username:  a.Username,
		Email:     a.Email,
		Verified:  a.Verified,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// Result is the success payload of every lifecycle operation.
type Result struct {
	Title   string      `json:"title"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type RegisterRequest struct {
	Username             string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,strongpassword"`
	PasswordConfirmation string `json:"password2" validate:"required,eqfield=Password"`
}

type ConfirmRequest struct {
	Token string `json:"token" validate:"required"`
	OTP   string `json:"otp" validate:"required,numeric,len=6"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest changes the username and, optionally, the password of
// the account owning the current session.
type UpdateProfileRequest struct {
	Username             string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Password             string `json:"password" validate:"omitempty,strongpassword"`
	PasswordConfirmation string `json:"password2" validate:"eqfield=Password"`
}

// SessionToken is the bearer credential issued by a successful login.
type SessionToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Registration is the data returned by a successful registration. Email is
// the opaque identifier the confirm step expects.
type Registration struct {
	Email        string    `json:"email"`
	OTPExpiresAt time.Time `json:"otp_expires_at"`
}
