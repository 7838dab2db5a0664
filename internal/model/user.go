package model

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusPending   = "pending"
)

// Account is the persisted identity record. The password hash and the
// lockout bookkeeping never leave the repository/service layer; handlers
// only ever see the Profile projection.
type Account struct {
	ID                  string     `bson:"_id" json:"id"`
	Email               string     `bson:"email" json:"email"`
	PasswordHash        string     `bson:"password_hash" json:"-"`
	FirstName           string     `bson:"first_name" json:"first_name"`
	LastName            string     `bson:"last_name" json:"last_name"`
	Phone               string     `bson:"phone,omitempty" json:"phone,omitempty"`
	DateOfBirth         *time.Time `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Gender              string     `bson:"gender,omitempty" json:"gender,omitempty"`
	Avatar              string     `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Addresses           []Address  `bson:"addresses,omitempty" json:"addresses,omitempty"`
	Role                string     `bson:"role" json:"role"`
	Status              string     `bson:"status" json:"status"`
	EmailVerified       bool       `bson:"email_verified" json:"email_verified"`
	FailedLoginAttempts int        `bson:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `bson:"locked_until,omitempty" json:"-"`
	LastLogin           *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt           time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `bson:"updated_at" json:"updated_at"`
}

func (a Account) FullName() string {
	if a.FirstName == "" {
		return a.LastName
	}
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// Profile is the public projection of an Account. It is the only account
// shape handlers serialize.
type Profile struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	FullName      string     `json:"full_name"`
	Phone         string     `json:"phone,omitempty"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Gender        string     `json:"gender,omitempty"`
	Avatar        string     `json:"avatar,omitempty"`
	Addresses     []Address  `json:"addresses,omitempty"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	EmailVerified bool       `json:"email_verified"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (a Account) Profile() Profile {
	return Profile{
		ID:            a.ID,
		Email:         a.Email,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		FullName:      a.FullName(),
		Phone:         a.Phone,
		DateOfBirth:   a.DateOfBirth,
		Gender:        a.Gender,
		Avatar:        a.Avatar,
		Addresses:     a.Addresses,
		Role:          a.Role,
		Status:        a.Status,
		EmailVerified: a.EmailVerified,
		LastLogin:     a.LastLogin,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// Address is an embedded value object keyed by a synthetic id. Updates and
// removals locate elements by id, never by position.
type Address struct {
	ID        string `bson:"id" json:"id"`
	Type      string `bson:"type" json:"type"`
	Street    string `bson:"street" json:"street"`
	City      string `bson:"city" json:"city"`
	State     string `bson:"state" json:"state"`
	ZipCode   string `bson:"zip_code" json:"zip_code"`
	Country   string `bson:"country" json:"country"`
	IsDefault bool   `bson:"is_default" json:"is_default"`
}

// AuthClaims is the identity snapshot carried by a verified token. Role is
// captured at issuance and does not follow later role changes.
type AuthClaims struct {
	AccountID string `json:"sub"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenID   string `json:"jti"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string  `json:"token"`
	TokenType string  `json:"token_type"`
	ExpiresIn int64   `json:"expires_in"`
	User      Profile `json:"user"`
}

// AccountQuery filters the admin user listing.
type AccountQuery struct {
	Role   string
	Status string
	Search string
	Page   int
	Limit  int
}
