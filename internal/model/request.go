package model

import "time"

type RegisterRequest struct {
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	Phone       string     `json:"phone,omitempty"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Gender      string     `json:"gender,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type UpdateProfileRequest struct {
	FirstName   *string    `json:"firstName,omitempty"`
	LastName    *string    `json:"lastName,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Gender      *string    `json:"gender,omitempty"`
	Avatar      *string    `json:"avatar,omitempty"`
}

type AddressRequest struct {
	Type      string `json:"type,omitempty"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country,omitempty"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

type ProductRequest struct {
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	ShortDescription string         `json:"shortDescription,omitempty"`
	Price            float64        `json:"price"`
	ComparePrice     float64        `json:"comparePrice,omitempty"`
	Cost             float64        `json:"cost,omitempty"`
	Category         string         `json:"category"`
	Subcategory      string         `json:"subcategory,omitempty"`
	Tags             []string       `json:"tags,omitempty"`
	Brand            string         `json:"brand,omitempty"`
	Images           []ProductImage `json:"images,omitempty"`
	Inventory        Inventory      `json:"inventory"`
	Status           string         `json:"status,omitempty"`
	Visibility       string         `json:"visibility,omitempty"`
	Featured         bool           `json:"featured,omitempty"`
}

// AdminUpdateUserRequest covers the admin-only mutations: role and status.
type AdminUpdateUserRequest struct {
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
}
