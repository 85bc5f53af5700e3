package identity

import (
	"context"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Role is the closed set of actor roles in the system
type Role string

const (
	RoleCustomer   Role = "customer"
	RolePharmacist Role = "pharmacist"
	RoleAdmin      Role = "admin"
)

// IsValid checks if the role is a known Role
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RolePharmacist, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// CanReviewPrescriptions reports whether the role may approve or reject prescriptions
func (r Role) CanReviewPrescriptions() bool {
	return r == RolePharmacist
}

// CanManageInventory reports whether the role may create or block stock batches
func (r Role) CanManageInventory() bool {
	return r == RolePharmacist || r == RoleAdmin
}

// CanRefund reports whether the role may initiate refunds
func (r Role) CanRefund() bool {
	return r == RoleAdmin
}

// User represents an authenticated actor. Registration, password handling and
// profile management live outside this service; the user record here carries
// only what the order flow needs.
type User struct {
	shared.BaseEntity
	Email    string `gorm:"size:255;uniqueIndex;not null"`
	Phone    string `gorm:"size:32"`
	FullName string `gorm:"size:255"`
	Role     Role   `gorm:"size:20;not null;default:customer"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the database table name
func (User) TableName() string {
	return "users"
}

// NewUser creates a new user with the given role
func NewUser(email, fullName string, role Role) (*User, error) {
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}
	return &User{
		BaseEntity: shared.NewBaseEntity(),
		Email:      email,
		FullName:   fullName,
		Role:       role,
		IsActive:   true,
	}, nil
}

// UserRepository provides access to user records
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
}
