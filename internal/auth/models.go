package auth

import (
	"time"

	dErrors "shopfloor/pkg/domain-errors"
)

// User is an operator account. Emails are stored lowercased and are unique.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

var allowedRoles = []string{
	"product_bom_manager",
	"inventory_manager",
	"qc_manager",
	"production_scheduler",
	"admin",
}

// ValidateRole enforces the fixed role set.
func ValidateRole(role string) error {
	for _, r := range allowedRoles {
		if r == role {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeBadRequest, "invalid role")
}
