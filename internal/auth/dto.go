package auth

import (
	"strings"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/core/common/validation"
)

const minPasswordLength = 8

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpDTO struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken"`
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required()
	v.Field("password", d.Password).Required()
	return v.Err()
}

func (d *SignUpDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
}

func (d SignUpDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("email", d.Email).Required().MaxLength(255).Custom(func(value interface{}) *errors.AppError {
		s, _ := value.(string)
		if at := strings.Index(s, "@"); at < 1 || at == len(s)-1 {
			return errors.NewValidationFieldError("email", "email must be a valid address", errors.ErrCodeValidationFailed)
		}
		return nil
	})
	v.Field("password", d.Password).Required().MinLength(minPasswordLength)
	if err := v.Err(); err != nil {
		return err
	}
	if d.Password != d.ConfirmPassword {
		return errors.NewValidationFieldError("confirmPassword", "passwords do not match", errors.ErrCodeInvalidPassword)
	}
	return nil
}

func (d RefreshTokenDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("refreshToken", d.RefreshToken).Required()
	return v.Err()
}
