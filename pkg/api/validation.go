package api

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password accepted on registration and
// password change.
const MinPasswordLength = 6

// MaxPasswordLength is the longest password, in bytes, that bcrypt accepts.
const MaxPasswordLength = 72

// maxNameLength bounds the display name.
const maxNameLength = 100

// maxBioLength bounds the free-form biography.
const maxBioLength = 250

// ValidateRegister checks a RegisterRequest. It normalizes the email to lower
// case and trims surrounding whitespace from name and email in place.
func ValidateRegister(req *RegisterRequest) *APIError {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)

	if req.Name == "" {
		return NewInvalidRequestError("name", "name is required")
	}
	if utf8.RuneCountInString(req.Name) > maxNameLength {
		return NewInvalidRequestError("name", fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}
	if apiErr := validateEmail(req.Email); apiErr != nil {
		return apiErr
	}
	return validatePassword("password", req.Password)
}

// ValidateLogin checks a LoginRequest and normalizes its email in place.
func ValidateLogin(req *LoginRequest) *APIError {
	req.Email = normalizeEmail(req.Email)

	if req.Email == "" || req.Password == "" {
		return NewInvalidRequestError("", "please add email and password")
	}
	return nil
}

// ValidateUpdateUser checks the optional fields of an UpdateUserRequest.
func ValidateUpdateUser(req *UpdateUserRequest) *APIError {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return NewInvalidRequestError("name", "name must not be empty")
		}
		if utf8.RuneCountInString(name) > maxNameLength {
			return NewInvalidRequestError("name", fmt.Sprintf("name must be at most %d characters", maxNameLength))
		}
		req.Name = &name
	}
	if req.Bio != nil && utf8.RuneCountInString(*req.Bio) > maxBioLength {
		return NewInvalidRequestError("bio", fmt.Sprintf("bio must be at most %d characters", maxBioLength))
	}
	return nil
}

// ValidateChangePassword checks a ChangePasswordRequest.
func ValidateChangePassword(req *ChangePasswordRequest) *APIError {
	if req.OldPassword == "" || req.Password == "" {
		return NewInvalidRequestError("", "please add old and new password")
	}
	return validatePassword("password", req.Password)
}

func validateEmail(email string) *APIError {
	if email == "" {
		return NewInvalidRequestError("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return NewInvalidRequestError("email", "please enter a valid email")
	}
	return nil
}

func validatePassword(param, password string) *APIError {
	if len(password) < MinPasswordLength {
		return NewInvalidRequestError(param,
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		return NewInvalidRequestError(param,
			fmt.Sprintf("password must be at most %d bytes", MaxPasswordLength))
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
