package validator

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=student owner"`
	Budget   int    `json:"budget" binding:"gte=0"`
}

func TestFormatValidationErrors_UsesJSONNames(t *testing.T) {
	Setup()

	err := binding.Validator.ValidateStruct(&registerInput{
		Email:    "not-an-email",
		Password: "short",
		Role:     "landlord",
		Budget:   -1,
	})
	require.Error(t, err)

	errs := FormatValidationErrors(err)
	assert.Equal(t, "email must be a valid email", errs["email"])
	assert.Equal(t, "password must be at least 8 characters", errs["password"])
	assert.Equal(t, "role must be one of: student owner", errs["role"])
	assert.Contains(t, errs["budget"], "greater than or equal to 0")
}

func TestFormatValidationErrors_Required(t *testing.T) {
	Setup()

	err := binding.Validator.ValidateStruct(&registerInput{})
	require.Error(t, err)

	errs := FormatValidationErrors(err)
	assert.Equal(t, "email is required", errs["email"])
	assert.Equal(t, "role is required", errs["role"])
}

func TestFormatValidationError_FallsBackToErrorText(t *testing.T) {
	assert.Equal(t, "unexpected EOF", FormatValidationError(errors.New("unexpected EOF")))
	assert.Empty(t, FormatValidationErrors(errors.New("unexpected EOF")))
}
