package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginPayload struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

func TestStructValid(t *testing.T) {
	errs := Struct(&loginPayload{Email: "user@example.com", Password: "Passw0rd"})
	assert.False(t, errs.HasErrors())
}

func TestStructFlattensFieldFailures(t *testing.T) {
	errs := Struct(&loginPayload{Email: "not-an-email", Password: "short"})
	require.Len(t, errs, 2)
	assert.Equal(t, "email", errs[0].Field)
	assert.Contains(t, errs[0].Message, "email")
	assert.Equal(t, "password", errs[1].Field)
	assert.Contains(t, errs[1].Message, "min")
}

func TestStructRequiredFields(t *testing.T) {
	errs := Struct(&loginPayload{})
	require.Len(t, errs, 2)
	for _, e := range errs {
		assert.Contains(t, e.Message, "required")
	}
}

func TestValidatePassword(t *testing.T) {
	assert.False(t, ValidatePassword("Str0ngEnough").HasErrors())
	assert.True(t, ValidatePassword("short").HasErrors())
	assert.True(t, ValidatePassword("alllowercase1").HasErrors())
	assert.True(t, ValidatePassword("NoDigitsHere").HasErrors())
}
