package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateError(t *testing.T) {
	err := NewValidateFieldsError(ErrRequestValidate, map[string]interface{}{"name": "required field missing"})
	assert.Equal(t, "request validation", err.Error())
	assert.True(t, errors.Is(err, ErrRequestValidate))

	var verr *ValidateError
	assert.True(t, errors.As(error(err), &verr))
	assert.Equal(t, "required field missing", verr.Fields["name"])
}

func TestError(t *testing.T) {
	err := NewError(ErrNotFound)
	assert.Equal(t, "not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
}
