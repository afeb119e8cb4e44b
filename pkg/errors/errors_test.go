package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeClassification(t *testing.T) {
	assert.True(t, IsValidation(NewValidation("bad input", nil)))
	assert.True(t, IsConflict(NewConflict("slot taken", nil)))
	assert.True(t, IsNotFound(NewNotFound("appointment", nil)))
	assert.True(t, IsDependency(NewDependency("appointment store", nil)))

	assert.False(t, IsConflict(NewValidation("bad input", nil)))
	assert.Zero(t, Code(fmt.Errorf("plain error")))
}

func TestCodeSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("transition failed: %w", NewNotFound("appointment", nil))
	assert.True(t, IsNotFound(err))
}

func TestErrorMessage(t *testing.T) {
	err := NewDependency("email sender", fmt.Errorf("dial tcp: refused"))
	assert.Contains(t, err.Error(), "email sender unavailable")
	assert.Contains(t, err.Error(), "refused")
}
