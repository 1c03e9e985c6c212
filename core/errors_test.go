package core

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	errA := NewError(KindNotFound, "not_found", "lesson", "lesson not found")
	errB := NewError(KindNotFound, "not_found", "quiz", "quiz not found")

	assert.True(t, errors.Is(errA, errA))
	assert.True(t, errors.Is(errA.WithDetail("id 42"), errA))
	assert.True(t, errors.Is(errors.Wrap(errA.WithDetail("id 42"), "marking"), errA))
	assert.False(t, errors.Is(errA, errB))
	assert.False(t, errors.Is(errors.New("lesson not found"), errA))

	detailed := errA.WithDetail("id 42")
	assert.Equal(t, "lesson not found: id 42", detailed.Error())
	assert.Equal(t, "lesson not found", errA.Error(), "WithDetail must not modify the sentinel")
}

func TestKindOf(t *testing.T) {
	type input struct {
		Name string `validate:"required"`
	}
	vErr := validator.New().Struct(input{})

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"domain", ErrForbidden, KindForbidden},
		{"wrapped domain", errors.Wrap(NewError(KindDeadlinePassed, "deadline_passed", "assignment", "late"), "deleting"), KindDeadlinePassed},
		{"validation error", NewValidationError(nil, FieldError{Field: "grade", Error: "bad"}), KindInvalidInput},
		{"validator errors", vErr, KindInvalidInput},
		{"wrapped validator errors", errors.Wrap(vErr, "validating"), KindInvalidInput},
		{"conflict sentinel is internal", ErrTxConflict, KindInternal},
		{"anything else", errors.New("db down"), KindInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KindOf(tc.err))
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "grade: bad", NewValidationError(nil, FieldError{Field: "grade", Error: "bad"}).Error())
	assert.Equal(t, "boom", NewValidationError(errors.New("boom")).Error())
	assert.Equal(t, "", NewValidationError(nil).Error())
}

func TestIsShutdown(t *testing.T) {
	assert.True(t, IsShutdown(NewShutdownError("integrity issue")))
	assert.True(t, IsShutdown(errors.Wrap(NewShutdownError("integrity issue"), "serving")))
	assert.False(t, IsShutdown(errors.New("integrity issue")))
}
