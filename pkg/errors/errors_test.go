package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestNotFoundError(t *testing.T) {
	err := NewUserNotFoundError(42)

	assert.Equal(t, "user not found: id=42", err.Error())
	assert.Equal(t, int64(42), err.ID)
	assert.Equal(t, codes.NotFound, err.GRPCStatus().Code())
}

func TestNotFoundError_DefaultMessage(t *testing.T) {
	err := NewNotFoundError("user", "")
	assert.Equal(t, "user not found", err.Error())
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "direct", err: NewUserNotFoundError(1), want: true},
		{name: "wrapped", err: fmt.Errorf("failed to get user: %w", NewUserNotFoundError(1)), want: true},
		{name: "other error", err: stderrors.New("boom"), want: false},
		{name: "internal", err: NewInternalError("db down", nil), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNotFound(tt.err))
		})
	}
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewInternalError("failed to list users", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to list users: connection refused", err.Error())
	assert.Equal(t, codes.Internal, err.GRPCStatus().Code())
}

func TestValidationError(t *testing.T) {
	assert.Equal(t, "validation failed: HTTPPort - is required", NewValidationError("HTTPPort", "is required").Error())
	assert.Equal(t, "validation failed: bad body", NewValidationError("", "bad body").Error())
	assert.True(t, IsValidation(fmt.Errorf("wrap: %w", NewValidationError("", "x"))))
	assert.Equal(t, codes.InvalidArgument, NewValidationError("", "x").GRPCStatus().Code())
}

func TestToGRPCStatus(t *testing.T) {
	assert.Equal(t, codes.OK, ToGRPCStatus(nil).Code())
	assert.Equal(t, codes.NotFound, ToGRPCStatus(fmt.Errorf("wrap: %w", NewUserNotFoundError(3))).Code())
	assert.Equal(t, codes.Internal, ToGRPCStatus(stderrors.New("plain")).Code())
}
