package errors_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	pkgerrors "github.com/agentstation/bodsmap/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{Resource: "policy", ID: "strict"}
		assert.Equal(t, `policy "strict" not found`, err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		wrapped := fmt.Errorf("loading: %w", pkgerrors.NewNotFoundError("policy", "x"))
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("input_file", "", "is required")
		assert.Equal(t, "validation failed for input_file: is required", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "bad profile"}
		assert.Equal(t, "validation failed: bad profile", err.Error())
	})
}

func TestConfigError(t *testing.T) {
	base := errors.New("yaml: line 3")
	err := pkgerrors.NewConfigError("profile", "cannot decode", base)
	assert.Equal(t, "configuration error in profile: cannot decode", err.Error())
	assert.ErrorIs(t, err, base)

	assert.Nil(t, pkgerrors.WrapConfig("profile", "x", nil))
}

func TestMergeError(t *testing.T) {
	t.Run("identity mismatch", func(t *testing.T) {
		err := pkgerrors.NewMergeError("E1", "E2", nil)
		assert.Contains(t, err.Error(), "identity keys differ")
		assert.True(t, pkgerrors.IsConflict(err))
	})

	t.Run("wrapped cause", func(t *testing.T) {
		cause := errors.New("disk full")
		err := pkgerrors.NewMergeError("E1", "E1", cause)
		assert.False(t, pkgerrors.IsConflict(err))
		assert.ErrorIs(t, err, cause)
	})
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name string
		err  *pkgerrors.ParseError
		want string
	}{
		{
			name: "file and line",
			err:  &pkgerrors.ParseError{Format: "json", File: "in.json", Line: 7, Message: "unexpected EOF"},
			want: "json parse error in in.json at line 7: unexpected EOF",
		},
		{
			name: "file only",
			err:  &pkgerrors.ParseError{Format: "yaml", File: "profile.yaml", Message: "bad indent"},
			want: "yaml parse error in profile.yaml: bad indent",
		},
		{
			name: "line only",
			err:  &pkgerrors.ParseError{Format: "json", Line: 2, Message: "x"},
			want: "json parse error at line 2: x",
		},
		{
			name: "bare",
			err:  &pkgerrors.ParseError{Format: "date", Message: "x"},
			want: "date parse error: x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.True(t, pkgerrors.IsValidationError(tt.err))
		})
	}
}

func TestIOError(t *testing.T) {
	err := pkgerrors.WrapIO("open", "/missing.json", os.ErrNotExist)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/missing.json")
	assert.True(t, pkgerrors.IsIOError(err))
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Nil(t, pkgerrors.WrapIO("open", "x", nil))
	assert.False(t, pkgerrors.IsIOError(errors.New("plain")))
}

func TestWrapParse(t *testing.T) {
	assert.Nil(t, pkgerrors.WrapParse("json", "f", 1, nil))

	err := pkgerrors.WrapParse("json", "f", 3, errors.New("invalid character"))
	var parseErr *pkgerrors.ParseError
	require.True(t, pkgerrors.As(err, &parseErr))
	assert.Equal(t, 3, parseErr.Line)
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		pkgerrors.ErrNotFound,
		pkgerrors.ErrInvalidInput,
		pkgerrors.ErrConflict,
		pkgerrors.ErrCanceled,
		pkgerrors.ErrClosed,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
	assert.True(t, pkgerrors.IsCanceled(fmt.Errorf("run: %w", pkgerrors.ErrCanceled)))
}
