package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDoappError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *DoappError
		want string
	}{
		{
			name: "without_wrapped",
			err:  New(ErrNotFound, "item not found"),
			want: "[NOT_FOUND] item not found",
		},
		{
			name: "with_wrapped",
			err:  Wrap(fmt.Errorf("disk full"), ErrFileWrite, "shim write failed"),
			want: "[FILE_WRITE] shim write failed: disk full",
		},
		{
			name: "formatted",
			err:  Newf(ErrAlreadyExists, "command %q exists", "hello"),
			want: `[ALREADY_EXISTS] command "hello" exists`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestDoappError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner")
	err := Wrap(inner, ErrInternal, "outer")
	assert.Equal(t, inner, errors.Unwrap(err))
}

func TestWrap_NilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrInternal, "ignored"))
	assert.Nil(t, Wrapf(nil, ErrInternal, "ignored %d", 1))
}

func TestIsErrorCode(t *testing.T) {
	err := New(ErrSyntaxCheckFailed, "bad script")
	assert.True(t, IsErrorCode(err, ErrSyntaxCheckFailed))
	assert.False(t, IsErrorCode(err, ErrNotFound))

	// Wrapped through fmt.Errorf still matches
	wrapped := fmt.Errorf("context: %w", err)
	assert.True(t, IsErrorCode(wrapped, ErrSyntaxCheckFailed))

	// Plain errors report ErrUnknown
	assert.False(t, IsErrorCode(errors.New("plain"), ErrNotFound))
	assert.Equal(t, ErrUnknown, GetErrorCode(errors.New("plain")))
}

func TestErrorsIs_CodeEquality(t *testing.T) {
	a := New(ErrAlreadyExists, "first")
	b := New(ErrAlreadyExists, "second")
	assert.True(t, errors.Is(a, b))

	c := New(ErrNotFound, "other")
	assert.False(t, errors.Is(a, c))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrNoEntryResolved, "no entry").WithDetail("app", "mytool")
	assert.Equal(t, "mytool", err.Details["app"])
}

func TestCode_Classification(t *testing.T) {
	// Permission failures win over any other classification
	permErr := &fs.PathError{Op: "open", Path: "/usr/local/bin/x", Err: fs.ErrPermission}
	assert.Equal(t, ErrPermission, Code(permErr, ErrFileWrite))
	assert.Equal(t, ErrPermission, Code(Wrap(permErr, ErrFileAccess, "cannot read"), ErrUnknown))

	// A DoappError keeps its own code
	assert.Equal(t, ErrNoEntryResolved, Code(New(ErrNoEntryResolved, "nope"), ErrUnknown))

	// Anything else falls back
	assert.Equal(t, ErrFileWrite, Code(errors.New("disk full"), ErrFileWrite))
}
