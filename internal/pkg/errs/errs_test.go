package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("route", "R1")

		assert.Equal(t, "route", err.ParamName)
		assert.Equal(t, "R1", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: R1", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := errs.NewObjectNotFoundErrorWithCause("driver", "D1", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: driver, ID is: D1 (cause: database connection failed)",
			err.Error())
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("NewValueIsInvalidError", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("status")

		assert.Equal(t, "status", err.ParamName)
		assert.Equal(t, "value is invalid: status", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})

	t.Run("NewValueIsInvalidErrorWithCause", func(t *testing.T) {
		err := errs.NewValueIsInvalidErrorWithCause("status", errors.New("bad\ntoken"))

		assert.Equal(t, "value is invalid: status (cause: bad token)", err.Error())
		assert.NotContains(t, err.Error(), "\n")
	})
}

func TestValueIsRequiredError(t *testing.T) {
	err := errs.NewValueIsRequiredError("route_id")

	assert.Equal(t, "value is required: route_id", err.Error())
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	withCause := errs.NewValueIsRequiredErrorWithCause("route_id", errors.New("empty path"))
	assert.Equal(t, "value is required: route_id (cause: empty path)", withCause.Error())
}

func TestObjectAlreadyExistsError(t *testing.T) {
	err := errs.NewObjectAlreadyExistsError("driver", "D1")

	assert.Equal(t, "object already exists: driver D1", err.Error())
	require.ErrorIs(t, err, errs.ErrObjectAlreadyExists)
}

func TestVersionConflictError(t *testing.T) {
	t.Run("with expected version", func(t *testing.T) {
		err := errs.NewVersionConflictError("driver", "D1", 3)

		assert.Equal(t, int64(3), err.ExpectedVersion)
		assert.Equal(t, "version conflict: driver D1, expected version 3", err.Error())
		require.ErrorIs(t, err, errs.ErrVersionConflict)
	})

	t.Run("with cause", func(t *testing.T) {
		err := errs.NewVersionConflictErrorWithCause("route", "R1", errors.New("serialization failure"))

		assert.Equal(t, "version conflict: route R1 (cause: serialization failure)", err.Error())
	})
}

func TestErrorsCanBeUnwrapped(t *testing.T) {
	wrapped := fmt.Errorf("load route: %w", errs.NewObjectNotFoundError("route", "R9"))

	require.ErrorIs(t, wrapped, errs.ErrObjectNotFound)

	var notFound *errs.ObjectNotFoundError
	require.ErrorAs(t, wrapped, &notFound)
	assert.Equal(t, "route", notFound.ParamName)
}
