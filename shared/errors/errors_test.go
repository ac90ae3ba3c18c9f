package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsStatusError(t *testing.T) {
	t.Run("wrapped status error", func(t *testing.T) {
		err := fmt.Errorf("signup: %w", &ErrorWithStatusCode{Message: "Activity full", StatusCode: http.StatusBadRequest})

		se, ok := AsStatusError(err)
		require.True(t, ok)
		assert.Equal(t, "Activity full", se.Message)
		assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	})

	t.Run("transport error", func(t *testing.T) {
		_, ok := AsStatusError(errors.New("connection refused"))
		assert.False(t, ok)
	})

	t.Run("nil", func(t *testing.T) {
		_, ok := AsStatusError(nil)
		assert.False(t, ok)
	})
}

func TestErrorWithStatusCodeMessage(t *testing.T) {
	assert.Equal(t, "Activity not found", (&ErrorWithStatusCode{Message: "Activity not found", StatusCode: 404}).Error())
	assert.Equal(t, "request failed with status 500", (&ErrorWithStatusCode{StatusCode: 500}).Error())
}
