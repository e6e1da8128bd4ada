package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := New(CodeValidation, "name cannot be empty")
	assert.True(t, HasCode(err, CodeValidation))
	assert.False(t, HasCode(err, CodeNotFound))

	t.Run("wrapped errors keep their code", func(t *testing.T) {
		wrapped := fmt.Errorf("issuing certificate: %w", err)
		assert.True(t, HasCode(wrapped, CodeValidation))
	})

	t.Run("uncoded errors match nothing", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("plain"), CodeInternal))
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "record not found")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")), "uncoded errors default to internal")
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeInternal, http.StatusInternalServerError},
		{Code("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			require.Equal(t, tt.want, ToHTTPStatus(tt.code))
		})
	}
}
