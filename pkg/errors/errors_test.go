package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	err := New(http.StatusConflict, "loop already running")
	assert.Equal(t, http.StatusConflict, err.Code)
	assert.Contains(t, err.Error(), "loop already running")
}

func TestWithDetails(t *testing.T) {
	err := WithDetails(ErrNotFound, "parameter not found: coherence_gain")
	assert.Equal(t, http.StatusNotFound, err.Code)
	assert.Equal(t, ErrNotFound.Message, err.Message)
	assert.Equal(t, "parameter not found: coherence_gain", err.Details)
	// The shared sentinel must stay untouched
	assert.Empty(t, ErrNotFound.Details)
}

func TestGetStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, GetStatusCode(ErrBadRequest))
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(fmt.Errorf("plain error")))
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(ErrInternalServer))
	assert.False(t, IsAppError(fmt.Errorf("plain error")))
}
