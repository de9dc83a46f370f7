package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("update version: %w", Clone(ErrNotFound, "version not found"))

	got := FromError(wrapped)
	assert.Equal(t, ErrNotFound.Code, got.Code)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "version not found", got.Message)
}

func TestFromErrorWrapsUnknownAsInternal(t *testing.T) {
	got := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, sql.ErrConnDone)
	assert.Nil(t, FromError(nil))
}

func TestIsMatchesByCode(t *testing.T) {
	assert.True(t, Is(Clone(ErrImmutable, "RequirementID cannot be changed"), ErrImmutable))
	assert.True(t, Is(fmt.Errorf("ctx: %w", ErrStorage), ErrStorage))
	assert.False(t, Is(ErrValidation, ErrImmutable))
	assert.False(t, Is(sql.ErrNoRows, ErrNotFound))
}
