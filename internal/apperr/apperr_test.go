package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOfDomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{Validation("nombre is required"), http.StatusBadRequest},
		{BusinessRule("customer has sales"), http.StatusBadRequest},
		{BusinessRulef("ingredients %v do not exist", []int64{4, 9}), http.StatusBadRequest},
		{NotFound("sale not found"), http.StatusNotFound},
	}
	for _, tc := range cases {
		code, known := Status(tc.err)
		assert.True(t, known, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestStatusSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("create sale: %w", NotFound("customer not found"))

	code, known := Status(err)
	require.True(t, known)
	assert.Equal(t, http.StatusNotFound, code)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUnknownErrorIsInternal(t *testing.T) {
	code, known := Status(errors.New("connection reset"))
	assert.False(t, known)
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestMessagePrefersUserMessage(t *testing.T) {
	assert.Equal(t, "customer not found", Message(NotFound("customer not found")))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}

func TestStackIsRecordedAtCallSite(t *testing.T) {
	assert.NotEmpty(t, Stack(BusinessRule("sale is already voided")))
}
