package engine

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestFromGoogleAPI(t *testing.T) {
	wrapped := fmt.Errorf("call: %w", &googleapi.Error{Code: http.StatusForbidden, Message: "quota exceeded"})
	err := FromGoogleAPI(wrapped)
	assert.Equal(t, http.StatusForbidden, StatusCode(err))
	assert.Equal(t, "HTTP 403: quota exceeded", err.Error())

	err = FromGoogleAPI(&googleapi.Error{Code: http.StatusBadGateway, Body: "  upstream down \n"})
	assert.Equal(t, "HTTP 502: upstream down", err.Error())

	plain := errors.New("dial tcp: refused")
	assert.Same(t, plain, FromGoogleAPI(plain))
}
