package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newCronContext(t *testing.T, auth string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/cron/rate-limits/cleanup", nil)
	if auth != "" {
		c.Request.Header.Set("Authorization", auth)
	}
	return c, rec
}

func TestCronAuthorizeAcceptsSecret(t *testing.T) {
	handler := NewCronHandler(nil, "cron-secret")
	c, rec := newCronContext(t, "Bearer cron-secret")

	handler.Authorize(c)

	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCronAuthorizeRejectsWrongSecret(t *testing.T) {
	handler := NewCronHandler(nil, "cron-secret")
	c, rec := newCronContext(t, "Bearer not-the-secret")

	handler.Authorize(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCronAuthorizeRejectsMissingHeader(t *testing.T) {
	handler := NewCronHandler(nil, "cron-secret")
	c, rec := newCronContext(t, "")

	handler.Authorize(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCronAuthorizeDisabledWithoutSecret(t *testing.T) {
	handler := NewCronHandler(nil, "")
	c, rec := newCronContext(t, "Bearer anything")

	handler.Authorize(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
