package auth

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikebuild/apperr"
	"bikebuild/models"
)

func ptr(s string) *string { return &s }

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/builds", nil)
	assert.Nil(t, FromRequest(r, "X-User-ID"))

	r.Header.Set("X-User-ID", "   ")
	assert.Nil(t, FromRequest(r, "X-User-ID"))

	r.Header.Set("X-User-ID", " alice ")
	got := FromRequest(r, "X-User-ID")
	require.NotNil(t, got)
	assert.Equal(t, "alice", *got)
}

func TestCanMutateBuild(t *testing.T) {
	unowned := &models.Build{ID: "b1"}
	owned := &models.Build{ID: "b2", UserID: ptr("alice")}

	tests := []struct {
		name   string
		user   *string
		build  *models.Build
		expect bool
	}{
		{"anonymous on unowned", nil, unowned, true},
		{"user on unowned", ptr("bob"), unowned, true},
		{"owner", ptr("alice"), owned, true},
		{"other user", ptr("bob"), owned, false},
		{"anonymous on owned", nil, owned, false},
		{"nil build", ptr("alice"), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, CanMutateBuild(tt.user, tt.build))
		})
	}
}

func TestAuthorize(t *testing.T) {
	err := Authorize(ptr("bob"), &models.Build{UserID: ptr("alice")})
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
	assert.NoError(t, Authorize(nil, &models.Build{}))
}
