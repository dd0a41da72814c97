// Package auth resolves the caller's identity and decides build ownership.
//
// Identity is an opaque user id taken from a trusted request header set by
// the fronting proxy. A missing or blank header means an anonymous caller.
package auth

import (
	"net/http"
	"strings"

	"bikebuild/apperr"
	"bikebuild/models"
)

// FromRequest returns the user id carried in header, or nil when absent.
func FromRequest(r *http.Request, header string) *string {
	v := strings.TrimSpace(r.Header.Get(header))
	if v == "" {
		return nil
	}
	return &v
}

// CanMutateBuild reports whether userID may read or change b. Unowned
// builds are open to everyone; owned builds only to their owner.
func CanMutateBuild(userID *string, b *models.Build) bool {
	if b == nil {
		return false
	}
	if b.UserID == nil {
		return true
	}
	return userID != nil && *userID == *b.UserID
}

// Authorize returns an Unauthorized error when userID may not touch b.
func Authorize(userID *string, b *models.Build) error {
	if !CanMutateBuild(userID, b) {
		return apperr.Unauthorized("build")
	}
	return nil
}
