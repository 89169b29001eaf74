// Package authz answers role questions about the current request's user.
package authz

import (
	"net/http"
	"strings"

	"github.com/studypointin/studypoint/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a
// found flag. If no user is present or the session user ID is malformed it
// returns "visitor", "", NilObjectID, false, so ok=true always means a valid
// authenticated user.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "admin"
}

// HasAnyRole reports whether the current request's user has any of the given
// roles. Returns false if no user is present.
func HasAnyRole(r *http.Request, roles ...string) bool {
	cur, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if cur == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// Role returns the current user's role (lowercased) and whether a user is
// present.
func Role(r *http.Request) (string, bool) {
	role, _, _, ok := UserCtx(r)
	return role, ok
}
