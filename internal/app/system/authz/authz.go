// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/staffhub/staffhub/internal/app/system/auth"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the request user's role (lowercased), email, Mongo
// ObjectID, and a found flag. If no user is present or the token's
// subject is not a valid ObjectID hex, it fails closed: ok=true always
// means a valid, authenticated user with a usable ObjectID.
func UserCtx(r *http.Request) (role string, email string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed subject in a signed token indicates corruption; treat as unauthenticated.
		return "", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Email, userID, true
}

// IsManager reports whether the current request's user is a manager.
func IsManager(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleManager
}

// IsEngineer reports whether the current request's user is an engineer.
func IsEngineer(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleEngineer
}
