package auth

import (
	"github.com/sakif/college-board/internal/apperror"
	"github.com/sakif/college-board/internal/model"
)

// CanModify reports whether actor may update or delete a resource created by
// the user with id ownerID. Only the author may.
func CanModify(actor *model.User, ownerID int64) bool {
	return actor != nil && actor.ID == ownerID
}

// RequireOwner returns apperror.Forbidden unless actor owns the resource.
// resource names the thing being changed in the error message ("board",
// "comment").
func RequireOwner(actor *model.User, ownerID int64, resource string) error {
	if !CanModify(actor, ownerID) {
		return apperror.Forbidden("only the author may modify this " + resource)
	}
	return nil
}
