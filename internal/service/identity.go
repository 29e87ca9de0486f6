package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sakif/college-board/internal/apperror"
	"github.com/sakif/college-board/internal/auth"
	"github.com/sakif/college-board/internal/model"
	"github.com/sakif/college-board/internal/repository"
)

var _ auth.IdentityResolver = (*IdentityResolver)(nil)

// IdentityResolver turns the email claim of a verified token into the stored
// user. It is the only place that decides who is acting on a request.
type IdentityResolver struct {
	users repository.UserRepository
}

func NewIdentityResolver(users repository.UserRepository) *IdentityResolver {
	return &IdentityResolver{users: users}
}

// Resolve fails with apperror.UnknownUser (an authentication failure, not a
// 404) when no account has the email.
func (r *IdentityResolver) Resolve(ctx context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, apperror.UnknownUser(email)
	}
	user, err := r.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.UnknownUser(email)
		}
		return nil, fmt.Errorf("service/identity: resolving %s: %w", email, err)
	}
	return user, nil
}
