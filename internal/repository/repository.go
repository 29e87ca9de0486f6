// Package repository declares the storage contracts the service layer
// depends on. Implementations live in sub-packages (see sqlstore).
//
// Lookups by id return an *apperror.AppError wrapping apperror.ErrNotFound
// when the row is absent, never a nil entity with a nil error.
package repository

import (
	"context"

	"github.com/sakif/college-board/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	// UpsertUserByEmail inserts the user or refreshes the username of the
	// existing row with that email, filling user.ID either way.
	UpsertUserByEmail(ctx context.Context, user *model.User) error
}

// BoardFilter is a store-side listing predicate. A non-empty Query wins over
// Category; ActorID is the user the category is relative to.
type BoardFilter struct {
	Query    string
	Category model.BoardCategory
	ActorID  int64
}

type BoardRepository interface {
	CreateBoard(ctx context.Context, board *model.Board) error
	GetBoard(ctx context.Context, id int64) (*model.Board, error)
	ListBoards(ctx context.Context, filter BoardFilter) ([]model.BoardListing, error)
	UpdateBoard(ctx context.Context, board *model.Board) error
	DeleteBoard(ctx context.Context, id int64) error
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id int64) (*model.Comment, error)
	ListComments(ctx context.Context, boardID int64) ([]model.CommentDetail, error)
	UpdateComment(ctx context.Context, comment *model.Comment) error
	DeleteComment(ctx context.Context, id int64) error
}

// LikeRepository stores (user, board) like rows. DeleteLike of a missing
// pair is not an error.
type LikeRepository interface {
	GetLike(ctx context.Context, userID, boardID int64) (*model.Like, error)
	CreateLike(ctx context.Context, like *model.Like) error
	DeleteLike(ctx context.Context, userID, boardID int64) error
	CountLikes(ctx context.Context, boardID int64) (int, error)
}

type ScrapRepository interface {
	GetScrap(ctx context.Context, userID, boardID int64) (*model.Scrap, error)
	CreateScrap(ctx context.Context, scrap *model.Scrap) error
	DeleteScrap(ctx context.Context, userID, boardID int64) error
	CountScraps(ctx context.Context, boardID int64) (int, error)
}

// CollegeRepository stores volunteer, club and study listings. A nil query
// lists everything; otherwise rows whose title or body contains *query
// (case-sensitive) are returned. Results are ordered by id descending.
type CollegeRepository interface {
	CreateVolunteer(ctx context.Context, v *model.Volunteer) error
	GetVolunteer(ctx context.Context, id int64) (*model.Volunteer, error)
	ListVolunteers(ctx context.Context, query *string) ([]model.Volunteer, error)

	CreateClub(ctx context.Context, c *model.Club) error
	GetClub(ctx context.Context, id int64) (*model.Club, error)
	ListClubs(ctx context.Context, query *string) ([]model.Club, error)

	CreateStudy(ctx context.Context, s *model.Study) error
	GetStudy(ctx context.Context, id int64) (*model.Study, error)
	ListStudies(ctx context.Context, query *string) ([]model.Study, error)
}

// Queries is every repository operation, bound either to the connection pool
// or to a single transaction.
type Queries interface {
	UserRepository
	BoardRepository
	CommentRepository
	LikeRepository
	ScrapRepository
	CollegeRepository
}

// Store is the full storage surface. Transact runs fn inside one database
// transaction: it commits when fn returns nil and rolls back otherwise, so a
// read-check-write sequence in fn is never split by a concurrent writer.
type Store interface {
	Queries
	Transact(ctx context.Context, fn func(q Queries) error) error
}
