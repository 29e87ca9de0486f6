// Package service contains the business rules of the board.
//
// LAYERS:
//
//	Handler (HTTP)     → parses requests, writes responses
//	Service (rules)    → validates input, checks ownership, orchestrates
//	Repository (data)  → reads and writes rows
//
// Services accept primitives and the acting *model.User, never HTTP types,
// and return apperror values the handler maps to status codes.
//
// WRITES AND TRANSACTIONS:
// Every board, comment, like and scrap write runs inside Store.Transact. The
// ownership check reads the row and the mutation writes it within the same
// transaction, so a concurrent writer cannot slip in between the check and
// the write. A failed check returns an error from the callback, which rolls
// the transaction back before anything was written.
package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sakif/college-board/internal/apperror"
	"github.com/sakif/college-board/internal/auth"
	"github.com/sakif/college-board/internal/model"
	"github.com/sakif/college-board/internal/repository"
)

const (
	MaxTitleLength   = 200
	MaxContentLength = 20000
	MaxCommentLength = 2000
)

// BoardService handles posts, their comments, and the like and scrap
// relations.
type BoardService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewBoardService(store repository.Store, logger *slog.Logger) *BoardService {
	return &BoardService{store: store, logger: logger}
}

// List resolves a board listing for actor.
//
// A non-nil, non-empty query wins: boards whose title or content contains it
// (case-sensitive) are returned and category is ignored. Otherwise category
// selects ALL (also when nil), OWN, COMMENTED or SCRAPPED relative to actor.
// Summaries carry the first line of the content and are ordered by id,
// newest first. No match is an empty slice, not an error.
func (s *BoardService) List(ctx context.Context, actor *model.User, category *model.BoardCategory, query *string) ([]model.BoardSummary, error) {
	filter := repository.BoardFilter{
		Category: model.CategoryAll,
		ActorID:  actor.ID,
	}
	if category != nil {
		filter.Category = *category
	}
	if query != nil && *query != "" {
		filter.Query = *query
	}

	boards, err := s.store.ListBoards(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service/board: listing: %w", err)
	}

	summaries := make([]model.BoardSummary, 0, len(boards))
	for _, b := range boards {
		summaries = append(summaries, model.BoardSummary{
			ID:           b.ID,
			Title:        b.Title,
			Summary:      model.FirstLine(b.Content),
			CreatedAt:    b.CreatedAt,
			CommentCount: b.CommentCount,
		})
	}
	slices.SortFunc(summaries, func(a, b model.BoardSummary) int { return cmp.Compare(b.ID, a.ID) })
	return summaries, nil
}

// Detail returns one board with counters, its author, its comments in
// creation order, and whether actor liked or scrapped it.
func (s *BoardService) Detail(ctx context.Context, actor *model.User, boardID int64) (*model.BoardDetail, error) {
	board, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	author, err := s.store.GetUserByID(ctx, board.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("service/board: author of board %d: %w", boardID, err)
	}
	comments, err := s.store.ListComments(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("service/board: comments of board %d: %w", boardID, err)
	}
	likes, err := s.store.CountLikes(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("service/board: %w", err)
	}
	scraps, err := s.store.CountScraps(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("service/board: %w", err)
	}
	liked, err := exists(s.store.GetLike(ctx, actor.ID, boardID))
	if err != nil {
		return nil, fmt.Errorf("service/board: %w", err)
	}
	scrapped, err := exists(s.store.GetScrap(ctx, actor.ID, boardID))
	if err != nil {
		return nil, fmt.Errorf("service/board: %w", err)
	}

	return &model.BoardDetail{
		ID:           board.ID,
		Title:        board.Title,
		Content:      board.Content,
		LikeCount:    likes,
		CommentCount: len(comments),
		ScrapCount:   scraps,
		CreatedAt:    board.CreatedAt,
		AuthorID:     author.ID,
		AuthorName:   author.Username,
		Liked:        liked,
		Scrapped:     scrapped,
		Comments:     comments,
	}, nil
}

// exists turns a lookup into a boolean: found is true, ErrNotFound is false,
// any other error is returned.
func exists[T any](_ T, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apperror.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (s *BoardService) Create(ctx context.Context, actor *model.User, title, content string) (*model.Board, error) {
	title = strings.TrimSpace(title)
	if err := validatePost(title, content); err != nil {
		return nil, err
	}

	board := &model.Board{AuthorID: actor.ID, Title: title, Content: content}
	err := s.store.Transact(ctx, func(q repository.Queries) error {
		return q.CreateBoard(ctx, board)
	})
	if err != nil {
		return nil, s.wrap("creating board", err)
	}

	s.logger.Info("board created", slog.Int64("boardID", board.ID), slog.Int64("userID", actor.ID))
	return board, nil
}

// Update rewrites title and content. Only the author may; anyone else gets
// apperror.ErrForbidden and the board is left as it was.
func (s *BoardService) Update(ctx context.Context, actor *model.User, boardID int64, title, content string) (*model.Board, error) {
	title = strings.TrimSpace(title)
	if err := validatePost(title, content); err != nil {
		return nil, err
	}

	var board *model.Board
	err := s.store.Transact(ctx, func(q repository.Queries) error {
		var err error
		if board, err = q.GetBoard(ctx, boardID); err != nil {
			return err
		}
		if err := auth.RequireOwner(actor, board.AuthorID, "board"); err != nil {
			return err
		}
		board.Title = title
		board.Content = content
		return q.UpdateBoard(ctx, board)
	})
	if err != nil {
		return nil, s.wrap("updating board", err)
	}

	s.logger.Info("board updated", slog.Int64("boardID", boardID), slog.Int64("userID", actor.ID))
	return board, nil
}

// Delete removes the board with its comments, likes and scraps. Only the
// author may.
func (s *BoardService) Delete(ctx context.Context, actor *model.User, boardID int64) error {
	err := s.store.Transact(ctx, func(q repository.Queries) error {
		board, err := q.GetBoard(ctx, boardID)
		if err != nil {
			return err
		}
		if err := auth.RequireOwner(actor, board.AuthorID, "board"); err != nil {
			return err
		}
		return q.DeleteBoard(ctx, boardID)
	})
	if err != nil {
		return s.wrap("deleting board", err)
	}

	s.logger.Info("board deleted", slog.Int64("boardID", boardID), slog.Int64("userID", actor.ID))
	return nil
}

// AddComment attaches a comment by actor to an existing board.
func (s *BoardService) AddComment(ctx context.Context, actor *model.User, boardID int64, content string) (*model.Comment, error) {
	if err := validateComment(content); err != nil {
		return nil, err
	}

	comment := &model.Comment{BoardID: boardID, AuthorID: actor.ID, Content: content}
	err := s.store.Transact(ctx, func(q repository.Queries) error {
		if _, err := q.GetBoard(ctx, boardID); err != nil {
			return err
		}
		return q.CreateComment(ctx, comment)
	})
	if err != nil {
		return nil, s.wrap("adding comment", err)
	}

	s.logger.Info("comment created",
		slog.Int64("commentID", comment.ID),
		slog.Int64("boardID", boardID),
		slog.Int64("userID", actor.ID),
	)
	return comment, nil
}

// UpdateComment rewrites a comment. The comment must belong to boardID,
// otherwise it is reported as not found.
func (s *BoardService) UpdateComment(ctx context.Context, actor *model.User, boardID, commentID int64, content string) (*model.Comment, error) {
	if err := validateComment(content); err != nil {
		return nil, err
	}

	var comment *model.Comment
	err := s.store.Transact(ctx, func(q repository.Queries) error {
		var err error
		if comment, err = ownedComment(ctx, q, actor, boardID, commentID); err != nil {
			return err
		}
		comment.Content = content
		return q.UpdateComment(ctx, comment)
	})
	if err != nil {
		return nil, s.wrap("updating comment", err)
	}

	s.logger.Info("comment updated", slog.Int64("commentID", commentID), slog.Int64("userID", actor.ID))
	return comment, nil
}

func (s *BoardService) DeleteComment(ctx context.Context, actor *model.User, boardID, commentID int64) error {
	err := s.store.Transact(ctx, func(q repository.Queries) error {
		if _, err := ownedComment(ctx, q, actor, boardID, commentID); err != nil {
			return err
		}
		return q.DeleteComment(ctx, commentID)
	})
	if err != nil {
		return s.wrap("deleting comment", err)
	}

	s.logger.Info("comment deleted", slog.Int64("commentID", commentID), slog.Int64("userID", actor.ID))
	return nil
}

func ownedComment(ctx context.Context, q repository.Queries, actor *model.User, boardID, commentID int64) (*model.Comment, error) {
	comment, err := q.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.BoardID != boardID {
		return nil, apperror.NotFound("comment", commentID)
	}
	if err := auth.RequireOwner(actor, comment.AuthorID, "comment"); err != nil {
		return nil, err
	}
	return comment, nil
}

// Like records that actor likes the board. A second like is
// apperror.ErrConflict.
func (s *BoardService) Like(ctx context.Context, actor *model.User, boardID int64) (*model.Like, error) {
	like := &model.Like{UserID: actor.ID, BoardID: boardID}
	err := s.relate(ctx, boardID, "like",
		func(q repository.Queries) error { _, err := q.GetLike(ctx, actor.ID, boardID); return err },
		func(q repository.Queries) error { return q.CreateLike(ctx, like) },
	)
	if err != nil {
		return nil, s.wrap("liking board", err)
	}
	s.logger.Info("board liked", slog.Int64("boardID", boardID), slog.Int64("userID", actor.ID))
	return like, nil
}

// Unlike removes actor's like. Removing a like that does not exist succeeds.
func (s *BoardService) Unlike(ctx context.Context, actor *model.User, boardID int64) error {
	err := s.unrelate(ctx, boardID, func(q repository.Queries) error {
		return q.DeleteLike(ctx, actor.ID, boardID)
	})
	if err != nil {
		return s.wrap("unliking board", err)
	}
	return nil
}

func (s *BoardService) Scrap(ctx context.Context, actor *model.User, boardID int64) (*model.Scrap, error) {
	scrap := &model.Scrap{UserID: actor.ID, BoardID: boardID}
	err := s.relate(ctx, boardID, "scrap",
		func(q repository.Queries) error { _, err := q.GetScrap(ctx, actor.ID, boardID); return err },
		func(q repository.Queries) error { return q.CreateScrap(ctx, scrap) },
	)
	if err != nil {
		return nil, s.wrap("scrapping board", err)
	}
	s.logger.Info("board scrapped", slog.Int64("boardID", boardID), slog.Int64("userID", actor.ID))
	return scrap, nil
}

func (s *BoardService) Unscrap(ctx context.Context, actor *model.User, boardID int64) error {
	err := s.unrelate(ctx, boardID, func(q repository.Queries) error {
		return q.DeleteScrap(ctx, actor.ID, boardID)
	})
	if err != nil {
		return s.wrap("unscrapping board", err)
	}
	return nil
}

// relate creates a (user, board) join row after checking the board exists
// and the pair does not. The store's UNIQUE constraint catches the race the
// lookup cannot.
func (s *BoardService) relate(ctx context.Context, boardID int64, relation string, get, create func(repository.Queries) error) error {
	return s.store.Transact(ctx, func(q repository.Queries) error {
		if _, err := q.GetBoard(ctx, boardID); err != nil {
			return err
		}
		switch err := get(q); {
		case err == nil:
			return apperror.DuplicateRelation(relation, boardID)
		case !errors.Is(err, apperror.ErrNotFound):
			return err
		}
		return create(q)
	})
}

func (s *BoardService) unrelate(ctx context.Context, boardID int64, remove func(repository.Queries) error) error {
	return s.store.Transact(ctx, func(q repository.Queries) error {
		if _, err := q.GetBoard(ctx, boardID); err != nil {
			return err
		}
		return remove(q)
	})
}

// wrap passes domain errors through untouched so the handler can classify
// them, and logs anything else as an unexpected store failure.
func (s *BoardService) wrap(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	s.logger.Error("board operation failed", slog.String("op", op), slog.String("error", err.Error()))
	return fmt.Errorf("service/board: %s: %w", op, err)
}

// Lengths are counted in characters, not bytes, so Korean text gets the
// same limits as ASCII.
func validatePost(title, content string) error {
	if title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if strings.TrimSpace(content) == "" {
		return apperror.ValidationFailed("content", "content is required")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", MaxContentLength))
	}
	return nil
}

func validateComment(content string) error {
	if strings.TrimSpace(content) == "" {
		return apperror.ValidationFailed("content", "comment must not be empty")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return apperror.ValidationFailed("content",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}
	return nil
}
