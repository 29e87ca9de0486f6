package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/college-board/internal/apperror"
	"github.com/sakif/college-board/internal/model"
	"github.com/sakif/college-board/internal/repository"
)

func (q *queries) CreateBoard(ctx context.Context, board *model.Board) error {
	board.CreatedAt = time.Now().UTC()

	id, err := q.insert(ctx,
		`INSERT INTO boards (author_id, title, content, created_at)
		 VALUES (?, ?, ?, ?)`,
		board.AuthorID,
		board.Title,
		board.Content,
		board.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: creating board: %w", err)
	}

	board.ID = id
	return nil
}

// GetBoard returns apperror.ErrNotFound when the board does not exist.
func (q *queries) GetBoard(ctx context.Context, id int64) (*model.Board, error) {
	var b model.Board
	err := q.get(ctx, &b,
		`SELECT id, author_id, title, content, created_at FROM boards WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("board", id)
		}
		return nil, fmt.Errorf("sqlstore: getting board %d: %w", id, err)
	}
	return &b, nil
}

// ListBoards applies the filter as SQL predicates and orders newest first.
//
// Filter precedence:
//   - Query non-empty → title or content contains Query; Category is ignored
//   - OWN             → boards authored by ActorID
//   - COMMENTED       → boards with at least one comment by ActorID
//   - SCRAPPED        → boards scrapped by ActorID
//   - ALL / empty     → every board
func (q *queries) ListBoards(ctx context.Context, f repository.BoardFilter) ([]model.BoardListing, error) {
	query := `SELECT b.id, b.author_id, b.title, b.content, b.created_at,
		(SELECT COUNT(*) FROM comments c WHERE c.board_id = b.id) AS comment_count
		FROM boards b`
	var args []any

	switch {
	case f.Query != "":
		query += ` WHERE ` + q.dialect.contains("b.title") + ` OR ` + q.dialect.contains("b.content")
		args = append(args, f.Query, f.Query)
	case f.Category == model.CategoryOwn:
		query += ` WHERE b.author_id = ?`
		args = append(args, f.ActorID)
	case f.Category == model.CategoryCommented:
		query += ` WHERE EXISTS (SELECT 1 FROM comments c WHERE c.board_id = b.id AND c.author_id = ?)`
		args = append(args, f.ActorID)
	case f.Category == model.CategoryScrapped:
		query += ` WHERE EXISTS (SELECT 1 FROM scraps s WHERE s.board_id = b.id AND s.user_id = ?)`
		args = append(args, f.ActorID)
	}
	query += ` ORDER BY b.id DESC`

	boards := []model.BoardListing{}
	if err := q.list(ctx, &boards, query, args...); err != nil {
		return nil, fmt.Errorf("sqlstore: listing boards: %w", err)
	}
	return boards, nil
}

// UpdateBoard rewrites title and content. Author and creation time are
// immutable.
func (q *queries) UpdateBoard(ctx context.Context, board *model.Board) error {
	n, err := q.execAffected(ctx,
		`UPDATE boards SET title = ?, content = ? WHERE id = ?`,
		board.Title, board.Content, board.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: updating board %d: %w", board.ID, err)
	}
	if n == 0 {
		return apperror.NotFound("board", board.ID)
	}
	return nil
}

// DeleteBoard removes the board; comments, likes and scraps cascade.
func (q *queries) DeleteBoard(ctx context.Context, id int64) error {
	n, err := q.execAffected(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting board %d: %w", id, err)
	}
	if n == 0 {
		return apperror.NotFound("board", id)
	}
	return nil
}
