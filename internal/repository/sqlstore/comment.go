package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/college-board/internal/apperror"
	"github.com/sakif/college-board/internal/model"
)

func (q *queries) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.CreatedAt = time.Now().UTC()

	id, err := q.insert(ctx,
		`INSERT INTO comments (board_id, author_id, content, created_at)
		 VALUES (?, ?, ?, ?)`,
		comment.BoardID,
		comment.AuthorID,
		comment.Content,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: creating comment on board %d: %w", comment.BoardID, err)
	}

	comment.ID = id
	return nil
}

func (q *queries) GetComment(ctx context.Context, id int64) (*model.Comment, error) {
	var c model.Comment
	err := q.get(ctx, &c,
		`SELECT id, board_id, author_id, content, created_at FROM comments WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlstore: getting comment %d: %w", id, err)
	}
	return &c, nil
}

// ListComments returns a board's comments in creation order, each with its
// author's username.
func (q *queries) ListComments(ctx context.Context, boardID int64) ([]model.CommentDetail, error) {
	comments := []model.CommentDetail{}
	err := q.list(ctx, &comments,
		`SELECT c.id, c.board_id, c.author_id, c.content, c.created_at, u.username AS author_name
		 FROM comments c JOIN users u ON u.id = c.author_id
		 WHERE c.board_id = ?
		 ORDER BY c.id`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing comments of board %d: %w", boardID, err)
	}
	return comments, nil
}

func (q *queries) UpdateComment(ctx context.Context, comment *model.Comment) error {
	n, err := q.execAffected(ctx,
		`UPDATE comments SET content = ? WHERE id = ?`,
		comment.Content, comment.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: updating comment %d: %w", comment.ID, err)
	}
	if n == 0 {
		return apperror.NotFound("comment", comment.ID)
	}
	return nil
}

func (q *queries) DeleteComment(ctx context.Context, id int64) error {
	n, err := q.execAffected(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting comment %d: %w", id, err)
	}
	if n == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}
