package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/college-board/internal/apperror"
	"github.com/sakif/college-board/internal/model"
)

// Likes and scraps share one table shape: (id, user_id, board_id) with
// UNIQUE(user_id, board_id). The helpers below take the table name, which
// only ever comes from the constants here, never from input.
const (
	likesTable  = "likes"
	scrapsTable = "scraps"
)

func (q *queries) GetLike(ctx context.Context, userID, boardID int64) (*model.Like, error) {
	var l model.Like
	if err := q.getRelation(ctx, likesTable, &l, userID, boardID); err != nil {
		return nil, err
	}
	return &l, nil
}

func (q *queries) CreateLike(ctx context.Context, like *model.Like) error {
	id, err := q.createRelation(ctx, likesTable, like.UserID, like.BoardID)
	if err != nil {
		return err
	}
	like.ID = id
	return nil
}

func (q *queries) DeleteLike(ctx context.Context, userID, boardID int64) error {
	return q.deleteRelation(ctx, likesTable, userID, boardID)
}

func (q *queries) CountLikes(ctx context.Context, boardID int64) (int, error) {
	return q.countRelation(ctx, likesTable, boardID)
}

func (q *queries) GetScrap(ctx context.Context, userID, boardID int64) (*model.Scrap, error) {
	var s model.Scrap
	if err := q.getRelation(ctx, scrapsTable, &s, userID, boardID); err != nil {
		return nil, err
	}
	return &s, nil
}

func (q *queries) CreateScrap(ctx context.Context, scrap *model.Scrap) error {
	id, err := q.createRelation(ctx, scrapsTable, scrap.UserID, scrap.BoardID)
	if err != nil {
		return err
	}
	scrap.ID = id
	return nil
}

func (q *queries) DeleteScrap(ctx context.Context, userID, boardID int64) error {
	return q.deleteRelation(ctx, scrapsTable, userID, boardID)
}

func (q *queries) CountScraps(ctx context.Context, boardID int64) (int, error) {
	return q.countRelation(ctx, scrapsTable, boardID)
}

// relationName is the singular resource name used in error messages.
func relationName(table string) string {
	if table == likesTable {
		return "like"
	}
	return "scrap"
}

func (q *queries) getRelation(ctx context.Context, table string, dest any, userID, boardID int64) error {
	err := q.get(ctx, dest,
		fmt.Sprintf(`SELECT id, user_id, board_id FROM %s WHERE user_id = ? AND board_id = ?`, table),
		userID, boardID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound(relationName(table), fmt.Sprintf("user %d board %d", userID, boardID))
		}
		return fmt.Errorf("sqlstore: getting %s: %w", relationName(table), err)
	}
	return nil
}

// createRelation inserts the pair. The UNIQUE constraint backs the
// service-level duplicate check when two writers race.
func (q *queries) createRelation(ctx context.Context, table string, userID, boardID int64) (int64, error) {
	id, err := q.insert(ctx,
		fmt.Sprintf(`INSERT INTO %s (user_id, board_id) VALUES (?, ?)`, table),
		userID, boardID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, apperror.DuplicateRelation(relationName(table), boardID)
		}
		return 0, fmt.Errorf("sqlstore: creating %s: %w", relationName(table), err)
	}
	return id, nil
}

// deleteRelation is idempotent: removing a missing pair succeeds.
func (q *queries) deleteRelation(ctx context.Context, table string, userID, boardID int64) error {
	if _, err := q.execAffected(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE user_id = ? AND board_id = ?`, table),
		userID, boardID,
	); err != nil {
		return fmt.Errorf("sqlstore: deleting %s: %w", relationName(table), err)
	}
	return nil
}

func (q *queries) countRelation(ctx context.Context, table string, boardID int64) (int, error) {
	var n int
	if err := q.get(ctx, &n,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE board_id = ?`, table), boardID,
	); err != nil {
		return 0, fmt.Errorf("sqlstore: counting %ss of board %d: %w", relationName(table), boardID, err)
	}
	return n, nil
}
