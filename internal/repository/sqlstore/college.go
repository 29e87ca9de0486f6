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

func (q *queries) CreateVolunteer(ctx context.Context, v *model.Volunteer) error {
	v.CreatedAt = time.Now().UTC()
	id, err := q.insert(ctx,
		`INSERT INTO volunteers (author_id, title, content, organization, activity_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		v.AuthorID, v.Title, v.Content, v.Organization, v.ActivityDate, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: creating volunteer: %w", err)
	}
	v.ID = id
	return nil
}

func (q *queries) GetVolunteer(ctx context.Context, id int64) (*model.Volunteer, error) {
	var v model.Volunteer
	err := q.get(ctx, &v,
		`SELECT id, author_id, title, content, organization, activity_date, created_at
		 FROM volunteers WHERE id = ?`, id)
	if err != nil {
		return nil, notFoundOr(err, "volunteer", id)
	}
	return &v, nil
}

func (q *queries) ListVolunteers(ctx context.Context, query *string) ([]model.Volunteer, error) {
	rows := []model.Volunteer{}
	stmt, args := q.searchable(
		`SELECT id, author_id, title, content, organization, activity_date, created_at FROM volunteers`,
		"title", "content", query)
	if err := q.list(ctx, &rows, stmt, args...); err != nil {
		return nil, fmt.Errorf("sqlstore: listing volunteers: %w", err)
	}
	return rows, nil
}

func (q *queries) CreateClub(ctx context.Context, c *model.Club) error {
	c.CreatedAt = time.Now().UTC()
	id, err := q.insert(ctx,
		`INSERT INTO clubs (author_id, name, description, image_url, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.AuthorID, c.Name, c.Description, c.ImageURL, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: creating club: %w", err)
	}
	c.ID = id
	return nil
}

func (q *queries) GetClub(ctx context.Context, id int64) (*model.Club, error) {
	var c model.Club
	err := q.get(ctx, &c,
		`SELECT id, author_id, name, description, image_url, created_at
		 FROM clubs WHERE id = ?`, id)
	if err != nil {
		return nil, notFoundOr(err, "club", id)
	}
	return &c, nil
}

func (q *queries) ListClubs(ctx context.Context, query *string) ([]model.Club, error) {
	rows := []model.Club{}
	stmt, args := q.searchable(
		`SELECT id, author_id, name, description, image_url, created_at FROM clubs`,
		"name", "description", query)
	if err := q.list(ctx, &rows, stmt, args...); err != nil {
		return nil, fmt.Errorf("sqlstore: listing clubs: %w", err)
	}
	return rows, nil
}

func (q *queries) CreateStudy(ctx context.Context, s *model.Study) error {
	s.CreatedAt = time.Now().UTC()
	id, err := q.insert(ctx,
		`INSERT INTO studies (author_id, title, content, capacity, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		s.AuthorID, s.Title, s.Content, s.Capacity, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: creating study: %w", err)
	}
	s.ID = id
	return nil
}

func (q *queries) GetStudy(ctx context.Context, id int64) (*model.Study, error) {
	var s model.Study
	err := q.get(ctx, &s,
		`SELECT id, author_id, title, content, capacity, created_at
		 FROM studies WHERE id = ?`, id)
	if err != nil {
		return nil, notFoundOr(err, "study", id)
	}
	return &s, nil
}

func (q *queries) ListStudies(ctx context.Context, query *string) ([]model.Study, error) {
	rows := []model.Study{}
	stmt, args := q.searchable(
		`SELECT id, author_id, title, content, capacity, created_at FROM studies`,
		"title", "content", query)
	if err := q.list(ctx, &rows, stmt, args...); err != nil {
		return nil, fmt.Errorf("sqlstore: listing studies: %w", err)
	}
	return rows, nil
}

// searchable appends the optional substring predicate and the newest-first
// ordering to a listing SELECT.
func (q *queries) searchable(base, titleCol, bodyCol string, query *string) (string, []any) {
	var args []any
	if query != nil && *query != "" {
		base += ` WHERE ` + q.dialect.contains(titleCol) + ` OR ` + q.dialect.contains(bodyCol)
		args = append(args, *query, *query)
	}
	return base + ` ORDER BY id DESC`, args
}

func notFoundOr(err error, resource string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound(resource, id)
	}
	return fmt.Errorf("sqlstore: getting %s %d: %w", resource, id, err)
}
