package service

import (
	"cmp"
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/sakif/college-board/internal/apperror"
	"github.com/sakif/college-board/internal/model"
	"github.com/sakif/college-board/internal/repository"
	"github.com/sakif/college-board/internal/storage"
)

// =========================================================================
// FAKE STORE
// =========================================================================
//
// fakeStore is an in-memory repository.Store. Transact snapshots every table
// and restores the snapshot when fn fails, so tests can observe rollback the
// same way they would against a real database.

type fakeStore struct {
	users      map[int64]model.User
	boards     map[int64]model.Board
	comments   map[int64]model.Comment
	likes      map[int64]model.Like
	scraps     map[int64]model.Scrap
	volunteers map[int64]model.Volunteer
	clubs      map[int64]model.Club
	studies    map[int64]model.Study
	nextID     int64

	transactions int   // number of Transact calls
	writes       int   // number of successful mutations
	failWith     error // when set, every mutation fails with it
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      map[int64]model.User{},
		boards:     map[int64]model.Board{},
		comments:   map[int64]model.Comment{},
		likes:      map[int64]model.Like{},
		scraps:     map[int64]model.Scrap{},
		volunteers: map[int64]model.Volunteer{},
		clubs:      map[int64]model.Club{},
		studies:    map[int64]model.Study{},
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) write() error {
	if f.failWith != nil {
		return f.failWith
	}
	f.writes++
	return nil
}

func (f *fakeStore) Transact(ctx context.Context, fn func(q repository.Queries) error) error {
	f.transactions++
	snap := f.snapshot()
	if err := fn(f); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

type fakeSnapshot struct {
	users    map[int64]model.User
	boards   map[int64]model.Board
	comments map[int64]model.Comment
	likes    map[int64]model.Like
	scraps   map[int64]model.Scrap
}

func (f *fakeStore) snapshot() fakeSnapshot {
	return fakeSnapshot{
		users:    maps.Clone(f.users),
		boards:   maps.Clone(f.boards),
		comments: maps.Clone(f.comments),
		likes:    maps.Clone(f.likes),
		scraps:   maps.Clone(f.scraps),
	}
}

func (f *fakeStore) restore(s fakeSnapshot) {
	f.users, f.boards, f.comments, f.likes, f.scraps = s.users, s.boards, s.comments, s.likes, s.scraps
}

// ---- users ----

func (f *fakeStore) addUser(email, username string, role model.Role) *model.User {
	u := model.User{ID: f.id(), Email: email, Username: username, Role: role, CreatedAt: time.Now()}
	f.users[u.ID] = u
	return &u
}

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.Conflict("user", user.Email)
		}
	}
	if err := f.write(); err != nil {
		return err
	}
	user.ID = f.id()
	user.CreatedAt = time.Now()
	f.users[user.ID] = *user
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return &u, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeStore) ListUsers(context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b model.User) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (f *fakeStore) UpsertUserByEmail(ctx context.Context, user *model.User) error {
	if existing, err := f.GetUserByEmail(ctx, user.Email); err == nil {
		existing.Username = user.Username
		f.users[existing.ID] = *existing
		*user = *existing
		return f.write()
	}
	return f.CreateUser(ctx, user)
}

// ---- boards ----

func (f *fakeStore) addBoard(authorID int64, title, content string) model.Board {
	b := model.Board{ID: f.id(), AuthorID: authorID, Title: title, Content: content, CreatedAt: time.Now()}
	f.boards[b.ID] = b
	return b
}

func (f *fakeStore) CreateBoard(_ context.Context, board *model.Board) error {
	if err := f.write(); err != nil {
		return err
	}
	board.ID = f.id()
	board.CreatedAt = time.Now()
	f.boards[board.ID] = *board
	return nil
}

func (f *fakeStore) GetBoard(_ context.Context, id int64) (*model.Board, error) {
	b, ok := f.boards[id]
	if !ok {
		return nil, apperror.NotFound("board", id)
	}
	return &b, nil
}

// ListBoards applies the filter in memory. It returns boards in map order on
// purpose: ordering is the service's job to guarantee.
func (f *fakeStore) ListBoards(_ context.Context, filter repository.BoardFilter) ([]model.BoardListing, error) {
	out := []model.BoardListing{}
	for _, b := range f.boards {
		if !f.matches(b, filter) {
			continue
		}
		n := 0
		for _, c := range f.comments {
			if c.BoardID == b.ID {
				n++
			}
		}
		out = append(out, model.BoardListing{Board: b, CommentCount: n})
	}
	return out, nil
}

func (f *fakeStore) matches(b model.Board, filter repository.BoardFilter) bool {
	if filter.Query != "" {
		return strings.Contains(b.Title, filter.Query) || strings.Contains(b.Content, filter.Query)
	}
	switch filter.Category {
	case model.CategoryOwn:
		return b.AuthorID == filter.ActorID
	case model.CategoryCommented:
		for _, c := range f.comments {
			if c.BoardID == b.ID && c.AuthorID == filter.ActorID {
				return true
			}
		}
		return false
	case model.CategoryScrapped:
		for _, s := range f.scraps {
			if s.BoardID == b.ID && s.UserID == filter.ActorID {
				return true
			}
		}
		return false
	}
	return true
}

func (f *fakeStore) UpdateBoard(_ context.Context, board *model.Board) error {
	existing, ok := f.boards[board.ID]
	if !ok {
		return apperror.NotFound("board", board.ID)
	}
	if err := f.write(); err != nil {
		return err
	}
	existing.Title, existing.Content = board.Title, board.Content
	f.boards[board.ID] = existing
	return nil
}

func (f *fakeStore) DeleteBoard(_ context.Context, id int64) error {
	if _, ok := f.boards[id]; !ok {
		return apperror.NotFound("board", id)
	}
	if err := f.write(); err != nil {
		return err
	}
	delete(f.boards, id)
	for cid, c := range f.comments {
		if c.BoardID == id {
			delete(f.comments, cid)
		}
	}
	for lid, l := range f.likes {
		if l.BoardID == id {
			delete(f.likes, lid)
		}
	}
	for sid, s := range f.scraps {
		if s.BoardID == id {
			delete(f.scraps, sid)
		}
	}
	return nil
}

// ---- comments ----

func (f *fakeStore) addComment(boardID, authorID int64, content string) model.Comment {
	c := model.Comment{ID: f.id(), BoardID: boardID, AuthorID: authorID, Content: content, CreatedAt: time.Now()}
	f.comments[c.ID] = c
	return c
}

func (f *fakeStore) CreateComment(_ context.Context, comment *model.Comment) error {
	if err := f.write(); err != nil {
		return err
	}
	comment.ID = f.id()
	comment.CreatedAt = time.Now()
	f.comments[comment.ID] = *comment
	return nil
}

func (f *fakeStore) GetComment(_ context.Context, id int64) (*model.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	return &c, nil
}

func (f *fakeStore) ListComments(_ context.Context, boardID int64) ([]model.CommentDetail, error) {
	out := []model.CommentDetail{}
	for _, c := range f.comments {
		if c.BoardID == boardID {
			out = append(out, model.CommentDetail{Comment: c, AuthorName: f.users[c.AuthorID].Username})
		}
	}
	slices.SortFunc(out, func(a, b model.CommentDetail) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (f *fakeStore) UpdateComment(_ context.Context, comment *model.Comment) error {
	existing, ok := f.comments[comment.ID]
	if !ok {
		return apperror.NotFound("comment", comment.ID)
	}
	if err := f.write(); err != nil {
		return err
	}
	existing.Content = comment.Content
	f.comments[comment.ID] = existing
	return nil
}

func (f *fakeStore) DeleteComment(_ context.Context, id int64) error {
	if _, ok := f.comments[id]; !ok {
		return apperror.NotFound("comment", id)
	}
	if err := f.write(); err != nil {
		return err
	}
	delete(f.comments, id)
	return nil
}

// ---- likes / scraps ----

func (f *fakeStore) GetLike(_ context.Context, userID, boardID int64) (*model.Like, error) {
	for _, l := range f.likes {
		if l.UserID == userID && l.BoardID == boardID {
			return &l, nil
		}
	}
	return nil, apperror.NotFound("like", boardID)
}

func (f *fakeStore) CreateLike(ctx context.Context, like *model.Like) error {
	if _, err := f.GetLike(ctx, like.UserID, like.BoardID); err == nil {
		return apperror.DuplicateRelation("like", like.BoardID)
	}
	if err := f.write(); err != nil {
		return err
	}
	like.ID = f.id()
	f.likes[like.ID] = *like
	return nil
}

func (f *fakeStore) DeleteLike(_ context.Context, userID, boardID int64) error {
	if err := f.write(); err != nil {
		return err
	}
	for id, l := range f.likes {
		if l.UserID == userID && l.BoardID == boardID {
			delete(f.likes, id)
		}
	}
	return nil
}

func (f *fakeStore) CountLikes(_ context.Context, boardID int64) (int, error) {
	n := 0
	for _, l := range f.likes {
		if l.BoardID == boardID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) GetScrap(_ context.Context, userID, boardID int64) (*model.Scrap, error) {
	for _, s := range f.scraps {
		if s.UserID == userID && s.BoardID == boardID {
			return &s, nil
		}
	}
	return nil, apperror.NotFound("scrap", boardID)
}

func (f *fakeStore) CreateScrap(ctx context.Context, scrap *model.Scrap) error {
	if _, err := f.GetScrap(ctx, scrap.UserID, scrap.BoardID); err == nil {
		return apperror.DuplicateRelation("scrap", scrap.BoardID)
	}
	if err := f.write(); err != nil {
		return err
	}
	scrap.ID = f.id()
	f.scraps[scrap.ID] = *scrap
	return nil
}

func (f *fakeStore) DeleteScrap(_ context.Context, userID, boardID int64) error {
	if err := f.write(); err != nil {
		return err
	}
	for id, s := range f.scraps {
		if s.UserID == userID && s.BoardID == boardID {
			delete(f.scraps, id)
		}
	}
	return nil
}

func (f *fakeStore) CountScraps(_ context.Context, boardID int64) (int, error) {
	n := 0
	for _, s := range f.scraps {
		if s.BoardID == boardID {
			n++
		}
	}
	return n, nil
}

// ---- college listings ----

func matchesQuery(query *string, fields ...string) bool {
	if query == nil || *query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(f, *query) {
			return true
		}
	}
	return false
}

func (f *fakeStore) CreateVolunteer(_ context.Context, v *model.Volunteer) error {
	if err := f.write(); err != nil {
		return err
	}
	v.ID = f.id()
	v.CreatedAt = time.Now()
	f.volunteers[v.ID] = *v
	return nil
}

func (f *fakeStore) GetVolunteer(_ context.Context, id int64) (*model.Volunteer, error) {
	v, ok := f.volunteers[id]
	if !ok {
		return nil, apperror.NotFound("volunteer", id)
	}
	return &v, nil
}

func (f *fakeStore) ListVolunteers(_ context.Context, query *string) ([]model.Volunteer, error) {
	out := []model.Volunteer{}
	for _, v := range f.volunteers {
		if matchesQuery(query, v.Title, v.Content) {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b model.Volunteer) int { return cmp.Compare(b.ID, a.ID) })
	return out, nil
}

func (f *fakeStore) CreateClub(_ context.Context, c *model.Club) error {
	if err := f.write(); err != nil {
		return err
	}
	c.ID = f.id()
	c.CreatedAt = time.Now()
	f.clubs[c.ID] = *c
	return nil
}

func (f *fakeStore) GetClub(_ context.Context, id int64) (*model.Club, error) {
	c, ok := f.clubs[id]
	if !ok {
		return nil, apperror.NotFound("club", id)
	}
	return &c, nil
}

func (f *fakeStore) ListClubs(_ context.Context, query *string) ([]model.Club, error) {
	out := []model.Club{}
	for _, c := range f.clubs {
		if matchesQuery(query, c.Name, c.Description) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b model.Club) int { return cmp.Compare(b.ID, a.ID) })
	return out, nil
}

func (f *fakeStore) CreateStudy(_ context.Context, s *model.Study) error {
	if err := f.write(); err != nil {
		return err
	}
	s.ID = f.id()
	s.CreatedAt = time.Now()
	f.studies[s.ID] = *s
	return nil
}

func (f *fakeStore) GetStudy(_ context.Context, id int64) (*model.Study, error) {
	s, ok := f.studies[id]
	if !ok {
		return nil, apperror.NotFound("study", id)
	}
	return &s, nil
}

func (f *fakeStore) ListStudies(_ context.Context, query *string) ([]model.Study, error) {
	out := []model.Study{}
	for _, s := range f.studies {
		if matchesQuery(query, s.Title, s.Content) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b model.Study) int { return cmp.Compare(b.ID, a.ID) })
	return out, nil
}

// =========================================================================
// FAKE IMAGE STORE
// =========================================================================

type fakeImages struct {
	objects map[string]*storage.Image
	putErr  error
	deleted []string
}

var _ storage.ImageStore = (*fakeImages)(nil)

func newFakeImages() *fakeImages {
	return &fakeImages{objects: map[string]*storage.Image{}}
}

func (f *fakeImages) Put(_ context.Context, prefix string, img *storage.Image) (storage.Object, error) {
	if f.putErr != nil {
		return storage.Object{}, f.putErr
	}
	key := prefix + "/obj-" + string(rune('a'+len(f.objects))) + img.Extension
	f.objects[key] = img
	return storage.Object{Key: key, URL: "http://images.test/" + key}, nil
}

func (f *fakeImages) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

// =========================================================================
// HELPERS
// =========================================================================

var errDatabaseDown = errors.New("database is down")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }
