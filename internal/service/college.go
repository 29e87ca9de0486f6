package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/college-board/internal/apperror"
	"github.com/sakif/college-board/internal/model"
	"github.com/sakif/college-board/internal/repository"
	"github.com/sakif/college-board/internal/storage"
)

const (
	MaxStudyCapacity = 1000
	clubImagePrefix  = "clubs"
)

// activityDateLayout is the ISO calendar date format (2026-03-01).
const activityDateLayout = "2006-01-02"

// CollegeService manages the volunteer, club and study listings.
//
// images may be nil, in which case clubs can still be created but uploads
// are rejected.
type CollegeService struct {
	store  repository.Store
	images storage.ImageStore
	logger *slog.Logger
}

func NewCollegeService(store repository.Store, images storage.ImageStore, logger *slog.Logger) *CollegeService {
	return &CollegeService{store: store, images: images, logger: logger}
}

type VolunteerInput struct {
	Title        string
	Content      string
	Organization string
	ActivityDate string
}

type ClubInput struct {
	Name        string
	Description string
}

type StudyInput struct {
	Title    string
	Content  string
	Capacity int
}

// summarize builds the list projection shared by the three listing kinds.
func summarize(id int64, title, body string, createdAt time.Time) model.ListingSummary {
	return model.ListingSummary{ID: id, Title: title, Summary: model.FirstLine(body), CreatedAt: createdAt}
}

// ListVolunteers returns summaries newest first. A nil or empty query lists
// everything; otherwise title or content must contain it (case-sensitive).
func (s *CollegeService) ListVolunteers(ctx context.Context, query *string) ([]model.ListingSummary, error) {
	rows, err := s.store.ListVolunteers(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("service/college: listing volunteers: %w", err)
	}
	out := make([]model.ListingSummary, 0, len(rows))
	for _, v := range rows {
		out = append(out, summarize(v.ID, v.Title, v.Content, v.CreatedAt))
	}
	return out, nil
}

func (s *CollegeService) GetVolunteer(ctx context.Context, id int64) (*model.Volunteer, error) {
	return s.store.GetVolunteer(ctx, id)
}

func (s *CollegeService) CreateVolunteer(ctx context.Context, actor *model.User, in VolunteerInput) (*model.Volunteer, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Organization = strings.TrimSpace(in.Organization)
	if err := validatePost(in.Title, in.Content); err != nil {
		return nil, err
	}
	if in.Organization == "" {
		return nil, apperror.ValidationFailed("organization", "organization is required")
	}
	if in.ActivityDate != "" {
		if _, err := time.Parse(activityDateLayout, in.ActivityDate); err != nil {
			return nil, apperror.ValidationFailed("activityDate", "activity date must be a valid YYYY-MM-DD date")
		}
	}

	v := &model.Volunteer{
		AuthorID:     actor.ID,
		Title:        in.Title,
		Content:      in.Content,
		Organization: in.Organization,
		ActivityDate: in.ActivityDate,
	}
	if err := s.store.CreateVolunteer(ctx, v); err != nil {
		return nil, fmt.Errorf("service/college: creating volunteer: %w", err)
	}

	s.logger.Info("volunteer created", slog.Int64("volunteerID", v.ID), slog.Int64("userID", actor.ID))
	return v, nil
}

// ListClubs matches the query against name and description.
func (s *CollegeService) ListClubs(ctx context.Context, query *string) ([]model.ListingSummary, error) {
	rows, err := s.store.ListClubs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("service/college: listing clubs: %w", err)
	}
	out := make([]model.ListingSummary, 0, len(rows))
	for _, c := range rows {
		out = append(out, summarize(c.ID, c.Name, c.Description, c.CreatedAt))
	}
	return out, nil
}

func (s *CollegeService) GetClub(ctx context.Context, id int64) (*model.Club, error) {
	return s.store.GetClub(ctx, id)
}

// CreateClub stores the optional image first and the club second. If the
// club cannot be saved the image is removed again so no orphan is left in
// the bucket.
func (s *CollegeService) CreateClub(ctx context.Context, actor *model.User, in ClubInput, img *storage.Image) (*model.Club, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperror.ValidationFailed("name", "club name is required")
	}
	if utf8.RuneCountInString(in.Name) > MaxTitleLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("club name must be %d characters or less", MaxTitleLength))
	}
	if utf8.RuneCountInString(in.Description) > MaxContentLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxContentLength))
	}
	if img != nil && s.images == nil {
		return nil, apperror.ValidationFailed("image", "image uploads are not enabled on this server")
	}

	club := &model.Club{AuthorID: actor.ID, Name: in.Name, Description: in.Description}

	var uploaded *storage.Object
	if img != nil {
		obj, err := s.images.Put(ctx, clubImagePrefix, img)
		if err != nil {
			return nil, fmt.Errorf("service/college: storing club image: %w", err)
		}
		uploaded = &obj
		club.ImageURL = obj.URL
	}

	if err := s.store.CreateClub(ctx, club); err != nil {
		if uploaded != nil {
			// The request context may already be cancelled.
			if delErr := s.images.Delete(context.WithoutCancel(ctx), uploaded.Key); delErr != nil {
				s.logger.Error("failed to remove orphaned club image",
					slog.String("key", uploaded.Key),
					slog.String("error", delErr.Error()),
				)
			}
		}
		return nil, fmt.Errorf("service/college: creating club: %w", err)
	}

	s.logger.Info("club created", slog.Int64("clubID", club.ID), slog.Int64("userID", actor.ID))
	return club, nil
}

func (s *CollegeService) ListStudies(ctx context.Context, query *string) ([]model.ListingSummary, error) {
	rows, err := s.store.ListStudies(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("service/college: listing studies: %w", err)
	}
	out := make([]model.ListingSummary, 0, len(rows))
	for _, st := range rows {
		out = append(out, summarize(st.ID, st.Title, st.Content, st.CreatedAt))
	}
	return out, nil
}

func (s *CollegeService) GetStudy(ctx context.Context, id int64) (*model.Study, error) {
	return s.store.GetStudy(ctx, id)
}

func (s *CollegeService) CreateStudy(ctx context.Context, actor *model.User, in StudyInput) (*model.Study, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validatePost(in.Title, in.Content); err != nil {
		return nil, err
	}
	if in.Capacity < 1 || in.Capacity > MaxStudyCapacity {
		return nil, apperror.ValidationFailed("capacity",
			fmt.Sprintf("capacity must be between 1 and %d", MaxStudyCapacity))
	}

	st := &model.Study{AuthorID: actor.ID, Title: in.Title, Content: in.Content, Capacity: in.Capacity}
	if err := s.store.CreateStudy(ctx, st); err != nil {
		return nil, fmt.Errorf("service/college: creating study: %w", err)
	}

	s.logger.Info("study created", slog.Int64("studyID", st.ID), slog.Int64("userID", actor.ID))
	return st, nil
}
