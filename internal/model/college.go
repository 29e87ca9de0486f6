package model

import "time"

// Volunteer is a volunteering opportunity posted by a user.
type Volunteer struct {
	ID           int64     `json:"id"           db:"id"`
	AuthorID     int64     `json:"authorId"     db:"author_id"`
	Title        string    `json:"title"        db:"title"`
	Content      string    `json:"content"      db:"content"`
	Organization string    `json:"organization" db:"organization"`
	ActivityDate string    `json:"activityDate" db:"activity_date"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
}

// Club is a club or small-group listing; ImageURL is empty when no image
// was uploaded.
type Club struct {
	ID          int64     `json:"id"          db:"id"`
	AuthorID    int64     `json:"authorId"    db:"author_id"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"imageUrl"    db:"image_url"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}

// Study is a study-group listing with a member capacity.
type Study struct {
	ID        int64     `json:"id"        db:"id"`
	AuthorID  int64     `json:"authorId"  db:"author_id"`
	Title     string    `json:"title"     db:"title"`
	Content   string    `json:"content"   db:"content"`
	Capacity  int       `json:"capacity"  db:"capacity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ListingSummary is the list projection shared by the three listing kinds.
type ListingSummary struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
}
