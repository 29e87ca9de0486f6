package model

import (
	"strings"
	"time"
)

// Board is a community post. Only its author may update or delete it.
type Board struct {
	ID        int64     `json:"id"        db:"id"`
	AuthorID  int64     `json:"authorId"  db:"author_id"`
	Title     string    `json:"title"     db:"title"`
	Content   string    `json:"content"   db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// BoardListing is a board row as returned by a listing query, with the
// aggregate the summary needs.
type BoardListing struct {
	Board
	CommentCount int `db:"comment_count"`
}

// BoardSummary is the projection returned by the board listing endpoint.
type BoardSummary struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	CreatedAt    time.Time `json:"createdAt"`
	CommentCount int       `json:"commentCount"`
}

// BoardDetail is a single board with counters, author and comments.
// Liked and Scrapped are relative to the user who asked.
type BoardDetail struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Content      string          `json:"content"`
	LikeCount    int             `json:"likeCount"`
	CommentCount int             `json:"commentCount"`
	ScrapCount   int             `json:"scrapCount"`
	CreatedAt    time.Time       `json:"createdAt"`
	AuthorID     int64           `json:"authorId"`
	AuthorName   string          `json:"authorName"`
	Liked        bool            `json:"liked"`
	Scrapped     bool            `json:"scrapped"`
	Comments     []CommentDetail `json:"comments"`
}

// Comment belongs to exactly one board. Only its author may change it.
type Comment struct {
	ID        int64     `json:"id"        db:"id"`
	BoardID   int64     `json:"boardId"   db:"board_id"`
	AuthorID  int64     `json:"authorId"  db:"author_id"`
	Content   string    `json:"content"   db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CommentDetail is a comment joined with its author's username.
type CommentDetail struct {
	Comment
	AuthorName string `json:"authorName" db:"author_name"`
}

// Like and Scrap are join rows; the pair (UserID, BoardID) is unique.
type Like struct {
	ID      int64 `json:"id"      db:"id"`
	UserID  int64 `json:"userId"  db:"user_id"`
	BoardID int64 `json:"boardId" db:"board_id"`
}

type Scrap struct {
	ID      int64 `json:"id"      db:"id"`
	UserID  int64 `json:"userId"  db:"user_id"`
	BoardID int64 `json:"boardId" db:"board_id"`
}

// BoardCategory selects which boards a listing shows relative to the actor.
type BoardCategory string

const (
	CategoryAll       BoardCategory = "ALL"
	CategoryOwn       BoardCategory = "OWN"
	CategoryCommented BoardCategory = "COMMENTED"
	CategoryScrapped  BoardCategory = "SCRAPPED"
)

// ParseBoardCategory accepts the category names case-insensitively.
func ParseBoardCategory(s string) (BoardCategory, bool) {
	switch c := BoardCategory(strings.ToUpper(strings.TrimSpace(s))); c {
	case CategoryAll, CategoryOwn, CategoryCommented, CategoryScrapped:
		return c, true
	}
	return "", false
}

// FirstLine returns content up to, not including, the first '\n'.
func FirstLine(content string) string {
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		return content[:i]
	}
	return content
}
