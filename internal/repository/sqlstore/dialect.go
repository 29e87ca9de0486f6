package sqlstore

import (
	"fmt"
	"strings"
)

// dialect holds what differs between SQLite and Postgres.
type dialect struct {
	// replacer expands the {{...}} placeholders in schemaTemplate.
	replacer *strings.Replacer
	// containsFunc is a two-argument SQL function returning the 1-based
	// position of the needle, 0 when absent. Unlike LIKE it is
	// case-sensitive on both drivers and has no wildcard characters.
	containsFunc string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		replacer: strings.NewReplacer(
			"{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
			"{{ref}}", "INTEGER",
			"{{ts}}", "DATETIME",
		),
		containsFunc: "instr",
	},
	DriverPostgres: {
		replacer: strings.NewReplacer(
			"{{pk}}", "BIGSERIAL PRIMARY KEY",
			"{{ref}}", "BIGINT",
			"{{ts}}", "TIMESTAMPTZ",
		),
		containsFunc: "strpos",
	},
}

// contains renders "column contains ?" for this dialect.
func (d dialect) contains(column string) string {
	return fmt.Sprintf("%s(%s, ?) > 0", d.containsFunc, column)
}

func (d dialect) schema() []string {
	stmts := make([]string, len(schemaTemplate))
	for i, s := range schemaTemplate {
		stmts[i] = d.replacer.Replace(s)
	}
	return stmts
}

// schemaTemplate is applied in order; child tables reference their parents,
// and deleting a board cascades to its comments, likes and scraps.
var schemaTemplate = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            {{pk}},
		email         TEXT NOT NULL UNIQUE,
		username      TEXT NOT NULL,
		role          TEXT NOT NULL,
		password_hash TEXT NOT NULL DEFAULT '',
		created_at    {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS boards (
		id         {{pk}},
		author_id  {{ref}} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title      TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_boards_author_id ON boards(author_id)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id         {{pk}},
		board_id   {{ref}} NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
		author_id  {{ref}} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content    TEXT NOT NULL,
		created_at {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_board_id ON comments(board_id)`,
	`CREATE TABLE IF NOT EXISTS likes (
		id       {{pk}},
		user_id  {{ref}} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		board_id {{ref}} NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
		UNIQUE (user_id, board_id)
	)`,
	`CREATE TABLE IF NOT EXISTS scraps (
		id       {{pk}},
		user_id  {{ref}} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		board_id {{ref}} NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
		UNIQUE (user_id, board_id)
	)`,
	`CREATE TABLE IF NOT EXISTS volunteers (
		id            {{pk}},
		author_id     {{ref}} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title         TEXT NOT NULL,
		content       TEXT NOT NULL,
		organization  TEXT NOT NULL DEFAULT '',
		activity_date TEXT NOT NULL DEFAULT '',
		created_at    {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS clubs (
		id          {{pk}},
		author_id   {{ref}} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		description TEXT NOT NULL,
		image_url   TEXT NOT NULL DEFAULT '',
		created_at  {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS studies (
		id         {{pk}},
		author_id  {{ref}} NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title      TEXT NOT NULL,
		content    TEXT NOT NULL,
		capacity   INTEGER NOT NULL DEFAULT 0,
		created_at {{ts}} NOT NULL
	)`,
}
