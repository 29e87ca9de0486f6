package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/college-board/internal/apperror"
	"github.com/sakif/college-board/internal/model"
	"github.com/sakif/college-board/internal/service"
)

// BoardHandler serves the community board: posts, comments, likes and
// scraps. Every route runs behind RequireAuth; the acting user comes from
// the request context and is passed to the service explicitly.
type BoardHandler struct {
	boards *service.BoardService
	logger *slog.Logger
}

func NewBoardHandler(boards *service.BoardService, logger *slog.Logger) *BoardHandler {
	return &BoardHandler{boards: boards, logger: logger}
}

type boardRequest struct {
	Title   string `json:"title"   validate:"required,max=200"`
	Content string `json:"content" validate:"required,max=20000"`
}

type commentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// HandleList returns board summaries, newest first.
//
// HTTP: GET /api/boards?category=OWN&query=exam
//
// A non-empty query takes precedence over the category. An absent category
// means ALL; an unknown one is a 400.
func (h *BoardHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var category *model.BoardCategory
	if raw := optionalQuery(r, "category"); raw != nil {
		c, ok := model.ParseBoardCategory(*raw)
		if !ok {
			writeError(w, h.logger, apperror.ValidationFailed("category",
				"category must be one of ALL, OWN, COMMENTED, SCRAPPED"))
			return
		}
		category = &c
	}

	boards, err := h.boards.List(r.Context(), user, category, optionalQuery(r, "query"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, boards)
}

// HandleGet returns one board with counters and comments.
//
// HTTP: GET /api/boards/{boardID}
func (h *BoardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, boardID, ok := h.boardRoute(w, r)
	if !ok {
		return
	}

	detail, err := h.boards.Detail(r.Context(), user, boardID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, detail)
}

// HandleCreate posts a new board.
//
// HTTP: POST /api/boards
// Request body: {"title": "...", "content": "..."}
func (h *BoardHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req boardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	board, err := h.boards.Create(r.Context(), user, req.Title, req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, board)
}

// HandleUpdate replaces title and content. Author only.
//
// HTTP: PUT /api/boards/{boardID}
func (h *BoardHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, boardID, ok := h.boardRoute(w, r)
	if !ok {
		return
	}

	var req boardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	board, err := h.boards.Update(r.Context(), user, boardID, req.Title, req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, board)
}

// HandleDelete removes a board with its comments, likes and scraps. Author only.
//
// HTTP: DELETE /api/boards/{boardID}
// Response: 204 No Content
func (h *BoardHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, boardID, ok := h.boardRoute(w, r)
	if !ok {
		return
	}

	if err := h.boards.Delete(r.Context(), user, boardID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCreateComment adds a comment to a board.
//
// HTTP: POST /api/boards/{boardID}/comments
func (h *BoardHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	user, boardID, ok := h.boardRoute(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	comment, err := h.boards.AddComment(r.Context(), user, boardID, req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, comment)
}

// HandleUpdateComment edits a comment. A comment that belongs to another
// board is a 404.
//
// HTTP: PUT /api/boards/{boardID}/comments/{commentID}
func (h *BoardHandler) HandleUpdateComment(w http.ResponseWriter, r *http.Request) {
	user, boardID, ok := h.boardRoute(w, r)
	if !ok {
		return
	}
	commentID, err := pathID(r, "commentID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	comment, err := h.boards.UpdateComment(r.Context(), user, boardID, commentID, req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, comment)
}

// HandleDeleteComment removes a comment.
//
// HTTP: DELETE /api/boards/{boardID}/comments/{commentID}
func (h *BoardHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	user, boardID, ok := h.boardRoute(w, r)
	if !ok {
		return
	}
	commentID, err := pathID(r, "commentID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.boards.DeleteComment(r.Context(), user, boardID, commentID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleLike records a like. Liking twice is a 409.
//
// HTTP: POST /api/boards/{boardID}/likes
func (h *BoardHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	user, boardID, ok := h.boardRoute(w, r)
	if !ok {
		return
	}

	like, err := h.boards.Like(r.Context(), user, boardID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, like)
}

// HandleUnlike removes the actor's like if there is one.
//
// HTTP: DELETE /api/boards/{boardID}/likes
func (h *BoardHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	user, boardID, ok := h.boardRoute(w, r)
	if !ok {
		return
	}

	if err := h.boards.Unlike(r.Context(), user, boardID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleScrap bookmarks a board for the actor.
//
// HTTP: POST /api/boards/{boardID}/scraps
func (h *BoardHandler) HandleScrap(w http.ResponseWriter, r *http.Request) {
	user, boardID, ok := h.boardRoute(w, r)
	if !ok {
		return
	}

	scrap, err := h.boards.Scrap(r.Context(), user, boardID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, scrap)
}

// HTTP: DELETE /api/boards/{boardID}/scraps
func (h *BoardHandler) HandleUnscrap(w http.ResponseWriter, r *http.Request) {
	user, boardID, ok := h.boardRoute(w, r)
	if !ok {
		return
	}

	if err := h.boards.Unscrap(r.Context(), user, boardID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// boardRoute resolves the actor and {boardID}, answering the request itself
// when either is missing.
func (h *BoardHandler) boardRoute(w http.ResponseWriter, r *http.Request) (*model.User, int64, bool) {
	user, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return nil, 0, false
	}
	boardID, err := pathID(r, "boardID")
	if err != nil {
		writeError(w, h.logger, err)
		return nil, 0, false
	}
	return user, boardID, true
}
