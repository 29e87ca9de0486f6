package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/sakif/college-board/internal/apperror"
	"github.com/sakif/college-board/internal/service"
	"github.com/sakif/college-board/internal/storage"
)

// multipartMemory is how much of a multipart form is buffered in memory;
// larger parts spill to temporary files.
const multipartMemory = 8 << 20

// CollegeHandler serves the volunteer, club and study listings.
type CollegeHandler struct {
	college       *service.CollegeService
	maxUploadSize int64
	logger        *slog.Logger
}

// NewCollegeHandler creates a CollegeHandler. maxUploadSize bounds the whole
// multipart body of a club creation request.
func NewCollegeHandler(college *service.CollegeService, maxUploadSize int64, logger *slog.Logger) *CollegeHandler {
	return &CollegeHandler{college: college, maxUploadSize: maxUploadSize, logger: logger}
}

type volunteerRequest struct {
	Title        string `json:"title"        validate:"required,max=200"`
	Content      string `json:"content"      validate:"required,max=20000"`
	Organization string `json:"organization" validate:"required,max=200"`
	ActivityDate string `json:"activityDate" validate:"omitempty,datetime=2006-01-02"`
}

type clubRequest struct {
	Name        string `json:"name"        validate:"required,max=200"`
	Description string `json:"description" validate:"max=20000"`
}

type studyRequest struct {
	Title    string `json:"title"    validate:"required,max=200"`
	Content  string `json:"content"  validate:"required,max=20000"`
	Capacity int    `json:"capacity" validate:"required,min=1,max=1000"`
}

// =========================================================================
// VOLUNTEERS
// =========================================================================

// HTTP: GET /api/volunteers?query=...
func (h *CollegeHandler) HandleListVolunteers(w http.ResponseWriter, r *http.Request) {
	list, err := h.college.ListVolunteers(r.Context(), optionalQuery(r, "query"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, list)
}

// HTTP: GET /api/volunteers/{id}
func (h *CollegeHandler) HandleGetVolunteer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	v, err := h.college.GetVolunteer(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, v)
}

// HTTP: POST /api/volunteers
func (h *CollegeHandler) HandleCreateVolunteer(w http.ResponseWriter, r *http.Request) {
	user, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req volunteerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	v, err := h.college.CreateVolunteer(r.Context(), user, service.VolunteerInput{
		Title:        req.Title,
		Content:      req.Content,
		Organization: req.Organization,
		ActivityDate: req.ActivityDate,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, v)
}

// =========================================================================
// CLUBS
// =========================================================================

// HTTP: GET /api/clubs?query=...
func (h *CollegeHandler) HandleListClubs(w http.ResponseWriter, r *http.Request) {
	list, err := h.college.ListClubs(r.Context(), optionalQuery(r, "query"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, list)
}

// HTTP: GET /api/clubs/{id}
func (h *CollegeHandler) HandleGetClub(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	club, err := h.college.GetClub(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, club)
}

// HandleCreateClub creates a club from a multipart form.
//
// HTTP: POST /api/clubs
// Content-Type: multipart/form-data
//
// PARTS:
//   - request: JSON {"name": "...", "description": "..."}, as a field or a file
//   - image:   optional; must be an image by content, whatever its filename says
func (h *CollegeHandler) HandleCreateClub(w http.ResponseWriter, r *http.Request) {
	user, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.logger, apperror.ValidationFailed("image",
				fmt.Sprintf("upload must be %d bytes or less", h.maxUploadSize)))
			return
		}
		writeError(w, h.logger, apperror.ValidationFailed("body", "request must be multipart/form-data"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	raw, err := requestPart(r.MultipartForm)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req clubRequest
	if err := decodeJSONBytes(raw, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	img, err := imagePart(r.MultipartForm)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	club, err := h.college.CreateClub(r.Context(), user, service.ClubInput{
		Name:        req.Name,
		Description: req.Description,
	}, img)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, club)
}

// requestPart returns the "request" JSON, sent either as a plain field or
// as a file part with Content-Type application/json.
func requestPart(form *multipart.Form) ([]byte, error) {
	if vals := form.Value["request"]; len(vals) > 0 {
		return []byte(vals[0]), nil
	}
	if files := form.File["request"]; len(files) > 0 {
		return readPart(files[0])
	}
	return nil, apperror.ValidationFailed("request", "request part is required")
}

// imagePart returns nil when no image was sent.
func imagePart(form *multipart.Form) (*storage.Image, error) {
	files := form.File["image"]
	if len(files) == 0 || files[0].Size == 0 {
		return nil, nil
	}
	data, err := readPart(files[0])
	if err != nil {
		return nil, err
	}
	img, err := storage.NewImage(data)
	if err != nil {
		if errors.Is(err, storage.ErrNotImage) {
			return nil, apperror.ValidationFailed("image", "image must be a PNG, JPEG, GIF or other image file")
		}
		return nil, err
	}
	return img, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("handler: opening part %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("handler: reading part %s: %w", fh.Filename, err)
	}
	return data, nil
}

// =========================================================================
// STUDIES
// =========================================================================

// HTTP: GET /api/studies?query=...
func (h *CollegeHandler) HandleListStudies(w http.ResponseWriter, r *http.Request) {
	list, err := h.college.ListStudies(r.Context(), optionalQuery(r, "query"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, list)
}

// HTTP: GET /api/studies/{id}
func (h *CollegeHandler) HandleGetStudy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	study, err := h.college.GetStudy(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, study)
}

// HTTP: POST /api/studies
func (h *CollegeHandler) HandleCreateStudy(w http.ResponseWriter, r *http.Request) {
	user, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req studyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	study, err := h.college.CreateStudy(r.Context(), user, service.StudyInput{
		Title:    req.Title,
		Content:  req.Content,
		Capacity: req.Capacity,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, study)
}
