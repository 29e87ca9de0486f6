package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sakif/college-board/internal/apperror"
	"github.com/sakif/college-board/internal/auth"
	"github.com/sakif/college-board/internal/model"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// validate reports field errors under their JSON names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads the body into dst and runs its validate tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return invalidBody(err)
	}
	return validateStruct(dst)
}

// decodeJSONBytes is decodeJSON for a payload already in memory, such as
// the "request" part of a multipart form.
func decodeJSONBytes(data []byte, dst any) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return invalidBody(err)
	}
	return validateStruct(dst)
}

func invalidBody(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.ValidationFailed("body", "request body is too large")
	}
	if errors.Is(err, io.EOF) {
		return apperror.ValidationFailed("body", "request body is required")
	}
	return apperror.ValidationFailed("body", "request body is not valid JSON")
}

// validateStruct converts the first validator failure into a field error.
func validateStruct(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("handler: validating request: %w", err)
	}
	fe := fieldErrs[0]
	return apperror.ValidationFailed(fe.Field(), fieldMessage(fe))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "datetime":
		return fe.Field() + " must be a date in YYYY-MM-DD form"
	}
	return fe.Field() + " is invalid"
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed(name, fmt.Sprintf("%s must be a positive integer, got %q", name, raw))
	}
	return id, nil
}

// optionalQuery distinguishes an absent parameter (nil) from an empty one.
func optionalQuery(r *http.Request, name string) *string {
	q := r.URL.Query()
	if !q.Has(name) {
		return nil
	}
	v := q.Get(name)
	return &v
}

// actor returns the user RequireAuth resolved. Routes using it are always
// mounted behind RequireAuth.
func actor(r *http.Request) (*model.User, error) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return nil, apperror.Unauthenticated("valid authentication required")
	}
	return user, nil
}
