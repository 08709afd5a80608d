package adaptor

import (
	"net/http"
	"strconv"
	"strings"

	"movie-comments/internal/dto/request"
	"movie-comments/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// Validator steps. Each one records problems on the request-scoped list
// and always calls next; middleware.CheckValid decides whether to stop.

// ValidateID requires the {id} path parameter to be a positive integer.
func ValidateID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := pathID(r); err != nil {
			utils.GetValidationErrors(r.Context()).Add("id", "Must be a positive integer")
		}
		next.ServeHTTP(w, r)
	})
}

// ValidateUser requires a non-blank {user} path parameter.
func ValidateUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(chi.URLParam(r, "user")) == "" {
			utils.GetValidationErrors(r.Context()).Add("user", "This field is required")
		}
		next.ServeHTTP(w, r)
	})
}

// ValidateStore requires movie_id, user, title and contents. The decoded
// request is stored on the context for the following steps.
func ValidateStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errs := utils.GetValidationErrors(r.Context())

		fields, ok := decodeFields(r, errs)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		if _, present, err := fields.ParseMovieID(); present && err != nil {
			errs.Add("movie_id", "Must be an integer")
		}

		req := fields.Store()
		errs.AddAll(utils.ValidateStruct(req))

		next.ServeHTTP(w, r.WithContext(utils.SetPayload(r.Context(), &req)))
	})
}

// ValidateUpdate checks the fields present in a partial update and requires
// at least one of them.
func ValidateUpdate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errs := utils.GetValidationErrors(r.Context())

		fields, ok := decodeFields(r, errs)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		if _, present, err := fields.ParseMovieID(); present && err != nil {
			errs.Add("movie_id", "Must be an integer")
		}

		req := fields.Update()
		if len(fields) == 0 {
			errs.Add("body", "At least one of movie_id, user, title, contents is required")
		}
		errs.AddAll(utils.ValidateStruct(req))

		next.ServeHTTP(w, r.WithContext(utils.SetPayload(r.Context(), &req)))
	})
}

func decodeFields(r *http.Request, errs *utils.ValidationErrors) (request.CommentFields, bool) {
	fields, err := request.DecodeCommentFields(r)
	if err != nil {
		errs.Add("body", "Invalid request body")
		return nil, false
	}
	return fields, true
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}
