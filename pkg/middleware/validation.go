package middleware

import (
	"net/http"

	"movie-comments/pkg/utils"
)

// Collect installs an empty request-scoped validation error list. Validator
// steps that run after it append to that list instead of responding.
func Collect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := utils.WithValidationErrors(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CheckValid stops the chain with 400 when any validator recorded an error.
func CheckValid(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errs := utils.GetValidationErrors(r.Context())
		if errs.Len() > 0 {
			fields := errs.Map()
			for field := range fields {
				ValidationFailures.WithLabelValues(field).Inc()
			}
			utils.ResponseBadRequest(w, "Validation failed", fields)
			return
		}
		next.ServeHTTP(w, r)
	})
}
