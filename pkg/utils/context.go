package utils

import (
	"context"
)

type contextKey string

const (
	RequestIDKey        contextKey = "request_id"
	ValidationErrorsKey contextKey = "validation_errors"
	PayloadKey          contextKey = "payload"
)

// FieldError is one problem found with one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the request-scoped list validators append to.
type ValidationErrors struct {
	errs []FieldError
}

func (v *ValidationErrors) Add(field, message string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
}

// AddAll appends every entry of a ValidateStruct result.
func (v *ValidationErrors) AddAll(errs map[string]string) {
	for field, msg := range errs {
		v.Add(field, msg)
	}
}

func (v *ValidationErrors) Len() int {
	return len(v.errs)
}

// Map returns field -> message. The first error recorded for a field wins.
func (v *ValidationErrors) Map() map[string]string {
	out := make(map[string]string, len(v.errs))
	for _, e := range v.errs {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

func WithValidationErrors(ctx context.Context) (context.Context, *ValidationErrors) {
	errs := &ValidationErrors{}
	return context.WithValue(ctx, ValidationErrorsKey, errs), errs
}

// GetValidationErrors returns the list installed on ctx. It returns a fresh,
// detached list when none was installed so callers never need a nil check.
func GetValidationErrors(ctx context.Context) *ValidationErrors {
	if errs, ok := ctx.Value(ValidationErrorsKey).(*ValidationErrors); ok {
		return errs
	}
	return &ValidationErrors{}
}

func SetPayload(ctx context.Context, payload any) context.Context {
	return context.WithValue(ctx, PayloadKey, payload)
}

// GetPayload returns the decoded body stored by a validator step.
func GetPayload[T any](ctx context.Context) (T, bool) {
	payload, ok := ctx.Value(PayloadKey).(T)
	return payload, ok
}

func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(RequestIDKey).(string)
	return id, ok
}
