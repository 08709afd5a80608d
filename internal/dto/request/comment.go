package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const maxBodyBytes = 1 << 20

// ErrInvalidBody means the body could not be decoded at all.
var ErrInvalidBody = errors.New("invalid request body")

// StoreCommentRequest is the body of POST /api/v1/comments
type StoreCommentRequest struct {
	MovieID  int64  `json:"movie_id" validate:"required,gt=0"`
	User     string `json:"user" validate:"required,notblank,max=255"`
	Title    string `json:"title" validate:"required,notblank,max=255"`
	Contents string `json:"contents" validate:"required,notblank"`
}

// UpdateCommentRequest is the body of PATCH /api/v1/comments/{id}. Nil fields are left unchanged.
type UpdateCommentRequest struct {
	MovieID  *int64  `json:"movie_id,omitempty" validate:"omitempty,gt=0"`
	User     *string `json:"user,omitempty" validate:"omitempty,notblank,max=255"`
	Title    *string `json:"title,omitempty" validate:"omitempty,notblank,max=255"`
	Contents *string `json:"contents,omitempty" validate:"omitempty,notblank"`
}

func (r UpdateCommentRequest) Empty() bool {
	return r.MovieID == nil && r.User == nil && r.Title == nil && r.Contents == nil
}

// CommentFields is the raw, untyped view of a comment body. A key that was
// not sent is absent from the map.
type CommentFields map[string]string

// DecodeCommentFields reads a JSON or form-encoded body. Numbers in JSON are
// kept in their textual form so movie_id is parsed the same way for both.
func DecodeCommentFields(r *http.Request) (CommentFields, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
		return fieldsFromForm(r.PostForm), nil
	default:
		return fieldsFromJSON(io.LimitReader(r.Body, maxBodyBytes))
	}
}

func fieldsFromForm(form url.Values) CommentFields {
	fields := CommentFields{}
	for _, key := range []string{"movie_id", "user", "title", "contents"} {
		if vals, ok := form[key]; ok && len(vals) > 0 {
			fields[key] = vals[0]
		}
	}
	return fields
}

func fieldsFromJSON(body io.Reader) (CommentFields, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(body)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return CommentFields{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	fields := CommentFields{}
	for _, key := range []string{"movie_id", "user", "title", "contents"} {
		msg, ok := raw[key]
		if !ok || string(msg) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			fields[key] = s
			continue
		}
		fields[key] = string(msg)
	}
	return fields, nil
}

// ParseMovieID converts the textual movie_id. ok is false when it is absent.
func (f CommentFields) ParseMovieID() (id int64, ok bool, err error) {
	raw, ok := f["movie_id"]
	if !ok {
		return 0, false, nil
	}
	id, err = strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, true, fmt.Errorf("movie_id %q is not an integer", raw)
	}
	return id, true, nil
}

// Store builds the create payload. A malformed movie_id is left as zero so
// that validation reports it alongside any other missing field.
func (f CommentFields) Store() StoreCommentRequest {
	id, _, _ := f.ParseMovieID()
	return StoreCommentRequest{
		MovieID:  id,
		User:     strings.TrimSpace(f["user"]),
		Title:    strings.TrimSpace(f["title"]),
		Contents: strings.TrimSpace(f["contents"]),
	}
}

// Update builds the partial payload from the keys that were sent.
func (f CommentFields) Update() UpdateCommentRequest {
	var req UpdateCommentRequest
	if id, ok, err := f.ParseMovieID(); ok && err == nil {
		req.MovieID = &id
	}
	req.User = f.trimmed("user")
	req.Title = f.trimmed("title")
	req.Contents = f.trimmed("contents")
	return req
}

func (f CommentFields) trimmed(key string) *string {
	v, ok := f[key]
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	return &v
}
