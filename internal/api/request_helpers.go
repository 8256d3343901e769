package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/notes-api/internal/api/shared"
	"github.com/phrazzld/notes-api/internal/service"
)

// getPathNoteID extracts the note ID from the URL path parameters.
// Anything that is not a positive integer cannot name a note, so it is
// reported as service.ErrNoteNotFound.
func getPathNoteID(r *http.Request, paramName string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, paramName), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.ErrNoteNotFound
	}
	return id, nil
}

// decodeNoteRequest reads the note fields from the request body. A body that
// is not a JSON object counts as {}. Unknown members, including a client
// supplied id, are ignored.
func decodeNoteRequest(w http.ResponseWriter, r *http.Request) (NoteRequest, error) {
	var req NoteRequest

	fields, err := shared.DecodeObject(w, r)
	if err != nil {
		return req, err
	}

	if req.Title, err = shared.StringField(fields, "title"); err != nil {
		return req, err
	}
	if req.Content, err = shared.StringField(fields, "content"); err != nil {
		return req, err
	}
	if req.CreatedDate, err = shared.StringField(fields, "createdDate"); err != nil {
		return req, err
	}

	if err := shared.ValidateRequest(req); err != nil {
		return req, err
	}
	return req, nil
}
