package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/notes-api/internal/api/shared"
	"github.com/phrazzld/notes-api/internal/platform/logger"
	"github.com/phrazzld/notes-api/internal/service"
)

// NoteHandler handles note-related HTTP requests
type NoteHandler struct {
	noteService service.NoteService
	logger      *slog.Logger
}

// NewNoteHandler creates a new NoteHandler.
// If logger is nil, a default logger will be used.
func NewNoteHandler(noteService service.NoteService, logger *slog.Logger) *NoteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoteHandler{
		noteService: noteService,
		logger:      logger.With("component", "note_handler"),
	}
}

// Routes mounts the note endpoints on r.
func (h *NoteHandler) Routes(r chi.Router) {
	r.Post("/", h.CreateNote)
	r.Get("/", h.ListNotes)
	r.Get("/{id}", h.GetNote)
	r.Put("/{id}", h.UpdateNote)
	r.Delete("/{id}", h.DeleteNote)
}

// CreateNote handles POST /notes requests
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	req, err := decodeNoteRequest(w, r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	note, err := h.noteService.CreateNote(r.Context(), deref(req.Title), deref(req.Content), deref(req.CreatedDate))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Info("note created", slog.Int64("note_id", note.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, noteToResponse(note))
}

// ListNotes handles GET /notes requests. The optional q parameter filters
// the notes by fuzzy match.
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.noteService.ListNotes(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, notesToResponse(notes))
}

// GetNote handles GET /notes/{id} requests
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := getPathNoteID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	note, err := h.noteService.GetNote(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, noteToResponse(note))
}

// UpdateNote handles PUT /notes/{id} requests. Only the fields present in
// the body are changed.
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := getPathNoteID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	req, err := decodeNoteRequest(w, r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	note, err := h.noteService.UpdateNote(r.Context(), id, req.Patch())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Info("note updated", slog.Int64("note_id", id))
	shared.RespondWithJSON(w, r, http.StatusOK, noteToResponse(note))
}

// DeleteNote handles DELETE /notes/{id} requests
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := getPathNoteID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if err := h.noteService.DeleteNote(r.Context(), id); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Info("note deleted", slog.Int64("note_id", id))
	shared.RespondNoContent(w)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
