package api

import "github.com/phrazzld/notes-api/internal/domain"

// NoteRequest holds the note fields accepted by create and update. A nil
// field was absent from the request body.
type NoteRequest struct {
	Title       *string `json:"title"       validate:"omitempty,max=255"`
	Content     *string `json:"content"`
	CreatedDate *string `json:"createdDate"`
}

// Patch converts the request into a domain.NotePatch.
func (req NoteRequest) Patch() domain.NotePatch {
	return domain.NotePatch{
		Title:       req.Title,
		Content:     req.Content,
		CreatedDate: req.CreatedDate,
	}
}

// NoteResponse is the JSON representation of a note. Enrichment fields are
// always present; a note that has not been enriched reports "" and 0.
type NoteResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Summary     string  `json:"summary"`
	Sentiment   float64 `json:"sentiment"`
	CreatedDate string  `json:"createdDate"`
}

// noteToResponse converts a domain.Note to a NoteResponse
func noteToResponse(note *domain.Note) NoteResponse {
	resp := NoteResponse{
		ID:          note.ID,
		Title:       note.Title,
		Content:     note.Content,
		CreatedDate: note.CreatedDate,
	}
	if note.Summary != nil {
		resp.Summary = *note.Summary
	}
	if note.Sentiment != nil {
		resp.Sentiment = *note.Sentiment
	}
	return resp
}

func notesToResponse(notes []*domain.Note) []NoteResponse {
	resp := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		resp = append(resp, noteToResponse(n))
	}
	return resp
}
