package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/notes-api/internal/api/shared"
	"github.com/phrazzld/notes-api/internal/domain"
	"github.com/phrazzld/notes-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNoteService is a function-field implementation of service.NoteService.
type fakeNoteService struct {
	createFn func(ctx context.Context, title, content, createdDate string) (*domain.Note, error)
	getFn    func(ctx context.Context, id int64) (*domain.Note, error)
	listFn   func(ctx context.Context, query string) ([]*domain.Note, error)
	updateFn func(ctx context.Context, id int64, patch domain.NotePatch) (*domain.Note, error)
	deleteFn func(ctx context.Context, id int64) error
}

var _ service.NoteService = (*fakeNoteService)(nil)

func (f *fakeNoteService) CreateNote(ctx context.Context, title, content, createdDate string) (*domain.Note, error) {
	return f.createFn(ctx, title, content, createdDate)
}

func (f *fakeNoteService) GetNote(ctx context.Context, id int64) (*domain.Note, error) {
	return f.getFn(ctx, id)
}

func (f *fakeNoteService) ListNotes(ctx context.Context, query string) ([]*domain.Note, error) {
	return f.listFn(ctx, query)
}

func (f *fakeNoteService) UpdateNote(ctx context.Context, id int64, patch domain.NotePatch) (*domain.Note, error) {
	return f.updateFn(ctx, id, patch)
}

func (f *fakeNoteService) DeleteNote(ctx context.Context, id int64) error {
	return f.deleteFn(ctx, id)
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func newTestRouter(svc service.NoteService) http.Handler {
	h := NewNoteHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Route("/notes", h.Routes)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, rd))
	return w
}

// oversizedBody is a valid JSON object one byte larger than shared.MaxBodyBytes.
func oversizedBody() string {
	prefix, suffix := `{"title":"T","content":"`, `"}`
	return prefix + strings.Repeat("a", shared.MaxBodyBytes+1-len(prefix)-len(suffix)) + suffix
}

func TestCreateNote(t *testing.T) {
	t.Run("returns 201 with the full note", func(t *testing.T) {
		var gotTitle, gotContent, gotDate string
		svc := &fakeNoteService{
			createFn: func(_ context.Context, title, content, createdDate string) (*domain.Note, error) {
				gotTitle, gotContent, gotDate = title, content, createdDate
				return &domain.Note{ID: 1, Title: title, Content: content, CreatedDate: createdDate}, nil
			},
		}

		w := do(t, newTestRouter(svc), http.MethodPost, "/notes",
			`{"id":99,"title":"T","content":"hello world","createdDate":"2024-01-01T00:00:00Z"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t,
			`{"id":1,"title":"T","content":"hello world","summary":"","sentiment":0,"createdDate":"2024-01-01T00:00:00Z"}`,
			w.Body.String())
		assert.Equal(t, "T", gotTitle)
		assert.Equal(t, "hello world", gotContent)
		assert.Equal(t, "2024-01-01T00:00:00Z", gotDate)
	})

	for _, body := range []string{"", "not json", "[1,2]", `"text"`, "null"} {
		t.Run("non-object body "+body, func(t *testing.T) {
			called := false
			svc := &fakeNoteService{
				createFn: func(_ context.Context, title, content, createdDate string) (*domain.Note, error) {
					called = true
					assert.Empty(t, title)
					assert.Empty(t, content)
					assert.Empty(t, createdDate)
					return &domain.Note{ID: 2, CreatedDate: "2025-01-01T00:00:00Z"}, nil
				},
			}

			w := do(t, newTestRouter(svc), http.MethodPost, "/notes", body)
			assert.Equal(t, http.StatusCreated, w.Code)
			assert.True(t, called)
		})
	}

	t.Run("null fields become empty", func(t *testing.T) {
		svc := &fakeNoteService{
			createFn: func(_ context.Context, title, content, _ string) (*domain.Note, error) {
				assert.Equal(t, "", title)
				assert.Equal(t, "body", content)
				return &domain.Note{ID: 3, Content: content}, nil
			},
		}

		w := do(t, newTestRouter(svc), http.MethodPost, "/notes", `{"title":null,"content":"body"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("wrong field type is 400", func(t *testing.T) {
		svc := &fakeNoteService{}

		w := do(t, newTestRouter(svc), http.MethodPost, "/notes", `{"title":5}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Invalid title: must be a string", resp.Error)
	})

	t.Run("title too long is 400", func(t *testing.T) {
		w := do(t, newTestRouter(&fakeNoteService{}), http.MethodPost, "/notes",
			`{"title":"`+strings.Repeat("a", 256)+`"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid title")
	})

	t.Run("conflict is 409", func(t *testing.T) {
		svc := &fakeNoteService{
			createFn: func(context.Context, string, string, string) (*domain.Note, error) {
				return nil, service.ErrNoteConflict
			},
		}

		w := do(t, newTestRouter(svc), http.MethodPost, "/notes", `{}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("body over the limit is 413", func(t *testing.T) {
		svc := &fakeNoteService{
			createFn: func(context.Context, string, string, string) (*domain.Note, error) {
				t.Fatal("CreateNote must not be called for an oversized body")
				return nil, nil
			},
		}

		w := do(t, newTestRouter(svc), http.MethodPost, "/notes", oversizedBody())
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Error, "Request body too large")
	})

	t.Run("store fault is 500 without details", func(t *testing.T) {
		svc := &fakeNoteService{
			createFn: func(context.Context, string, string, string) (*domain.Note, error) {
				return nil, &service.NoteServiceError{Operation: "create_note", Message: "failed", Err: errors.New("database is locked")}
			},
		}

		w := do(t, newTestRouter(svc), http.MethodPost, "/notes", `{}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "locked")
	})
}

func TestListNotes(t *testing.T) {
	t.Run("empty list is []", func(t *testing.T) {
		svc := &fakeNoteService{
			listFn: func(context.Context, string) ([]*domain.Note, error) { return []*domain.Note{}, nil },
		}

		w := do(t, newTestRouter(svc), http.MethodGet, "/notes", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("passes query and keeps order", func(t *testing.T) {
		var gotQuery string
		svc := &fakeNoteService{
			listFn: func(_ context.Context, q string) ([]*domain.Note, error) {
				gotQuery = q
				return []*domain.Note{
					{ID: 2, Title: "b", Summary: strPtr("sum"), Sentiment: floatPtr(0.8)},
					{ID: 1, Title: "a"},
				}, nil
			},
		}

		w := do(t, newTestRouter(svc), http.MethodGet, "/notes?q=gro", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "gro", gotQuery)

		var resp []NoteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.Equal(t, NoteResponse{ID: 2, Title: "b", Summary: "sum", Sentiment: 0.8}, resp[0])
		assert.Equal(t, int64(1), resp[1].ID)
	})

	t.Run("store fault is 500", func(t *testing.T) {
		svc := &fakeNoteService{
			listFn: func(context.Context, string) ([]*domain.Note, error) { return nil, errors.New("boom") },
		}

		w := do(t, newTestRouter(svc), http.MethodGet, "/notes", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGetNote(t *testing.T) {
	svc := &fakeNoteService{
		getFn: func(_ context.Context, id int64) (*domain.Note, error) {
			if id == 1 {
				return &domain.Note{ID: 1, Title: "T"}, nil
			}
			return nil, service.ErrNoteNotFound
		},
	}
	router := newTestRouter(svc)

	w := do(t, router, http.MethodGet, "/notes/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"T"`)

	for _, target := range []string{"/notes/2", "/notes/abc", "/notes/-1", "/notes/0", "/notes/99999999999999999999"} {
		w := do(t, router, http.MethodGet, target, "")
		assert.Equal(t, http.StatusNotFound, w.Code, target)
		assert.Contains(t, w.Body.String(), "Note not found", target)
	}
}

func TestUpdateNote(t *testing.T) {
	t.Run("applies present fields only", func(t *testing.T) {
		var gotPatch domain.NotePatch
		svc := &fakeNoteService{
			updateFn: func(_ context.Context, id int64, patch domain.NotePatch) (*domain.Note, error) {
				gotPatch = patch
				return &domain.Note{ID: id, Title: "new", Content: ""}, nil
			},
		}

		w := do(t, newTestRouter(svc), http.MethodPut, "/notes/4", `{"title":"new","content":null,"id":7}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"id":4`)

		require.NotNil(t, gotPatch.Title)
		assert.Equal(t, "new", *gotPatch.Title)
		require.NotNil(t, gotPatch.Content)
		assert.Equal(t, "", *gotPatch.Content)
		assert.Nil(t, gotPatch.CreatedDate)
	})

	t.Run("missing note is 404", func(t *testing.T) {
		svc := &fakeNoteService{
			updateFn: func(context.Context, int64, domain.NotePatch) (*domain.Note, error) {
				return nil, service.ErrNoteNotFound
			},
		}

		w := do(t, newTestRouter(svc), http.MethodPut, "/notes/4", `{}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-integer id is 404", func(t *testing.T) {
		w := do(t, newTestRouter(&fakeNoteService{}), http.MethodPut, "/notes/x", `{}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("wrong field type is 400", func(t *testing.T) {
		w := do(t, newTestRouter(&fakeNoteService{}), http.MethodPut, "/notes/4", `{"content":["a"]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("body over the limit is 413", func(t *testing.T) {
		svc := &fakeNoteService{
			updateFn: func(context.Context, int64, domain.NotePatch) (*domain.Note, error) {
				t.Fatal("UpdateNote must not be called for an oversized body")
				return nil, nil
			},
		}

		w := do(t, newTestRouter(svc), http.MethodPut, "/notes/4", oversizedBody())
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestDeleteNote(t *testing.T) {
	svc := &fakeNoteService{
		deleteFn: func(_ context.Context, id int64) error {
			if id == 1 {
				return nil
			}
			return service.ErrNoteNotFound
		},
	}
	router := newTestRouter(svc)

	w := do(t, router, http.MethodDelete, "/notes/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(t, router, http.MethodDelete, "/notes/2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodDelete, "/notes/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
