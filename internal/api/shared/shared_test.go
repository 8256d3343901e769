package shared

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/notes-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	withTrace := SetTraceID(ctx)
	traceID := GetTraceID(withTrace)
	_, err := uuid.Parse(traceID)
	assert.NoError(t, err)

	assert.NotEqual(t, traceID, GetTraceID(SetTraceID(ctx)))
	assert.Empty(t, GetTraceID(ctx), "original context must be unchanged")

	bad := context.WithValue(ctx, TraceIDKey, 123)
	assert.Empty(t, GetTraceID(bad))
}

func TestDecodeObject(t *testing.T) {
	tests := []struct {
		name string
		body string
		want map[string]string
	}{
		{name: "object", body: `{"title":"T","content":5}`, want: map[string]string{"title": `"T"`, "content": `5`}},
		{name: "empty body", body: "", want: map[string]string{}},
		{name: "malformed json", body: `{"title":`, want: map[string]string{}},
		{name: "array", body: `["title"]`, want: map[string]string{}},
		{name: "string", body: `"hello"`, want: map[string]string{}},
		{name: "null", body: `null`, want: map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(tt.body))

			fields, err := DecodeObject(httptest.NewRecorder(), r)
			require.NoError(t, err)
			require.NotNil(t, fields)

			got := make(map[string]string, len(fields))
			for k, v := range fields {
				got[k] = string(v)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeObject_BodyTooLarge(t *testing.T) {
	body := `{"content":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(body))

	fields, err := DecodeObject(httptest.NewRecorder(), r)
	require.Error(t, err)
	assert.Nil(t, fields)

	var tooLarge *http.MaxBytesError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, int64(MaxBodyBytes), tooLarge.Limit)
}

func TestDecodeObject_BodyAtLimit(t *testing.T) {
	prefix, suffix := `{"content":"`, `"}`
	body := prefix + strings.Repeat("a", MaxBodyBytes-len(prefix)-len(suffix)) + suffix
	require.Len(t, body, MaxBodyBytes)
	r := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(body))

	fields, err := DecodeObject(httptest.NewRecorder(), r)
	require.NoError(t, err)
	assert.Len(t, fields["content"], MaxBodyBytes-len(prefix)-len(suffix)+2)
}

func TestStringField(t *testing.T) {
	fields := map[string]json.RawMessage{
		"title":   json.RawMessage(`"hello"`),
		"content": json.RawMessage(`null`),
		"bad":     json.RawMessage(`5`),
		"obj":     json.RawMessage(`{"a":1}`),
	}

	v, err := StringField(fields, "title")
	require.NoError(t, err)
	assert.Equal(t, "hello", *v)

	v, err = StringField(fields, "content")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "", *v)

	v, err = StringField(fields, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	for _, name := range []string{"bad", "obj"} {
		_, err = StringField(fields, name)
		var typeErr *FieldTypeError
		require.ErrorAs(t, err, &typeErr)
		assert.Equal(t, name, typeErr.Field)
	}
}

func TestValidateRequest(t *testing.T) {
	type request struct {
		Title *string `json:"title" validate:"omitempty,max=5"`
	}

	long := "too long"
	err := ValidateRequest(request{Title: &long})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")

	short := "ok"
	assert.NoError(t, ValidateRequest(request{Title: &short}))
	assert.NoError(t, ValidateRequest(request{}))
}

func TestRespondWithJSON(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/notes", nil)

	RespondWithJSON(w, r, http.StatusCreated, map[string]int{"id": 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":1}`, w.Body.String())
}

func TestRespondNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	RespondNoContent(w)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := httptest.NewRequest(http.MethodGet, "/notes/1", nil)
	ctx := SetTraceID(logger.WithLogger(r.Context(), log))
	r = r.WithContext(ctx)
	w := httptest.NewRecorder()

	RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "An unexpected error occurred",
		errors.New("open /var/lib/notes/notes.db: disk I/O error"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "An unexpected error occurred", body.Error)
	assert.Equal(t, GetTraceID(ctx), body.TraceID)

	assert.Contains(t, logs.String(), `"level":"ERROR"`)
	assert.Contains(t, logs.String(), "[REDACTED_PATH]")
	assert.NotContains(t, logs.String(), "/var/lib/notes")
}

func TestRespondWithError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/notes/abc", nil)

	RespondWithError(w, r, http.StatusNotFound, "Note not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Note not found"}`, w.Body.String())
}
