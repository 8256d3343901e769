package domain

import (
	"math"
	"time"
	"unicode/utf8"
)

// MaxTitleLength is the maximum number of characters allowed in a note title.
const MaxTitleLength = 255

// Note is a user-authored text record, optionally annotated with a
// machine-generated summary and sentiment score.
//
// Summary and Sentiment are nil until enrichment has written them; a note
// without them is complete and valid.
type Note struct {
	// ID is assigned by the store on insert and never changes afterwards.
	ID int64

	Title   string
	Content string

	Summary   *string
	Sentiment *float64

	// CreatedDate is an ISO-8601 timestamp. It is client supplied, or
	// generated on creation when the client leaves it empty.
	CreatedDate string
}

// NewNote builds a note ready to be inserted. An empty createdDate is
// replaced by now formatted as RFC 3339 in UTC.
func NewNote(title, content, createdDate string, now time.Time) (*Note, error) {
	if createdDate == "" {
		createdDate = now.UTC().Format(time.RFC3339)
	}

	note := &Note{
		Title:       title,
		Content:     content,
		CreatedDate: createdDate,
	}

	if err := note.Validate(); err != nil {
		return nil, err
	}

	return note, nil
}

// Validate checks the note's invariants.
func (n *Note) Validate() error {
	if err := validateTitle(n.Title); err != nil {
		return err
	}
	if n.Sentiment != nil {
		if s := *n.Sentiment; math.IsNaN(s) || s < 0 || s > 1 {
			return NewValidationError("sentiment", "must be between 0 and 1", nil)
		}
	}
	return nil
}

func validateTitle(title string) error {
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return NewValidationError("title", "must be at most 255 characters", ErrTitleTooLong)
	}
	return nil
}

// NotePatch describes a partial update. A nil field is left untouched; a
// non-nil field replaces the stored value.
type NotePatch struct {
	Title       *string
	Content     *string
	CreatedDate *string
}

// IsEmpty reports whether the patch changes nothing.
func (p NotePatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.CreatedDate == nil
}

// Validate checks the fields that are present.
func (p NotePatch) Validate() error {
	if p.Title != nil {
		return validateTitle(*p.Title)
	}
	return nil
}
