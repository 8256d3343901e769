package gemini

import (
	"bytes"
	"fmt"
	"text/template"
)

var summaryPrompt = template.Must(template.New("summary").Parse(
	`You write short summaries of personal notes.
Summarize the note below in one or two sentences, in the same language as the note.
Respond with JSON only, in the form {"summary": "<summary>"}.

Note:
{{.Text}}
`))

var sentimentPrompt = template.Must(template.New("sentiment").Parse(
	`You classify the overall sentiment of personal notes.
Label the note below as "negative", "neutral" or "positive" and give a score
between 0 and 1, where 0 is entirely negative, 0.5 is neutral and 1 is entirely positive.
Respond with JSON only, in the form {"label": "<label>", "score": <score>}.

Note:
{{.Text}}
`))

type promptData struct {
	Text string
}

func renderPrompt(tmpl *template.Template, text string) (string, error) {
	if text == "" {
		return "", ErrEmptyText
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{Text: text}); err != nil {
		return "", fmt.Errorf("failed to execute %s prompt template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// summaryResponse is the JSON document expected for a summary request.
type summaryResponse struct {
	Summary string `json:"summary"`
}

// sentimentResponse is the JSON document expected for a sentiment request.
type sentimentResponse struct {
	Label string   `json:"label"`
	Score *float64 `json:"score"`
}
