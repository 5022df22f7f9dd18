package formatter

import (
	"encoding/json"

	"github.com/yildizm/loglens/internal/session"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

func (f *jsonFormatter) Format(doc *Document) ([]byte, error) {
	output := &JSONOutput{
		Document:     doc,
		Conversation: createTurnOutputs(doc.History),
	}
	return json.MarshalIndent(output, "", "  ")
}

// JSONOutput is the document plus its transcript
type JSONOutput struct {
	*Document
	Conversation []*TurnOutput `json:"conversation,omitempty"`
}

// TurnOutput represents one chat turn
type TurnOutput struct {
	Role              string   `json:"role"`
	Text              string   `json:"text"`
	SuggestedFollowup []string `json:"suggested_followup,omitempty"`
	RelevantLogs      []string `json:"relevant_logs,omitempty"`
}

func createTurnOutputs(history []session.Turn) []*TurnOutput {
	if len(history) == 0 {
		return nil
	}
	out := make([]*TurnOutput, 0, len(history))
	for _, t := range history {
		out = append(out, &TurnOutput{
			Role:              t.Role.String(),
			Text:              t.Content(),
			SuggestedFollowup: t.SuggestedFollowups,
			RelevantLogs:      t.RelevantLogs,
		})
	}
	return out
}
