package session

import (
	"context"
	"fmt"

	"github.com/yildizm/loglens/internal/api"
)

// Backend is the analysis service the session drives. *api.Client
// satisfies it.
type Backend interface {
	UploadLog(ctx context.Context, file api.LogFile) (*api.AnalysisResult, error)
	FetchSummary(ctx context.Context) (*api.SummaryReport, error)
	SubmitQuery(ctx context.Context, text string) (*api.QueryResponse, error)
}

// Status is the lifecycle state of the analysis session
type Status int

const (
	StatusIdle Status = iota
	StatusUploading
	StatusAnalyzed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusUploading:
		return "uploading"
	case StatusAnalyzed:
		return "analyzed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ChatStatus gates chat submissions
type ChatStatus int

const (
	ChatIdle ChatStatus = iota
	ChatAwaitingResponse
)

func (c ChatStatus) String() string {
	if c == ChatAwaitingResponse {
		return "awaiting_response"
	}
	return "idle"
}

// View is a top-level panel
type View string

const (
	ViewDashboard View = "dashboard"
	ViewSummary   View = "summary"
	ViewChat      View = "chat"
)

// Views lists the panels in tab order
var Views = []View{ViewDashboard, ViewSummary, ViewChat}

// ParseView converts a name into a View
func ParseView(s string) (View, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q (must be one of: dashboard, summary, chat)", s)
}

// Role identifies who authored a chat turn
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

func (r Role) String() string {
	if r == RoleUser {
		return "user"
	}
	return "assistant"
}

// Turn is one message of the chat transcript. User turns carry Text;
// assistant turns carry Answer plus optional follow-ups and log snippets.
type Turn struct {
	Role               Role
	Text               string
	Answer             string
	SuggestedFollowups []string
	RelevantLogs       []string
}

// UserTurn builds a turn authored by the user
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

// AssistantTurn builds a turn from a backend answer
func AssistantTurn(resp *api.QueryResponse) Turn {
	if resp == nil {
		return Turn{Role: RoleAssistant}
	}
	return Turn{
		Role:               RoleAssistant,
		Answer:             resp.Answer,
		SuggestedFollowups: append([]string(nil), resp.SuggestedFollowup...),
		RelevantLogs:       append([]string(nil), resp.RelevantLogs...),
	}
}

// errorTurn renders a failed query inline in the transcript
func errorTurn(message string) Turn {
	return Turn{Role: RoleAssistant, Answer: "Error: " + message}
}

// Content returns the displayed text of the turn
func (t Turn) Content() string {
	if t.Role == RoleUser {
		return t.Text
	}
	return t.Answer
}

// Message types produced by the session's commands. Each carries the
// generation that issued it so late results can be recognised and dropped.
type (
	// UploadDoneMsg reports the outcome of the upload call
	UploadDoneMsg struct {
		Generation uint64
		Result     *api.AnalysisResult
		Err        error
	}

	// SummaryDoneMsg reports the outcome of the dependent summary fetch
	SummaryDoneMsg struct {
		Generation uint64
		Report     *api.SummaryReport
		Err        error
	}

	// QueryDoneMsg reports the outcome of a chat query
	QueryDoneMsg struct {
		Generation uint64
		Response   *api.QueryResponse
		Err        error
	}

	// ProgressTickMsg asks the session to reveal the next progress step
	ProgressTickMsg struct {
		Generation uint64
	}
)
