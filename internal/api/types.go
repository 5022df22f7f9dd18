package api

// LogFile is the file handed to the backend for analysis.
type LogFile struct {
	Name string
	Data []byte
}

// AnalysisResult is the payload returned by POST /upload
type AnalysisResult struct {
	Message           string         `json:"message,omitempty"`
	TotalLines        int            `json:"total_lines"`
	SeverityBreakdown map[string]int `json:"severity_breakdown"`
	ErrorTypes        []ErrorType    `json:"error_types"`
	TimeSeries        []TimePoint    `json:"time_series"`
}

// ErrorType is one bar of the error-type chart
type ErrorType struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TimePoint is one bucket of the error/warning timeline
type TimePoint struct {
	Time     string `json:"time"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
}

// Severity returns the count for a severity name, zero when absent.
func (r *AnalysisResult) Severity(name string) int {
	if r == nil || r.SeverityBreakdown == nil {
		return 0
	}
	return r.SeverityBreakdown[name]
}

// SummaryReport is the payload returned by GET /summary
type SummaryReport struct {
	TopIncidents       []Incident `json:"top_incidents"`
	RecommendedActions []string   `json:"recommended_actions"`
}

// Incident is a single entry of the summary's top incidents
type Incident struct {
	Title     string `json:"title"`
	Timestamp string `json:"timestamp,omitempty"`
	Severity  string `json:"severity,omitempty"`
}

// IsEmpty reports whether the report has neither incidents nor actions.
func (s *SummaryReport) IsEmpty() bool {
	return s == nil || (len(s.TopIncidents) == 0 && len(s.RecommendedActions) == 0)
}

// QueryRequest is the body of POST /query
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse is the payload returned by POST /query
type QueryResponse struct {
	Answer            string   `json:"answer"`
	SuggestedFollowup []string `json:"suggested_followup"`
	RelevantLogs      []string `json:"relevant_logs"`
}

// errorBody is the optional JSON body of a non-2xx response
type errorBody struct {
	Detail string `json:"detail"`
}
