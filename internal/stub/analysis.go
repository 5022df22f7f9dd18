package stub

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/yildizm/loglens/internal/api"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	bucketLayout    = "2006-01-02 15:04"
	unknownBucket   = "unknown"

	chunkSize    = 5
	chunkOverlap = 2
	searchLimit  = 3
)

// Error categories, checked in order. Error lines matching none of them
// count as CategoryGeneric.
const (
	CategoryTimeout       = "Timeout"
	CategoryAuthFail      = "Auth Fail"
	CategoryDBError       = "DB Error"
	CategoryNullPointer   = "Null Pointer"
	CategoryPaymentFailed = "Payment Failed"
	CategoryGeneric       = "Generic Error"
)

var timestampPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2})`)

var categories = []struct {
	name    string
	pattern *regexp.Regexp
	action  string
}{
	{CategoryTimeout, regexp.MustCompile(`connection timed out`), "Review upstream timeouts and connection pool limits."},
	{CategoryAuthFail, regexp.MustCompile(`authentication failed|invalid credentials`), "Audit the failing credentials and rotate any that leaked."},
	{CategoryDBError, regexp.MustCompile(`failed to connect to database|database connection`), "Check database availability and connection settings."},
	{CategoryNullPointer, regexp.MustCompile(`nullpointerexception`), "Add null checks around the failing code paths."},
	{CategoryPaymentFailed, regexp.MustCompile(`payment failed`), "Inspect the payment provider integration for failed calls."},
}

const genericAction = "Triage the uncategorized errors and add alerts for new ones."

var stopwords = map[string]bool{
	"what": true, "is": true, "the": true, "on": true, "in": true, "from": true,
	"observed": true, "most": true, "common": true, "a": true, "were": true,
	"of": true, "find": true, "all": true, "are": true, "there": true,
	"any": true, "show": true, "me": true, "did": true, "why": true, "when": true,
	"how": true, "many": true,
}

// Stats is what the stub derives from one uploaded file
type Stats struct {
	TotalLines int
	Counts     map[string]int
	ErrorTypes []api.ErrorType
	TimeSeries []api.TimePoint

	// firstSeen is the first timestamp of each error category
	firstSeen map[string]string
	earliest  time.Time
	latest    time.Time
}

type event struct {
	at      time.Time
	warning bool
}

// Analyze classifies lines by keyword: a line containing "error" is an
// error, otherwise one containing "warning" is a warning, anything else is
// info. Errors are further grouped by category and errors and warnings are
// bucketed over time.
func Analyze(lines []string) *Stats {
	s := &Stats{
		TotalLines: len(lines),
		Counts:     make(map[string]int),
		firstSeen:  make(map[string]string),
	}

	categoryIndex := make(map[string]int)
	var events []event
	unknown := api.TimePoint{Time: unknownBucket}

	for _, line := range lines {
		ts, hasTS := extractTimestamp(line)
		if hasTS {
			if s.earliest.IsZero() || ts.Before(s.earliest) {
				s.earliest = ts
			}
			if ts.After(s.latest) {
				s.latest = ts
			}
		}

		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "error"):
			s.Counts["ERROR"]++
			if hasTS {
				events = append(events, event{at: ts})
			} else {
				unknown.Errors++
			}

			category := categorize(lower)
			if i, ok := categoryIndex[category]; ok {
				s.ErrorTypes[i].Count++
			} else {
				categoryIndex[category] = len(s.ErrorTypes)
				s.ErrorTypes = append(s.ErrorTypes, api.ErrorType{Name: category, Count: 1})
			}
			if _, ok := s.firstSeen[category]; !ok && hasTS {
				s.firstSeen[category] = ts.Format(timestampLayout)
			}
		case strings.Contains(lower, "warning"):
			s.Counts["WARNING"]++
			if hasTS {
				events = append(events, event{at: ts, warning: true})
			} else {
				unknown.Warnings++
			}
		default:
			s.Counts["INFO"]++
		}
	}

	s.TimeSeries = bucketize(events)
	if unknown.Errors > 0 || unknown.Warnings > 0 {
		s.TimeSeries = append(s.TimeSeries, unknown)
		sort.SliceStable(s.TimeSeries, func(i, j int) bool {
			return s.TimeSeries[i].Time < s.TimeSeries[j].Time
		})
	}
	return s
}

// Result converts the stats into the upload response body
func (s *Stats) Result() *api.AnalysisResult {
	return &api.AnalysisResult{
		Message:           "Log file analyzed successfully.",
		TotalLines:        s.TotalLines,
		SeverityBreakdown: s.Counts,
		ErrorTypes:        s.ErrorTypes,
		TimeSeries:        s.TimeSeries,
	}
}

// Summary builds the incident report: the most frequent error categories,
// or the warnings when there are no errors, with one action per category.
func (s *Stats) Summary() *api.SummaryReport {
	report := &api.SummaryReport{
		TopIncidents:       []api.Incident{},
		RecommendedActions: []string{},
	}

	ranked := append([]api.ErrorType(nil), s.ErrorTypes...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}

	for _, et := range ranked {
		report.TopIncidents = append(report.TopIncidents, api.Incident{
			Title:     fmt.Sprintf("%s (%s)", et.Name, occurrences(et.Count)),
			Timestamp: s.firstSeen[et.Name],
			Severity:  "ERROR",
		})
		report.RecommendedActions = append(report.RecommendedActions, actionFor(et.Name))
	}

	if len(ranked) == 0 && s.Counts["WARNING"] > 0 {
		report.TopIncidents = append(report.TopIncidents, api.Incident{
			Title:    fmt.Sprintf("Warnings (%s)", occurrences(s.Counts["WARNING"])),
			Severity: "WARNING",
		})
		report.RecommendedActions = append(report.RecommendedActions, "Review the warnings before they turn into errors.")
	}
	return report
}

func occurrences(n int) string {
	if n == 1 {
		return "1 occurrence"
	}
	return fmt.Sprintf("%d occurrences", n)
}

func actionFor(category string) string {
	for _, c := range categories {
		if c.name == category {
			return c.action
		}
	}
	return genericAction
}

func categorize(lower string) string {
	for _, c := range categories {
		if c.pattern.MatchString(lower) {
			return c.name
		}
	}
	return CategoryGeneric
}

func extractTimestamp(line string) (time.Time, bool) {
	m := timestampPattern.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}
	// the separator may be any whitespace
	ts, err := time.Parse(timestampLayout, m[1][:10]+" "+m[1][11:])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// BucketMinutes picks the time-series resolution for a span of events
func BucketMinutes(span time.Duration) int {
	switch {
	case span <= 2*time.Hour:
		return 1
	case span <= 24*time.Hour:
		return 5
	case span <= 7*24*time.Hour:
		return 60
	case span <= 14*24*time.Hour:
		return 180
	default:
		return 720
	}
}

func bucketize(events []event) []api.TimePoint {
	if len(events) == 0 {
		return nil
	}

	first, last := events[0].at, events[0].at
	for _, e := range events[1:] {
		if e.at.Before(first) {
			first = e.at
		}
		if e.at.After(last) {
			last = e.at
		}
	}
	size := time.Duration(BucketMinutes(last.Sub(first))) * time.Minute

	buckets := make(map[string]*api.TimePoint)
	for _, e := range events {
		key := e.at.Truncate(size).Format(bucketLayout)
		p, ok := buckets[key]
		if !ok {
			p = &api.TimePoint{Time: key}
			buckets[key] = p
		}
		if e.warning {
			p.Warnings++
		} else {
			p.Errors++
		}
	}

	points := make([]api.TimePoint, 0, len(buckets))
	for _, p := range buckets {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time < points[j].Time })
	return points
}

// Chunk splits lines into overlapping windows for retrieval. Timestamped
// lines get a spelled-out date appended so date questions can match.
func Chunk(lines []string) []string {
	augmented := make([]string, len(lines))
	for i, line := range lines {
		augmented[i] = line
		if ts, ok := extractTimestamp(line); ok {
			augmented[i] = line + " | DateText: " + ts.Format("January 02, 2006 15:04:05")
		}
	}

	step := chunkSize - chunkOverlap
	var chunks []string
	for i := 0; i < len(augmented); i += step {
		end := i + chunkSize
		if end > len(augmented) {
			end = len(augmented)
		}
		chunks = append(chunks, strings.Join(augmented[i:end], "\n"))
	}
	return chunks
}

// Keywords extracts the content words of a question
func Keywords(query string) []string {
	var words []string
	seen := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, "?.,!:;\"'()")
		if w == "" || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}

// Search returns up to three chunks for query. Chunks containing every
// keyword win; otherwise chunks are ranked by how many keywords they hold.
func Search(chunks []string, query string) []string {
	keywords := Keywords(query)
	if len(keywords) == 0 {
		return []string{}
	}

	type scored struct {
		chunk string
		hits  int
	}
	var all, partial []scored
	for _, chunk := range chunks {
		lower := strings.ToLower(chunk)
		hits := 0
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				hits++
			}
		}
		switch {
		case hits == len(keywords):
			all = append(all, scored{chunk, hits})
		case hits > 0:
			partial = append(partial, scored{chunk, hits})
		}
	}

	if len(all) == 0 {
		sort.SliceStable(partial, func(i, j int) bool { return partial[i].hits > partial[j].hits })
		all = partial
	}

	out := []string{}
	for _, s := range all {
		if len(out) == searchLimit {
			break
		}
		out = append(out, s.chunk)
	}
	return out
}

// Answer builds the chat response for query from the file's stats and the
// retrieved snippets.
func (s *Stats) Answer(query string, snippets []string) *api.QueryResponse {
	overview := fmt.Sprintf("The file has %d lines with %d errors and %d warnings.",
		s.TotalLines, s.Counts["ERROR"], s.Counts["WARNING"])
	if !s.earliest.IsZero() {
		overview += fmt.Sprintf(" Entries range from %s to %s.",
			s.earliest.Format(timestampLayout), s.latest.Format(timestampLayout))
	}

	var answer string
	if len(snippets) == 0 {
		answer = fmt.Sprintf("I could not find log lines matching %q. %s", query, overview)
	} else {
		answer = fmt.Sprintf("Found %d relevant log snippets for %q. %s", len(snippets), query, overview)
	}

	return &api.QueryResponse{
		Answer:            answer,
		SuggestedFollowup: s.followups(),
		RelevantLogs:      snippets,
	}
}

func (s *Stats) followups() []string {
	out := []string{}
	if len(s.ErrorTypes) > 0 {
		top := s.ErrorTypes[0]
		for _, et := range s.ErrorTypes[1:] {
			if et.Count > top.Count {
				top = et
			}
		}
		out = append(out, fmt.Sprintf("What caused the %s errors?", top.Name))
		if at, ok := s.firstSeen[top.Name]; ok {
			out = append(out, fmt.Sprintf("What happened around %s?", at))
		}
	}
	if s.Counts["WARNING"] > 0 {
		out = append(out, "Which warnings appear most often?")
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}
