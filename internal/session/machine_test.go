package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yildizm/loglens/internal/api"
)

type fakeBackend struct {
	upload  func(ctx context.Context, file api.LogFile) (*api.AnalysisResult, error)
	summary func(ctx context.Context) (*api.SummaryReport, error)
	query   func(ctx context.Context, text string) (*api.QueryResponse, error)

	uploads   atomic.Int32
	summaries atomic.Int32
	queries   atomic.Int32
}

func (f *fakeBackend) UploadLog(ctx context.Context, file api.LogFile) (*api.AnalysisResult, error) {
	f.uploads.Add(1)
	if f.upload == nil {
		return sampleAnalysis(), nil
	}
	return f.upload(ctx, file)
}

func (f *fakeBackend) FetchSummary(ctx context.Context) (*api.SummaryReport, error) {
	f.summaries.Add(1)
	if f.summary == nil {
		return sampleSummary(), nil
	}
	return f.summary(ctx)
}

func (f *fakeBackend) SubmitQuery(ctx context.Context, text string) (*api.QueryResponse, error) {
	f.queries.Add(1)
	if f.query == nil {
		return &api.QueryResponse{Answer: "answer to " + text, SuggestedFollowup: []string{"next?"}}, nil
	}
	return f.query(ctx, text)
}

func sampleAnalysis() *api.AnalysisResult {
	return &api.AnalysisResult{
		TotalLines:        500,
		SeverityBreakdown: map[string]int{"ERROR": 10, "WARNING": 5, "INFO": 485},
	}
}

func sampleSummary() *api.SummaryReport {
	return &api.SummaryReport{TopIncidents: []api.Incident{}, RecommendedActions: []string{"Rotate logs"}}
}

var appLog = api.LogFile{Name: "app.log", Data: []byte("2025-01-01 10:00:00 ERROR boom\n")}

func newTestMachine(b Backend) *Machine {
	return New(b, WithInterval(time.Hour))
}

// start begins an analysis and splits the batch into upload and tick commands
func start(t *testing.T, m *Machine) (upload, tick tea.Cmd) {
	t.Helper()
	cmd, err := m.StartAnalysis()
	require.NoError(t, err)
	require.NotNil(t, cmd)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok, "expected upload and progress commands")
	require.Len(t, batch, 2)
	return batch[0], batch[1]
}

// analyze runs the full pipeline synchronously and returns the machine
func analyze(t *testing.T, m *Machine) {
	t.Helper()
	upload, _ := start(t, m)
	summaryCmd := m.Update(upload())
	require.NotNil(t, summaryCmd)
	assert.Nil(t, m.Update(summaryCmd()))
}

func TestSelectFileResetsEverything(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, m *Machine)
	}{
		{
			name:  "from idle",
			setup: func(t *testing.T, m *Machine) {},
		},
		{
			name: "from analyzed with chat",
			setup: func(t *testing.T, m *Machine) {
				m.SelectFile(appLog)
				analyze(t, m)
				cmd := m.SubmitQuery("what failed?")
				m.Update(cmd())
				require.Len(t, m.Snapshot().History, 2)
			},
		},
		{
			name: "from failed",
			setup: func(t *testing.T, m *Machine) {
				m.SelectFile(appLog)
				upload, _ := start(t, m)
				m.Update(upload())
				require.Equal(t, StatusFailed, m.Status())
			},
		},
		{
			name: "mid upload with progress",
			setup: func(t *testing.T, m *Machine) {
				m.SelectFile(appLog)
				start(t, m)
				m.Update(ProgressTickMsg{Generation: m.Generation()})
				require.Len(t, m.Snapshot().Progress, 1)
			},
		},
		{
			name: "after validation error",
			setup: func(t *testing.T, m *Machine) {
				_, err := m.StartAnalysis()
				require.Error(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{}
			if tt.name == "from failed" {
				b.upload = func(context.Context, api.LogFile) (*api.AnalysisResult, error) {
					return nil, errors.New("down")
				}
			}
			m := newTestMachine(b)
			defer m.Close()
			tt.setup(t, m)

			m.SelectFile(api.LogFile{Name: "other.log", Data: []byte("x")})
			vm := m.Snapshot()

			assert.Equal(t, StatusIdle, vm.Status)
			assert.Equal(t, "other.log", vm.FileName)
			assert.Nil(t, vm.Analysis)
			assert.Nil(t, vm.Summary)
			assert.Empty(t, vm.History)
			assert.Empty(t, vm.Progress)
			assert.Empty(t, vm.Error)
			assert.Equal(t, ChatIdle, vm.ChatStatus)
			assert.Equal(t, ViewDashboard, vm.View())
		})
	}
}

func TestStartAnalysisWithoutFile(t *testing.T) {
	b := &fakeBackend{}
	m := newTestMachine(b)
	defer m.Close()

	cmd, err := m.StartAnalysis()
	assert.Nil(t, cmd)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, MsgFileRequired, err.Error())

	vm := m.Snapshot()
	assert.Equal(t, StatusIdle, vm.Status)
	assert.Equal(t, MsgFileRequired, vm.Error)
	assert.Empty(t, vm.Progress)
	assert.Zero(t, b.uploads.Load())
}

func TestAnalysisSuccessScenario(t *testing.T) {
	b := &fakeBackend{}
	m := newTestMachine(b)
	defer m.Close()

	m.SelectFile(appLog)
	upload, _ := start(t, m)
	assert.Equal(t, StatusUploading, m.Status())

	summaryCmd := m.Update(upload())
	require.NotNil(t, summaryCmd, "summary fetch must follow a successful upload")
	assert.Equal(t, StatusUploading, m.Status())
	assert.NotNil(t, m.Snapshot().Analysis)
	assert.Zero(t, b.summaries.Load())

	assert.Nil(t, m.Update(summaryCmd()))

	vm := m.Snapshot()
	assert.Equal(t, StatusAnalyzed, vm.Status)
	require.NotNil(t, vm.Analysis)
	assert.Equal(t, 500, vm.Analysis.TotalLines)
	assert.Equal(t, 10, vm.Analysis.Severity("ERROR"))
	assert.Equal(t, 5, vm.Analysis.Severity("WARNING"))
	assert.Equal(t, 485, vm.Analysis.Severity("INFO"))
	require.NotNil(t, vm.Summary)
	assert.Equal(t, []string{"Rotate logs"}, vm.Summary.RecommendedActions)
	assert.Empty(t, vm.History)
	assert.Empty(t, vm.Error)
	assert.Equal(t, ViewDashboard, vm.View())
	assert.True(t, vm.Tabs.Dashboard)
	assert.True(t, vm.Tabs.Summary)
	assert.True(t, vm.Tabs.Chat)
	assert.EqualValues(t, 1, b.uploads.Load())
	assert.EqualValues(t, 1, b.summaries.Load())
}

func TestSummaryFailureIsNonFatal(t *testing.T) {
	b := &fakeBackend{
		summary: func(context.Context) (*api.SummaryReport, error) {
			return nil, &api.Error{Type: api.ErrTypeServer, Op: api.OpSummary, Message: api.FallbackSummary}
		},
	}
	m := newTestMachine(b)
	defer m.Close()

	m.SelectFile(appLog)
	analyze(t, m)

	vm := m.Snapshot()
	assert.Equal(t, StatusAnalyzed, vm.Status)
	assert.NotNil(t, vm.Analysis)
	assert.Nil(t, vm.Summary)
	assert.Empty(t, vm.Error)
	assert.True(t, vm.Tabs.Dashboard)
	assert.False(t, vm.Tabs.Summary)
	assert.True(t, vm.Tabs.Chat)
	assert.False(t, m.SetView(ViewSummary))
}

func TestUploadFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "server detail",
			err:     &api.Error{Type: api.ErrTypeServer, Op: api.OpUpload, StatusCode: 400, Message: "Unsupported file type"},
			wantMsg: "Unsupported file type",
		},
		{
			name:    "non api error uses fallback",
			err:     errors.New("connection reset"),
			wantMsg: api.FallbackUpload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{
				upload: func(context.Context, api.LogFile) (*api.AnalysisResult, error) {
					return nil, tt.err
				},
			}
			m := newTestMachine(b)
			defer m.Close()

			m.SelectFile(appLog)
			upload, _ := start(t, m)
			assert.Nil(t, m.Update(upload()))

			vm := m.Snapshot()
			assert.Equal(t, StatusFailed, vm.Status)
			assert.Nil(t, vm.Analysis)
			assert.Nil(t, vm.Summary)
			assert.Equal(t, tt.wantMsg, vm.Error)
			assert.False(t, vm.Tabs.Dashboard)
			assert.False(t, vm.Tabs.Summary)
			assert.False(t, vm.Tabs.Chat)
			assert.Zero(t, b.summaries.Load())
		})
	}
}

func TestRetryAfterFailure(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	b := &fakeBackend{
		upload: func(context.Context, api.LogFile) (*api.AnalysisResult, error) {
			if fail.Load() {
				return nil, errors.New("down")
			}
			return sampleAnalysis(), nil
		},
	}
	m := newTestMachine(b)
	defer m.Close()

	m.SelectFile(appLog)
	upload, _ := start(t, m)
	m.Update(upload())
	require.Equal(t, StatusFailed, m.Status())

	fail.Store(false)
	upload, _ = start(t, m)
	assert.Empty(t, m.Snapshot().Error, "starting a new upload clears the error")
	m.Update(m.Update(upload())())
	assert.Equal(t, StatusAnalyzed, m.Status())
}

func TestReanalyzeFromAnalyzed(t *testing.T) {
	m := newTestMachine(&fakeBackend{})
	defer m.Close()

	m.SelectFile(appLog)
	analyze(t, m)
	m.Update(m.SubmitQuery("hi")())
	require.Len(t, m.Snapshot().History, 2)

	start(t, m)
	vm := m.Snapshot()
	assert.Equal(t, StatusUploading, vm.Status)
	assert.Nil(t, vm.Analysis)
	assert.Nil(t, vm.Summary)
	assert.Empty(t, vm.History)
}

func TestStartAnalysisWhileUploadingIsNoOp(t *testing.T) {
	b := &fakeBackend{}
	m := newTestMachine(b)
	defer m.Close()

	m.SelectFile(appLog)
	start(t, m)
	gen := m.Generation()

	cmd, err := m.StartAnalysis()
	assert.NoError(t, err)
	assert.Nil(t, cmd)
	assert.Equal(t, gen, m.Generation())
}

func TestBlankQueriesAreNoOps(t *testing.T) {
	b := &fakeBackend{}
	m := newTestMachine(b)
	defer m.Close()

	m.SelectFile(appLog)
	analyze(t, m)

	for _, q := range []string{"", "   ", "\t\n"} {
		assert.Nil(t, m.SubmitQuery(q))
	}
	vm := m.Snapshot()
	assert.Empty(t, vm.History)
	assert.Equal(t, ChatIdle, vm.ChatStatus)
	assert.Equal(t, ViewDashboard, vm.View())
	assert.Zero(t, b.queries.Load())
}

func TestQueryWithoutAnalysisIsNoOp(t *testing.T) {
	m := newTestMachine(&fakeBackend{})
	defer m.Close()

	m.SelectFile(appLog)
	assert.Nil(t, m.SubmitQuery("anything?"))
	assert.Empty(t, m.Snapshot().History)
}

func TestChatWaitsForSummary(t *testing.T) {
	b := &fakeBackend{}
	m := newTestMachine(b)
	defer m.Close()

	m.SelectFile(appLog)
	upload, _ := start(t, m)
	summaryCmd := m.Update(upload())
	require.NotNil(t, summaryCmd)

	vm := m.Snapshot()
	require.NotNil(t, vm.Analysis)
	assert.Equal(t, StatusUploading, vm.Status)
	assert.True(t, vm.Tabs.Dashboard)
	assert.False(t, vm.Tabs.Chat)
	assert.False(t, vm.CanSubmit())
	assert.False(t, m.SetView(ViewChat))
	assert.Nil(t, m.SubmitQuery("why so many errors?"))
	assert.Empty(t, m.Snapshot().History)

	assert.Nil(t, m.Update(summaryCmd()))
	assert.True(t, m.Snapshot().CanSubmit())
	assert.True(t, m.SetView(ViewChat))

	cmd := m.SubmitQuery("why so many errors?")
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Len(t, m.Snapshot().History, 2)
	assert.EqualValues(t, 1, b.queries.Load())
}

func TestConcurrentSubmissionIsDropped(t *testing.T) {
	b := &fakeBackend{}
	m := newTestMachine(b)
	defer m.Close()

	m.SelectFile(appLog)
	analyze(t, m)

	first := m.SubmitQuery("first?")
	require.NotNil(t, first)
	vm := m.Snapshot()
	assert.Equal(t, ChatAwaitingResponse, vm.ChatStatus)
	assert.Equal(t, ViewChat, vm.View())

	assert.Nil(t, m.SubmitQuery("second?"))
	assert.Nil(t, m.PickSuggestion("third?"))
	require.Len(t, m.Snapshot().History, 1)

	m.Update(first())
	vm = m.Snapshot()
	require.Len(t, vm.History, 2)
	assert.Equal(t, RoleUser, vm.History[0].Role)
	assert.Equal(t, "first?", vm.History[0].Content())
	assert.Equal(t, RoleAssistant, vm.History[1].Role)
	assert.Equal(t, "answer to first?", vm.History[1].Content())
	assert.Equal(t, []string{"next?"}, vm.History[1].SuggestedFollowups)
	assert.Equal(t, ChatIdle, vm.ChatStatus)
	assert.EqualValues(t, 1, b.queries.Load())

	second := m.SubmitQuery("second?")
	require.NotNil(t, second)
	m.Update(second())
	assert.Len(t, m.Snapshot().History, 4)
}

func TestQueryFailureAppendsErrorTurn(t *testing.T) {
	b := &fakeBackend{
		query: func(context.Context, string) (*api.QueryResponse, error) {
			return nil, &api.Error{Type: api.ErrTypeServer, Op: api.OpQuery, Message: "index not ready"}
		},
	}
	m := newTestMachine(b)
	defer m.Close()

	m.SelectFile(appLog)
	analyze(t, m)

	m.Update(m.SubmitQuery("why?")())
	vm := m.Snapshot()
	require.Len(t, vm.History, 2)
	assert.Equal(t, RoleAssistant, vm.History[1].Role)
	assert.Equal(t, "Error: index not ready", vm.History[1].Answer)
	assert.Equal(t, ChatIdle, vm.ChatStatus)
	assert.Empty(t, vm.Error, "chat failures stay in the transcript")
	assert.Equal(t, StatusAnalyzed, vm.Status)
}

func TestPendingInput(t *testing.T) {
	b := &fakeBackend{}
	m := newTestMachine(b)
	defer m.Close()

	m.SelectFile(appLog)
	analyze(t, m)

	m.SetInput("   ")
	assert.Nil(t, m.SubmitInput())
	assert.Equal(t, "   ", m.Snapshot().Input)

	m.SetInput("show timeouts")
	cmd := m.SubmitInput()
	require.NotNil(t, cmd)
	assert.Empty(t, m.Snapshot().Input)
	m.Update(cmd())
	assert.Equal(t, "show timeouts", m.Snapshot().History[0].Text)
}

func TestPickSuggestion(t *testing.T) {
	var got string
	b := &fakeBackend{
		query: func(_ context.Context, text string) (*api.QueryResponse, error) {
			got = text
			return &api.QueryResponse{Answer: "ok"}, nil
		},
	}
	m := newTestMachine(b)
	defer m.Close()

	m.SelectFile(appLog)
	analyze(t, m)

	m.Update(m.PickSuggestion("When did it start?")())
	assert.Equal(t, "When did it start?", got)
	vm := m.Snapshot()
	require.Len(t, vm.History, 2)
	assert.Equal(t, UserTurn("When did it start?"), vm.History[0])
}

func TestSetView(t *testing.T) {
	m := newTestMachine(&fakeBackend{})
	defer m.Close()

	assert.False(t, m.SetView(ViewChat))
	assert.False(t, m.SetView(ViewSummary))
	assert.Equal(t, ViewDashboard, m.Snapshot().View())

	m.SelectFile(appLog)
	analyze(t, m)

	assert.True(t, m.SetView(ViewSummary))
	assert.Equal(t, ViewSummary, m.Snapshot().View())
	assert.True(t, m.SetView(ViewChat))
	assert.False(t, m.SetView(View("logs")))
	assert.Equal(t, ViewChat, m.Snapshot().View())
}

func TestProgressIsBoundedAndStopsOnSettle(t *testing.T) {
	b := &fakeBackend{}
	m := newTestMachine(b)
	defer m.Close()

	m.SelectFile(appLog)
	upload, tick := start(t, m)
	gen := m.Generation()

	n := len(DefaultSteps)
	for i := 0; i < n-1; i++ {
		assert.NotNil(t, m.Update(ProgressTickMsg{Generation: gen}), "timer re-armed under the cap")
	}
	assert.Nil(t, m.Update(ProgressTickMsg{Generation: gen}), "timer not re-armed at the cap")
	for i := 0; i < 3; i++ {
		m.Update(ProgressTickMsg{Generation: gen})
	}

	vm := m.Snapshot()
	assert.Equal(t, DefaultSteps, vm.Progress)
	assert.Equal(t, DefaultSteps[:n-1], vm.CompletedSteps())
	assert.Equal(t, DefaultSteps[n-1], vm.CurrentStep())

	m.Update(m.Update(upload())())
	require.Equal(t, StatusAnalyzed, m.Status())

	assert.Nil(t, tick(), "cancelled timer delivers no message")
	assert.Nil(t, m.Update(ProgressTickMsg{Generation: gen}))
	assert.Len(t, m.Snapshot().Progress, n)
}

func TestProgressStopsOnUploadFailure(t *testing.T) {
	b := &fakeBackend{
		upload: func(context.Context, api.LogFile) (*api.AnalysisResult, error) {
			return nil, errors.New("down")
		},
	}
	m := newTestMachine(b)
	defer m.Close()

	m.SelectFile(appLog)
	upload, tick := start(t, m)
	gen := m.Generation()
	m.Update(ProgressTickMsg{Generation: gen})

	m.Update(upload())
	require.Equal(t, StatusFailed, m.Status())

	assert.Nil(t, tick())
	m.Update(ProgressTickMsg{Generation: gen})
	assert.Len(t, m.Snapshot().Progress, 1)
}

func TestProgressTimerFires(t *testing.T) {
	m := New(&fakeBackend{}, WithInterval(time.Millisecond), WithSteps([]string{"one", "two"}))
	defer m.Close()

	m.SelectFile(appLog)
	cmd, err := m.StartAnalysis()
	require.NoError(t, err)
	batch := cmd().(tea.BatchMsg)

	msg := batch[1]()
	require.IsType(t, ProgressTickMsg{}, msg)
	next := m.Update(msg)
	require.NotNil(t, next)
	assert.Equal(t, []string{"one"}, m.Snapshot().Progress)

	assert.Nil(t, m.Update(next()))
	assert.Equal(t, []string{"one", "two"}, m.Snapshot().Progress)
	assert.Equal(t, 2, m.Snapshot().StepCount)
}

func TestStaleUploadIsIgnored(t *testing.T) {
	m := newTestMachine(&fakeBackend{})
	defer m.Close()

	m.SelectFile(appLog)
	upload, tick := start(t, m)

	m.SelectFile(api.LogFile{Name: "new.log"})
	assert.Nil(t, tick(), "superseded timer is cancelled")
	assert.Nil(t, m.Update(upload()))

	vm := m.Snapshot()
	assert.Equal(t, StatusIdle, vm.Status)
	assert.Nil(t, vm.Analysis)
	assert.Equal(t, "new.log", vm.FileName)
}

func TestStaleSummaryIsIgnored(t *testing.T) {
	m := newTestMachine(&fakeBackend{})
	defer m.Close()

	m.SelectFile(appLog)
	upload, _ := start(t, m)
	summaryCmd := m.Update(upload())
	require.NotNil(t, summaryCmd)

	// restart on a new file before the summary lands
	m.SelectFile(api.LogFile{Name: "new.log"})
	newUpload, _ := start(t, m)
	stale := summaryCmd()
	assert.Nil(t, m.Update(stale))
	assert.Equal(t, StatusUploading, m.Status())
	assert.Nil(t, m.Snapshot().Summary)

	m.Update(m.Update(newUpload())())
	assert.Equal(t, StatusAnalyzed, m.Status())
}

func TestStaleQueryIsIgnored(t *testing.T) {
	m := newTestMachine(&fakeBackend{})
	defer m.Close()

	m.SelectFile(appLog)
	analyze(t, m)
	query := m.SubmitQuery("slow question")
	require.NotNil(t, query)

	m.SelectFile(api.LogFile{Name: "new.log"})
	analyze(t, m)

	m.Update(query())
	vm := m.Snapshot()
	assert.Empty(t, vm.History)
	assert.Equal(t, ChatIdle, vm.ChatStatus)
}

func TestCancelledCallsSeeContext(t *testing.T) {
	started := make(chan struct{})
	b := &fakeBackend{
		upload: func(ctx context.Context, _ api.LogFile) (*api.AnalysisResult, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	m := newTestMachine(b)
	defer m.Close()

	m.SelectFile(appLog)
	upload, _ := start(t, m)

	result := make(chan tea.Msg, 1)
	go func() { result <- upload() }()
	<-started

	m.SelectFile(appLog)
	select {
	case msg := <-result:
		assert.Nil(t, m.Update(msg))
	case <-time.After(5 * time.Second):
		t.Fatal("superseded upload was not cancelled")
	}
	assert.Equal(t, StatusIdle, m.Status())
	assert.Empty(t, m.Snapshot().Error)
}

func TestClose(t *testing.T) {
	b := &fakeBackend{}
	m := newTestMachine(b)

	m.SelectFile(appLog)
	upload, tick := start(t, m)
	m.Close()
	assert.True(t, m.Closed())

	assert.Nil(t, tick())
	assert.Nil(t, m.Update(upload()))
	assert.Equal(t, StatusUploading, m.Status())

	_, err := m.StartAnalysis()
	assert.ErrorIs(t, err, ErrClosed)
	assert.Nil(t, m.SubmitQuery("x"))
	assert.False(t, m.SetView(ViewDashboard))

	m.SelectFile(api.LogFile{Name: "ignored.log"})
	assert.Equal(t, "app.log", m.Snapshot().FileName)
	m.Close()
}

func TestDrive(t *testing.T) {
	b := &fakeBackend{}
	m := New(b, WithInterval(time.Millisecond))
	defer m.Close()

	m.SelectFile(appLog)
	cmd, err := m.StartAnalysis()
	require.NoError(t, err)

	var seen []tea.Msg
	require.NoError(t, Drive(context.Background(), m, cmd, func(msg tea.Msg) {
		seen = append(seen, msg)
	}))

	vm := m.Snapshot()
	assert.Equal(t, StatusAnalyzed, vm.Status)
	assert.NotNil(t, vm.Summary)
	assert.LessOrEqual(t, len(vm.Progress), len(DefaultSteps))

	var uploads, summaries int
	for _, msg := range seen {
		switch msg.(type) {
		case UploadDoneMsg:
			uploads++
		case SummaryDoneMsg:
			summaries++
		}
	}
	assert.Equal(t, 1, uploads)
	assert.Equal(t, 1, summaries)

	require.NoError(t, Drive(context.Background(), m, m.SubmitQuery("what happened?"), nil))
	assert.Len(t, m.Snapshot().History, 2)
}

func TestDriveCancelled(t *testing.T) {
	b := &fakeBackend{
		upload: func(ctx context.Context, _ api.LogFile) (*api.AnalysisResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	m := newTestMachine(b)

	m.SelectFile(appLog)
	cmd, err := m.StartAnalysis()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = Drive(ctx, m, cmd, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, m.Closed())
}
