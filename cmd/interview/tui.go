package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	orchestration "github.com/voxhire/interview-core/core"
	"github.com/voxhire/interview-core/core/interviews"
	"github.com/voxhire/interview-core/internal/utils"
)

// appContext is everything the UI needs from the outside world. send is set
// once the bubbletea program exists; orchestrator callbacks use it to funnel
// events into the update loop.
type appContext struct {
	orchestrator   *orchestration.Orchestrator
	client         remoteClient
	transcriptPath string
	send           func(tea.Msg)
}

// remoteClient is the slice of the service client the UI talks to directly,
// outside the orchestrator's four exchanges.
type remoteClient interface {
	orchestration.SessionClient
	Voices(ctx context.Context) ([]string, error)
	Health(ctx context.Context) error
}

type phase int

const (
	phaseSetup phase = iota
	phaseStarting
	phaseInterview
	phaseReport
)

type (
	stateMsg          orchestration.TurnState
	transcriptMsg     interviews.TranscriptEntry
	progressMsg       interviews.Progress
	endPromptMsg      struct{}
	completionMsg     interviews.Completion
	turnErrMsg        struct{ err error }
	sessionStartedMsg struct{}
	startFailedMsg    struct{ err error }
	voicesMsg         struct{ voices []string }
	healthMsg         struct{ err error }
	analysisMsg       struct {
		report *interviews.Analysis
		err    error
	}
	transcriptSavedMsg struct {
		path string
		err  error
	}
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	interviewerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	candidateStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	stateStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("120"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	promptStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type model struct {
	app *appContext

	phase phase
	width int

	// setup form
	nameInput  textinput.Model
	roleInput  textinput.Model
	focusIndex int
	voices      []string
	voiceIndex  int
	serviceDown bool

	// interview
	turnState      orchestration.TurnState
	transcript     []interviews.TranscriptEntry
	progress       interviews.Progress
	endPrompt      bool
	captureEnabled bool
	lastErr        error
	spin           spinner.Model

	// report
	completion     *interviews.Completion
	analysis       *interviews.Analysis
	analysisErr    error
	savedPath      string
	saveErr        error
	analysisWaited bool
}

func newModel(app *appContext) model {
	nameInput := textinput.New()
	nameInput.Placeholder = "Your name"
	nameInput.Focus()
	nameInput.CharLimit = 64

	roleInput := textinput.New()
	roleInput.Placeholder = "Role you are interviewing for"
	roleInput.CharLimit = 128

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))

	return model{
		app:            app,
		phase:          phaseSetup,
		width:          80,
		nameInput:      nameInput,
		roleInput:      roleInput,
		voices:         interviews.Voices(),
		captureEnabled: true,
		spin:           spin,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetchVoices(), m.checkHealth())
}

func (m model) checkHealth() tea.Cmd {
	client := m.app.client
	return func() tea.Msg {
		return healthMsg{err: client.Health(context.Background())}
	}
}

// fetchVoices asks the service for its live voice catalogue; the built-in
// list stays in place when the service is unreachable.
func (m model) fetchVoices() tea.Cmd {
	client := m.app.client
	return func() tea.Msg {
		voices, err := client.Voices(context.Background())
		if err != nil || len(voices) == 0 {
			return nil
		}
		return voicesMsg{voices: voices}
	}
}

func (m model) startInterview() tea.Cmd {
	app := m.app
	setup := interviews.SetupConfig{
		CandidateName: strings.TrimSpace(m.nameInput.Value()),
		Role:          strings.TrimSpace(m.roleInput.Value()),
		Voice:         m.voices[m.voiceIndex],
	}
	return func() tea.Msg {
		err := app.orchestrator.Run(context.Background(), setup,
			orchestration.WithStateChangedCallback(func(state orchestration.TurnState) {
				app.send(stateMsg(state))
			}),
			orchestration.WithTranscriptEntryCallback(func(entry interviews.TranscriptEntry) {
				app.send(transcriptMsg(entry))
			}),
			orchestration.WithProgressCallback(func(progress interviews.Progress) {
				app.send(progressMsg(progress))
			}),
			orchestration.WithEndPromptCallback(func() {
				app.send(endPromptMsg{})
			}),
			orchestration.WithCompletionCallback(func(completion interviews.Completion) {
				app.send(completionMsg(completion))
			}),
			orchestration.WithErrorCallback(func(err error) {
				app.send(turnErrMsg{err: err})
			}),
		)
		if err != nil {
			return startFailedMsg{err: err}
		}
		return sessionStartedMsg{}
	}
}

func (m model) requestAnalysis() tea.Cmd {
	app := m.app
	return func() tea.Msg {
		report, err := app.orchestrator.Analyze(context.Background())
		return analysisMsg{report: report, err: err}
	}
}

func (m model) saveTranscript(completion interviews.Completion) tea.Cmd {
	path := m.app.transcriptPath
	return func() tea.Msg {
		err := os.WriteFile(path, []byte(interviews.FormatTranscript(completion.Transcript)), 0o644)
		return transcriptSavedMsg{path: path, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.phase {
		case phaseSetup:
			return m.updateSetup(msg)
		case phaseInterview:
			return m.updateInterview(msg)
		case phaseReport:
			if msg.String() == "q" || msg.String() == "enter" {
				return m, tea.Quit
			}
		}
		return m, nil

	case voicesMsg:
		m.voices = msg.voices
		if m.voiceIndex >= len(m.voices) {
			m.voiceIndex = 0
		}
		return m, nil

	case healthMsg:
		m.serviceDown = msg.err != nil
		return m, nil

	case sessionStartedMsg:
		m.phase = phaseInterview
		return m, nil

	case startFailedMsg:
		m.phase = phaseSetup
		m.lastErr = msg.err
		return m, nil

	case stateMsg:
		m.turnState = orchestration.TurnState(msg)
		if m.turnState == orchestration.TurnStateProcessing {
			return m, m.spin.Tick
		}
		return m, nil

	case transcriptMsg:
		m.transcript = append(m.transcript, interviews.TranscriptEntry(msg))
		return m, nil

	case progressMsg:
		m.progress = interviews.Progress(msg)
		return m, nil

	case endPromptMsg:
		m.endPrompt = true
		return m, nil

	case turnErrMsg:
		m.lastErr = msg.err
		return m, nil

	case completionMsg:
		completion := interviews.Completion(msg)
		m.completion = utils.Ptr(completion)
		m.phase = phaseReport
		m.analysisWaited = true
		return m, tea.Batch(m.requestAnalysis(), m.saveTranscript(completion), m.spin.Tick)

	case analysisMsg:
		m.analysisWaited = false
		m.analysis = msg.report
		m.analysisErr = msg.err
		return m, nil

	case transcriptSavedMsg:
		m.savedPath = msg.path
		m.saveErr = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.phase == phaseStarting || m.analysisWaited ||
			m.turnState == orchestration.TurnStateProcessing {
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

func (m model) updateSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		if m.focusIndex == 2 {
			return m, tea.Quit
		}
	case "tab", "down":
		return m.focusField(m.focusIndex + 1)
	case "shift+tab", "up":
		return m.focusField(m.focusIndex - 1)
	case "left":
		if m.focusIndex == 2 {
			m.voiceIndex = (m.voiceIndex + len(m.voices) - 1) % len(m.voices)
			return m, nil
		}
	case "right":
		if m.focusIndex == 2 {
			m.voiceIndex = (m.voiceIndex + 1) % len(m.voices)
			return m, nil
		}
	case "enter":
		if m.focusIndex < 2 {
			return m.focusField(m.focusIndex + 1)
		}
		if strings.TrimSpace(m.roleInput.Value()) == "" {
			m.lastErr = errors.New("the interview needs a role")
			return m, nil
		}
		m.lastErr = nil
		m.phase = phaseStarting
		return m, tea.Batch(m.startInterview(), m.spin.Tick)
	}

	var cmd tea.Cmd
	switch m.focusIndex {
	case 0:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case 1:
		m.roleInput, cmd = m.roleInput.Update(msg)
	}
	return m, cmd
}

func (m model) focusField(index int) (tea.Model, tea.Cmd) {
	if index < 0 {
		index = 0
	}
	if index > 2 {
		index = 2
	}
	m.focusIndex = index
	m.nameInput.Blur()
	m.roleInput.Blur()
	switch index {
	case 0:
		return m, m.nameInput.Focus()
	case 1:
		return m, m.roleInput.Focus()
	}
	return m, nil
}

func (m model) updateInterview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.endPrompt {
		switch msg.String() {
		case "y":
			m.endPrompt = false
			return m, func() tea.Msg {
				_ = m.app.orchestrator.EndInterview()
				return nil
			}
		case "n":
			m.endPrompt = false
			m.app.orchestrator.DismissEndPrompt()
			return m, nil
		}
		return m, nil
	}

	switch msg.String() {
	case " ":
		orchestrator := m.app.orchestrator
		switch m.turnState {
		case orchestration.TurnStateListening:
			return m, func() tea.Msg {
				if err := orchestrator.StopListening(); err != nil &&
					!errors.Is(err, orchestration.ErrCaptureTooShort) {
					return turnErrMsg{err: err}
				}
				return nil
			}
		case orchestration.TurnStateIdle, orchestration.TurnStateSpeaking:
			return m, func() tea.Msg {
				if err := orchestrator.StartListening(); err != nil {
					return turnErrMsg{err: err}
				}
				return nil
			}
		}
	case "m":
		m.captureEnabled = !m.captureEnabled
		m.app.orchestrator.SetCaptureEnabled(m.captureEnabled)
		return m, nil
	case "e":
		orchestrator := m.app.orchestrator
		return m, func() tea.Msg {
			if err := orchestrator.EndInterview(); err != nil {
				return turnErrMsg{err: err}
			}
			return nil
		}
	}
	return m, nil
}

func (m model) View() string {
	switch m.phase {
	case phaseSetup:
		return m.viewSetup()
	case phaseStarting:
		return fmt.Sprintf("\n  %s Starting your interview...\n", m.spin.View())
	case phaseInterview:
		return m.viewInterview()
	case phaseReport:
		return m.viewReport()
	}
	return ""
}

func (m model) viewSetup() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Mock Interview Setup") + "\n\n")
	b.WriteString("  " + labelStyle.Render("Name") + "\n  " + m.nameInput.View() + "\n\n")
	b.WriteString("  " + labelStyle.Render("Role") + "\n  " + m.roleInput.View() + "\n\n")

	voice := m.voices[m.voiceIndex]
	if m.focusIndex == 2 {
		voice = promptStyle.Render("< " + voice + " >")
	}
	b.WriteString("  " + labelStyle.Render("Interviewer voice") + "\n  " + voice + "\n\n")

	if m.serviceDown {
		b.WriteString("  " + errorStyle.Render("Interview service is unreachable; starting will fail until it is back.") + "\n\n")
	}
	if m.lastErr != nil {
		b.WriteString("  " + errorStyle.Render(m.lastErr.Error()) + "\n\n")
	}
	b.WriteString("  " + helpStyle.Render("tab: next field  •  enter: start  •  ctrl+c: quit") + "\n")
	return b.String()
}

func (m model) viewInterview() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Interview in progress") + "\n\n")

	wrapWidth := m.width - 6
	if wrapWidth < 20 {
		wrapWidth = 20
	}
	for _, entry := range m.transcript {
		speaker := interviewerStyle.Render("Interviewer")
		if entry.Role == interviews.RoleCandidate {
			speaker = candidateStyle.Render("You")
		}
		wrapped := wordwrap.String(entry.Content, wrapWidth)
		b.WriteString("  " + speaker + "\n")
		for _, line := range strings.Split(wrapped, "\n") {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}

	switch m.turnState {
	case orchestration.TurnStateListening:
		b.WriteString("  " + stateStyle.Render("● Listening... press space when you are done") + "\n")
	case orchestration.TurnStateProcessing:
		b.WriteString(fmt.Sprintf("  %s Thinking...\n", m.spin.View()))
	case orchestration.TurnStateSpeaking:
		b.WriteString("  " + stateStyle.Render("▶ Interviewer speaking (space to jump in)") + "\n")
	default:
		b.WriteString("  " + labelStyle.Render("Press space to answer") + "\n")
	}

	if m.endPrompt {
		b.WriteString("\n  " + promptStyle.Render("The interviewer has what it needs. End here? (y/n)") + "\n")
	}
	if m.lastErr != nil {
		b.WriteString("\n  " + errorStyle.Render("Last turn failed: "+m.lastErr.Error()) + "\n")
	}

	mic := "on"
	if !m.captureEnabled {
		mic = "off"
	}
	b.WriteString("\n  " + helpStyle.Render(fmt.Sprintf(
		"questions: %d  •  mic: %s  •  m: toggle mic  •  e: end interview  •  ctrl+c: quit",
		m.progress.QuestionCount, mic)) + "\n")
	return b.String()
}

func (m model) viewReport() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Interview complete") + "\n\n")

	if m.savedPath != "" && m.saveErr == nil {
		b.WriteString("  " + labelStyle.Render("Transcript saved to "+m.savedPath) + "\n\n")
	}
	if m.saveErr != nil {
		b.WriteString("  " + errorStyle.Render("Could not save transcript: "+m.saveErr.Error()) + "\n\n")
	}

	switch {
	case m.analysisWaited:
		b.WriteString(fmt.Sprintf("  %s Scoring your interview...\n", m.spin.View()))
	case m.analysisErr != nil:
		b.WriteString("  " + errorStyle.Render("Analysis unavailable: "+m.analysisErr.Error()) + "\n")
	case m.analysis != nil:
		b.WriteString(m.renderAnalysis(m.analysis))
	}

	b.WriteString("\n  " + helpStyle.Render("q: quit") + "\n")
	return b.String()
}

func (m model) renderAnalysis(report *interviews.Analysis) string {
	var b strings.Builder
	wrapWidth := m.width - 6
	if wrapWidth < 20 {
		wrapWidth = 20
	}

	b.WriteString(fmt.Sprintf("  %s %d/100  •  %s\n\n",
		labelStyle.Render("Overall score:"), report.OverallScore, report.Recommendation))
	b.WriteString(fmt.Sprintf("  %s  communication %d  technical %d  problem solving %d  confidence %d\n\n",
		labelStyle.Render("Skills:"),
		report.Skills.Communication, report.Skills.Technical,
		report.Skills.ProblemSolving, report.Skills.Confidence))

	if report.Summary != "" {
		for _, line := range strings.Split(wordwrap.String(report.Summary, wrapWidth), "\n") {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}
	if len(report.Strengths) > 0 {
		b.WriteString("  " + labelStyle.Render("Strengths") + "\n")
		for _, strength := range report.Strengths {
			b.WriteString("   + " + strength + "\n")
		}
		b.WriteString("\n")
	}
	if len(report.Improvements) > 0 {
		b.WriteString("  " + labelStyle.Render("Improvements") + "\n")
		for _, improvement := range report.Improvements {
			b.WriteString("   - " + improvement + "\n")
		}
	}
	return b.String()
}
