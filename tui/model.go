package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/weddingguard/backend/pkg/logger"
	"github.com/weddingguard/backend/service"
	"github.com/weddingguard/backend/shell"
	"github.com/weddingguard/backend/view"
)

// analysisDoneMsg carries the outcome of one submission back to Update.
type analysisDoneMsg struct {
	attempt  string
	analysis *service.Analysis
	err      error
}

// toastExpiredMsg fires when the toast with id has been visible for its TTL.
type toastExpiredMsg struct {
	id string
}

// Options configures a Model.
type Options struct {
	Analyzer       service.Analyzer
	MaxUploadBytes int64
	// Style is the glamour style name, "auto" by default.
	Style string
}

// Model is the bubbletea model of the terminal front-end.
type Model struct {
	ctx       context.Context
	state     *shell.ViewState
	analyzer  service.Analyzer
	validator *service.Validator
	renderer  *Renderer

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	width, height int
	now           func() time.Time
}

// New creates the initial model: analyze section with the path input focused.
func New(ctx context.Context, opts Options) (Model, error) {
	renderer, err := NewRenderer(opts.Style, 80)
	if err != nil {
		return Model{}, err
	}

	input := textinput.New()
	input.Placeholder = "계약서 파일 경로 (JPG, PNG, PDF)"
	input.Prompt = "> "
	input.CharLimit = 4096
	input.Focus()

	return Model{
		ctx:       ctx,
		state:     shell.New(),
		analyzer:  opts.Analyzer,
		validator: service.NewValidator(opts.MaxUploadBytes),
		renderer:  renderer,
		input:     input,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		viewport:  viewport.New(80, 20),
		width:     80,
		height:    24,
		now:       time.Now,
	}, nil
}

// State exposes the view state for inspection.
func (m Model) State() *shell.ViewState {
	return m.state
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-8, 5)
		if r, err := m.renderer.Resize(max(msg.Width-4, 20)); err == nil {
			m.renderer = r
		}
		m.refreshReport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case analysisDoneMsg:
		return m.finishAnalysis(msg)

	case toastExpiredMsg:
		m.state.DismissToast(msg.id)
		return m, nil

	case spinner.TickMsg:
		if !m.state.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.state.ModalOpen {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "f1":
		m.state.Navigate(shell.SectionHome)
		return m, nil
	case "f2":
		m.state.Navigate(shell.SectionAnalyze)
		return m, nil
	}

	if m.state.ModalOpen {
		return m.handleModalKey(msg)
	}

	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "ctrl+e":
		return m.openExample(service.ExampleStructured)
	case "ctrl+t":
		return m.openExample(service.ExampleText)
	}

	if m.state.Section == shell.SectionHome {
		if msg.Type == tea.KeyEnter {
			m.state.Navigate(shell.SectionAnalyze)
		}
		return m, nil
	}

	if msg.Type == tea.KeyEnter {
		return m.startAnalysis(strings.TrimSpace(m.input.Value()))
	}
	if m.state.Loading() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.state.CloseModal()
		return m, nil
	case "tab", "right", "l":
		return m.selectTab(m.tabOffset(1))
	case "shift+tab", "left", "h":
		return m.selectTab(m.tabOffset(-1))
	case "1", "2", "3":
		return m.selectTab(shell.Tabs[int(msg.String()[0]-'1')])
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) tabOffset(delta int) shell.Tab {
	for i, t := range shell.Tabs {
		if t == m.state.Tab {
			n := len(shell.Tabs)
			return shell.Tabs[((i+delta)%n+n)%n]
		}
	}
	return shell.TabSummary
}

func (m Model) selectTab(tab shell.Tab) (tea.Model, tea.Cmd) {
	if m.state.Report != nil && m.state.Report.IsRawText() {
		return m, nil
	}
	if err := m.state.SelectTab(tab); err != nil {
		return m, nil
	}
	m.refreshReport()
	return m, nil
}

func (m Model) openExample(variant service.ExampleVariant) (tea.Model, tea.Cmd) {
	report, err := service.ExampleReport(variant)
	if err != nil {
		m.state.ShowToast(err.Error(), shell.ToastError, m.now())
		return m, m.expireToast()
	}
	m.state.Navigate(shell.SectionAnalyze)
	m.state.OpenReport(report, "")
	m.refreshReport()
	return m, nil
}

// startAnalysis validates path and, if it is acceptable, begins an attempt.
// The submission itself runs in a tea.Cmd so the UI keeps redrawing.
func (m Model) startAnalysis(path string) (tea.Model, tea.Cmd) {
	if m.state.Loading() {
		m.state.ShowToast(shell.MsgUploadInFlight, shell.ToastInfo, m.now())
		return m, m.expireToast()
	}
	if path == "" {
		m.state.RejectFile(reasonOf(service.NoFileError()), m.now())
		return m, m.expireToast()
	}

	file, err := service.OpenLocalFile(path)
	if err != nil {
		m.state.RejectFile(fmt.Sprintf("파일을 열 수 없습니다: %s", path), m.now())
		return m, m.expireToast()
	}
	if err := m.validator.Validate(file.UploadedFile); err != nil {
		file.Close()
		m.state.RejectFile(reasonOf(err), m.now())
		return m, m.expireToast()
	}

	attempt, err := m.state.BeginUpload(m.now())
	if err != nil {
		file.Close()
		return m, nil
	}
	m.input.Reset()

	return m, tea.Batch(m.spinner.Tick, m.expireToast(), m.submit(attempt, file))
}

func (m Model) submit(attempt string, file *service.LocalFile) tea.Cmd {
	ctx, analyzer := m.ctx, m.analyzer
	return func() tea.Msg {
		defer file.Close()
		analysis, err := analyzer.Submit(ctx, file.UploadedFile)
		return analysisDoneMsg{attempt: attempt, analysis: analysis, err: err}
	}
}

func (m Model) finishAnalysis(msg analysisDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		logger.Error(m.ctx, "analysis failed", "error", msg.err)
		if !m.state.FailUpload(msg.attempt, m.now()) {
			return m, nil
		}
		return m, m.expireToast()
	}
	if !m.state.CompleteUpload(msg.attempt, msg.analysis.Report, msg.analysis.ID, m.now()) {
		return m, nil
	}
	m.refreshReport()
	return m, m.expireToast()
}

// expireToast schedules dismissal of the current toast.
func (m Model) expireToast() tea.Cmd {
	toast := m.state.Toast
	if toast == nil {
		return nil
	}
	id := toast.ID
	return tea.Tick(toast.Remaining(m.now()), func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m *Model) refreshReport() {
	if !m.state.ModalOpen {
		return
	}
	vm := view.Build(m.state.Report)
	m.viewport.SetContent(m.renderer.RenderReport(vm, m.state.Tab))
	m.viewport.GotoTop()
}

func reasonOf(err error) string {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return verr.Reason()
	}
	return err.Error()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.navBar())
	b.WriteString("\n\n")

	switch {
	case m.state.ModalOpen:
		b.WriteString(m.modalView())
	case m.state.Section == shell.SectionHome:
		b.WriteString(homeView())
	default:
		b.WriteString(m.analyzeView())
	}

	if toast := m.state.ActiveToast(m.now()); toast != nil {
		b.WriteString("\n\n")
		b.WriteString(toastStyle(toast.Kind).Render(toast.Message))
	}
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render(m.help()))
	return b.String()
}

func (m Model) navBar() string {
	items := []struct {
		section shell.Section
		label   string
	}{
		{shell.SectionHome, "F1 홈"},
		{shell.SectionAnalyze, "F2 계약서 분석"},
	}
	parts := []string{TitleStyle.Render("웨딩가드")}
	for _, it := range items {
		if it.section == m.state.Section {
			parts = append(parts, ActiveNavItem.Render(it.label))
		} else {
			parts = append(parts, MutedStyle.Render(it.label))
		}
	}
	return strings.Join(parts, "   ")
}

func homeView() string {
	return strings.Join([]string{
		TitleStyle.Render("웨딩 계약서, 서명 전에 확인하세요"),
		"",
		"업로드한 계약서를 조항별로 분석해 위험 요소와 체크리스트를 알려드립니다.",
		MutedStyle.Render("Enter 키를 눌러 분석을 시작하세요."),
	}, "\n")
}

func (m Model) analyzeView() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("계약서 업로드"))
	b.WriteString("\n\n")
	if m.state.Loading() {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(shell.MsgAnalyzing)
		return b.String()
	}
	b.WriteString(m.input.View())
	if m.state.LastError != "" {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(m.state.LastError))
	}
	return b.String()
}

func (m Model) modalView() string {
	var b strings.Builder
	if m.state.Report != nil && !m.state.Report.IsRawText() {
		tabs := make([]string, 0, len(shell.Tabs))
		for i, t := range shell.Tabs {
			label := fmt.Sprintf("%d %s", i+1, TabTitle(t))
			if t == m.state.Tab {
				tabs = append(tabs, ActiveTab.Render(label))
			} else {
				tabs = append(tabs, InactiveTab.Render(label))
			}
		}
		b.WriteString(strings.Join(tabs, " "))
		b.WriteString("\n")
	}
	b.WriteString(m.viewport.View())
	return b.String()
}

func (m Model) help() string {
	switch {
	case m.state.ModalOpen:
		return "tab/1-3 탭 전환 · ↑/↓ 스크롤 · esc 닫기 · ctrl+c 종료"
	case m.state.Section == shell.SectionHome:
		return "enter 분석 시작 · ctrl+e 예시 보기 · esc 종료"
	default:
		return "enter 분석 · ctrl+e 예시 · ctrl+t 텍스트 예시 · esc 종료"
	}
}

func toastStyle(kind shell.ToastKind) lipgloss.Style {
	switch kind {
	case shell.ToastSuccess:
		return BadgeStyle(view.Badge{Color: "success"})
	case shell.ToastError:
		return BadgeStyle(view.Badge{Color: "destructive"})
	default:
		return BadgeStyle(view.Badge{Color: "info"})
	}
}

// Run starts the terminal UI and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	m, err := New(ctx, opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
