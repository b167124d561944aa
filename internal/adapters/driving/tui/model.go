// Package tui implements the interactive chat interface following the
// Elm architecture. It drives the core through the ChatService port
// only; no retrieval or generation logic lives here.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/respondo-labs/respondo-cli/internal/core/domain"
	"github.com/respondo-labs/respondo-cli/internal/core/ports/driving"
)

// Ensure Model implements tea.Model.
var _ tea.Model = (*Model)(nil)

// answerMsg carries the outcome of one query.
type answerMsg struct {
	query  string
	answer domain.Answer
	err    error
}

// statusMsg carries the outcome of a /status command.
type statusMsg struct {
	status driving.Status
	err    error
}

// Model is the chat TUI model.
type Model struct {
	chat   driving.ChatService
	ctx    context.Context
	styles *Styles

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	transcript []string
	lastHits   []domain.SearchHit
	waiting    bool
	statusLine string

	width  int
	height int
	ready  bool
}

// New creates the chat model.
func New(chat driving.ChatService) *Model {
	input := textinput.New()
	input.Placeholder = "Digite sua pergunta..."
	input.CharLimit = 500
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		chat:       chat,
		ctx:        context.Background(),
		styles:     DefaultStyles(),
		input:      input,
		spinner:    sp,
		statusLine: "Enter envia · /help comandos · Ctrl+C sai",
	}
}

// WithContext sets the context used for queries.
func (m *Model) WithContext(ctx context.Context) {
	m.ctx = ctx
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			return m.submit()
		}

	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.appendLine(m.styles.Error.Render("erro: " + msg.err.Error()))
		} else {
			m.lastHits = msg.answer.Hits
			m.appendAnswer(msg.answer)
		}
		return m, nil

	case statusMsg:
		m.waiting = false
		if msg.err != nil {
			m.appendLine(m.styles.Error.Render("erro: " + msg.err.Error()))
		} else {
			m.appendStatus(msg.status)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit handles the Enter key: a session command or a question.
// Commands work with or without the leading slash.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()

	switch strings.ToLower(text) {
	case "/sair", "sair", "/exit", "/quit", ":q":
		return m, tea.Quit

	case "/help", "help":
		m.appendLine(m.styles.Muted.Render(strings.TrimSpace(`
Comandos:
  /status  estado do índice e dos modelos
  /show    trechos recuperados na última pergunta
  /help    esta ajuda
  /sair    encerrar a conversa`)))
		return m, nil

	case "/show", "show":
		m.appendHits()
		return m, nil

	case "/status", "status":
		m.waiting = true
		return m, tea.Batch(m.spinner.Tick, m.fetchStatus())
	}

	m.appendLine(m.styles.User.Render("Você: ") + text)
	m.waiting = true
	return m, tea.Batch(m.spinner.Tick, m.ask(text))
}

func (m *Model) ask(query string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.chat.Answer(m.ctx, query)
		return answerMsg{query: query, answer: answer, err: err}
	}
}

func (m *Model) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		st, err := m.chat.Status(m.ctx)
		return statusMsg{status: st, err: err}
	}
}

func (m *Model) appendAnswer(answer domain.Answer) {
	m.appendLine(m.styles.Bot.Render("Respondo: " + answer.Text))

	note := string(answer.Tier)
	if answer.BestScore > 0 {
		note = fmt.Sprintf("%s · score %.2f", answer.Tier, answer.BestScore)
	}
	m.appendLine(m.styles.Muted.Render("  [" + note + "]"))
}

// appendHits renders the retrieval hits behind the last answer.
func (m *Model) appendHits() {
	if len(m.lastHits) == 0 {
		m.appendLine(m.styles.Muted.Render("Nada recuperado ainda."))
		return
	}

	var b strings.Builder
	b.WriteString("Trechos recuperados:")
	for i, hit := range m.lastHits {
		fmt.Fprintf(&b, "\n[%d] %s#%d · score %.2f\n    %s",
			i+1, hit.Chunk.Source, hit.Chunk.Position, hit.Score,
			preview(hit.Chunk.Content, 160))
	}
	m.appendLine(m.styles.Muted.Render(b.String()))
}

// preview flattens text to one line and truncates it to limit runes.
func preview(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func (m *Model) appendStatus(st driving.Status) {
	var b strings.Builder
	fmt.Fprintf(&b, "corpus: %s\n", st.DocsPath)
	fmt.Fprintf(&b, "embedding: %s\n", st.EmbeddingModel)
	if st.GeneratorModel != "" {
		fmt.Fprintf(&b, "generator: %s\n", st.GeneratorModel)
	} else {
		b.WriteString("generator: desligado\n")
	}
	if st.IndexReady {
		fmt.Fprintf(&b, "índice: pronto, %d chunks\n", st.Manifest.ChunkCount)
	} else {
		b.WriteString("índice: não construído\n")
	}
	fmt.Fprintf(&b, "histórico: %d conversas", st.Turns)
	for _, w := range st.Warnings {
		fmt.Fprintf(&b, "\naviso: %s", w)
	}
	m.appendLine(m.styles.Muted.Render(b.String()))
}

func (m *Model) appendLine(line string) {
	m.transcript = append(m.transcript, line, "")
	if m.ready {
		m.viewport.SetContent(strings.Join(m.transcript, "\n"))
		m.viewport.GotoBottom()
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	// Title, input frame and status bar take the fixed rows.
	chromeLines := 6
	vpHeight := max(height-chromeLines, 3)

	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.input.Width = max(width-8, 20)

	m.viewport.SetContent(strings.Join(m.transcript, "\n"))
	m.viewport.GotoBottom()
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "carregando..."
	}

	title := m.styles.Title.Render("respondo · chat")

	inputLine := m.styles.InputField.Width(max(m.width-2, 20)).Render(m.input.View())
	if m.waiting {
		inputLine = m.styles.InputField.Width(max(m.width-2, 20)).
			Render(m.spinner.View() + " pensando...")
	}

	status := m.styles.StatusBar.Width(m.width).Render(m.statusLine)

	return title + "\n" + m.viewport.View() + "\n" + inputLine + "\n" + status
}
