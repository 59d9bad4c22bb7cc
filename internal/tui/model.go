package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"segembed/internal/chunker"
	"segembed/internal/domain"
)

// RAGPort is the TUI-facing subset of the RAG service.
type RAGPort interface {
	Query(query string, topK int) ([]domain.SearchResult, error)
	AddDocument(text string) error
	StepRetrain() (bool, error)
	IsRetraining() bool
	RetrainProgress() float32
}

// addPrefix marks input that should be added to the corpus instead of searched.
const addPrefix = "+"

// retrainInterval is the delay between two retrain phases.
var retrainInterval = 50 * time.Millisecond

type retrainTickMsg struct{}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	service   RAGPort
	tokenizer domain.Tokenizer
	input     textinput.Model
	viewport  viewport.Model
	progress  progress.Model
	results   []domain.SearchResult
	summary   string
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates a new TUI model instance. tok drives sentence highlighting.
func New(service RAGPort, tok domain.Tokenizer, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a query, or +text to add a document"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	pb := progress.New(progress.WithDefaultGradient(), progress.WithWidth(30))
	return Model{
		service:   service,
		tokenizer: tok,
		input:     ti,
		viewport:  vp,
		progress:  pb,
		summary:   summary,
		status:    "Loaded. Type to search.",
	}
}

// Init starts the cursor blink and, if a retrain is pending, the retrain ticks.
func (m Model) Init() tea.Cmd {
	if m.service.IsRetraining() {
		return tea.Batch(textinput.Blink, retrainTick())
	}
	return textinput.Blink
}

func retrainTick() tea.Cmd {
	return tea.Tick(retrainInterval, func(time.Time) tea.Msg { return retrainTickMsg{} })
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + summary
		totalFooterLines := 2                                    // status + progress
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := max(msg.Height-reserved, 3)
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case retrainTickMsg:
		return m.stepRetrain()
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if text, ok := strings.CutPrefix(q, addPrefix); ok {
				return m.addDocument(strings.TrimSpace(text))
			}
			if q != "" {
				res, err := m.service.Query(q, 10)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.results = nil
				} else {
					m.status = fmt.Sprintf("Results for %q", q)
					m.results = res
					m.cursor = 0
					m.lastQuery = q
				}
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) addDocument(text string) (tea.Model, tea.Cmd) {
	if text == "" {
		m.status = "Nothing to add."
		return m, nil
	}
	wasRetraining := m.service.IsRetraining()
	if err := m.service.AddDocument(text); err != nil {
		m.status = "Error: " + err.Error()
		return m, nil
	}
	m.input.SetValue("")
	m.status = "Document added."
	if m.service.IsRetraining() && !wasRetraining {
		m.status = "Document added. Retraining..."
		return m, retrainTick()
	}
	return m, nil
}

// stepRetrain runs one phase per tick so the UI stays responsive.
func (m Model) stepRetrain() (tea.Model, tea.Cmd) {
	done, err := m.service.StepRetrain()
	if err != nil {
		m.status = "Error: " + err.Error()
		return m, nil
	}
	if !done {
		return m, retrainTick()
	}
	m.status = "Retrain complete."
	if m.lastQuery != "" {
		if res, err := m.service.Query(m.lastQuery, 10); err == nil {
			m.results = res
			m.cursor = 0
			m.viewport.SetContent(m.renderCurrentResult())
		}
	}
	return m, nil
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("segembed search")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	footer := ""
	if m.service.IsRetraining() {
		footer = "retraining " + m.progress.ViewAs(float64(m.service.RetrainProgress()))
	}
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status + "\n" + footer
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	title := fmt.Sprintf("Result %d/%d  score=%.3f", m.cursor+1, len(m.results), r.Score)
	body := highlightBestSentence(m.tokenizer, r.Chunk.Text, m.lastQuery)
	return title + "\n\n" + body
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// bestSentence returns the index of the sentence sharing the most tokens
// with query, or -1 when query has no tokens.
func bestSentence(tok domain.Tokenizer, sentences []string, query string) int {
	qTokens := toTokenSet(tok, query)
	if len(qTokens) == 0 {
		return -1
	}
	bestIdx, bestScore := 0, -1
	for i, s := range sentences {
		score := 0
		for t := range toTokenSet(tok, s) {
			if _, ok := qTokens[t]; ok {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return bestIdx
}

func highlightBestSentence(tok domain.Tokenizer, text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := chunker.Sentences(text)
	best := bestSentence(tok, sentences, query)
	if best >= 0 {
		sentences[best] = highlightStyle.Render(sentences[best])
	}
	return strings.Join(sentences, " ")
}

func toTokenSet(tok domain.Tokenizer, s string) map[string]struct{} {
	tokens := tok.Tokenize(strings.ToLower(s))
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}
