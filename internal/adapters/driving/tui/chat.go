// Package tui implements the interactive chat interface, a driving
// adapter over the document question-answering service. It follows the
// Elm architecture used by Bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/veridoc/internal/core/domain"
	"github.com/custodia-labs/veridoc/internal/core/ports/driving"
)

// Styles holds the lipgloss styles for the chat view.
type Styles struct {
	Title    lipgloss.Style
	Question lipgloss.Style
	Answer   lipgloss.Style
	Citation lipgloss.Style
	Error    lipgloss.Style
	Hint     lipgloss.Style
}

// DefaultStyles returns the default chat styles.
func DefaultStyles() *Styles {
	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		Question: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Answer:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Citation: lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("245")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Hint:     lipgloss.NewStyle().Faint(true),
	}
}

// answerMsg carries an answer back into the update loop.
type answerMsg struct {
	answer *domain.Answer
	err    error
}

// Chat is the interactive question-answering session for one document.
type Chat struct {
	qa       driving.DocumentQA
	ctx      context.Context
	doc      *domain.Document
	styles   *Styles
	input    textinput.Model
	viewport viewport.Model

	transcript []string
	asking     bool
	ready      bool
	width      int
	height     int
}

// Ensure Chat implements tea.Model.
var _ tea.Model = (*Chat)(nil)

// NewChat creates a chat session over an indexed document.
func NewChat(qa driving.DocumentQA, doc *domain.Document) *Chat {
	input := textinput.New()
	input.Placeholder = "Ask a question..."
	input.Focus()
	input.CharLimit = 500

	return &Chat{
		qa:     qa,
		ctx:    context.Background(),
		doc:    doc,
		styles: DefaultStyles(),
		input:  input,
	}
}

// WithContext sets the context used for service calls.
func (c *Chat) WithContext(ctx context.Context) *Chat {
	c.ctx = ctx
	return c
}

// Init implements tea.Model.
func (c *Chat) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (c *Chat) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		headerHeight := 2
		footerHeight := 3
		if !c.ready {
			c.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			c.ready = true
		} else {
			c.viewport.Width = msg.Width
			c.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		c.refreshViewport()
		return c, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return c, tea.Quit
		case tea.KeyEnter:
			if c.asking {
				return c, nil
			}
			question := strings.TrimSpace(c.input.Value())
			if question == "" {
				return c, nil
			}
			c.input.Reset()
			c.asking = true
			c.appendBlock(c.styles.Question.Render("You: ") + question)
			return c, c.ask(question)
		}

	case answerMsg:
		c.asking = false
		if msg.err != nil {
			c.appendBlock(c.styles.Error.Render(fmt.Sprintf("Error: %v", msg.err)))
			return c, nil
		}
		c.appendBlock(c.renderAnswer(msg.answer))
		return c, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	cmds = append(cmds, cmd)
	c.viewport, cmd = c.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return c, tea.Batch(cmds...)
}

// View implements tea.Model.
func (c *Chat) View() string {
	if !c.ready {
		return "Loading..."
	}

	title := c.styles.Title.Render(fmt.Sprintf("VeriDoc :: %s", c.doc.Title))
	prompt := c.input.View()
	if c.asking {
		prompt = c.styles.Hint.Render("Thinking...")
	}
	hint := c.styles.Hint.Render("Enter to ask · Esc to quit")

	return fmt.Sprintf("%s\n\n%s\n\n%s\n%s", title, c.viewport.View(), prompt, hint)
}

// ask runs the question against the service off the update loop.
func (c *Chat) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := c.qa.Ask(c.ctx, c.doc.ID, question, 0)
		return answerMsg{answer: answer, err: err}
	}
}

// renderAnswer formats an answer with its citations.
func (c *Chat) renderAnswer(answer *domain.Answer) string {
	var b strings.Builder
	b.WriteString(c.styles.Answer.Render("VeriDoc: " + answer.Text))

	for _, cit := range answer.Citations {
		pages := make([]string, len(cit.Pages))
		for i, p := range cit.Pages {
			pages[i] = fmt.Sprintf("%d", p)
		}
		b.WriteString("\n" + c.styles.Citation.Render(
			fmt.Sprintf("  [segment %d, pages %s]", cit.SegmentIndex, strings.Join(pages, ", "))))
	}
	return b.String()
}

// appendBlock adds a transcript block and scrolls to the bottom.
func (c *Chat) appendBlock(block string) {
	c.transcript = append(c.transcript, block)
	c.refreshViewport()
	c.viewport.GotoBottom()
}

// refreshViewport re-renders the transcript into the viewport.
func (c *Chat) refreshViewport() {
	if !c.ready {
		return
	}
	c.viewport.SetContent(strings.Join(c.transcript, "\n\n"))
}
