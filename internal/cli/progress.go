package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/nebulab/shopify-toolkit/internal/bulk"
)

// Theme holds the color scheme for the watch display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// tickMsg triggers polling the operation status
type tickMsg time.Time

// opUpdateMsg carries the refreshed operation snapshot
type opUpdateMsg struct {
	op  *bulk.Operation
	err error
}

// watchModel is the bubbletea model for watching a bulk operation.
type watchModel struct {
	client   *bulk.Client
	id       string
	op       *bulk.Operation
	spinner  spinner.Model
	theme    Theme
	interval time.Duration
	timeout  time.Duration
	deadline time.Time
	done     bool
	quitting bool
	err      error
}

// newWatchModel creates a new watch model.
func newWatchModel(client *bulk.Client, id string, interval, timeout time.Duration) watchModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))

	return watchModel{
		client:   client,
		id:       id,
		spinner:  s,
		theme:    defaultTheme,
		interval: interval,
		timeout:  timeout,
		deadline: time.Now().Add(timeout),
	}
}

// Init returns the initial command (start polling immediately).
func (m watchModel) Init() tea.Cmd {
	return tea.Batch(
		m.fetchOperation(),
		m.spinner.Tick,
	)
}

// Update handles messages and returns the updated model.
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		return m, m.fetchOperation()

	case opUpdateMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("failed to fetch operation status: %w", msg.err)
			m.done = true
			return m, tea.Quit
		}
		if msg.op == nil {
			m.err = fmt.Errorf("bulk operation not found: %s", m.id)
			m.done = true
			return m, tea.Quit
		}

		m.op = msg.op
		recordOperation(context.Background(), m.op)

		if m.op.Status.Terminal() {
			m.done = true
			if m.op.Status != bulk.StatusCompleted {
				m.err = fmt.Errorf("operation finished as %s (error code %q)", m.op.Status, m.op.ErrorCode)
			}
			return m, tea.Quit
		}

		if time.Now().After(m.deadline) {
			m.err = &bulk.PollTimeoutError{ID: m.id, Timeout: m.timeout}
			m.done = true
			return m, tea.Quit
		}

		return m, m.tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the watch display.
func (m watchModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m watchModel) renderContent() string {
	if m.done {
		return m.finalView()
	}

	if m.op == nil {
		return fmt.Sprintf("%s Fetching operation status...\n", m.spinner.View())
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.op.Status))
	counts := fmt.Sprintf("%d objects", int64(m.op.ObjectCount))
	hint := m.theme.hintStyle().Render("Press Ctrl+C to continue in background")

	return fmt.Sprintf("%s %s %s\n%s\n", m.spinner.View(), status, counts, hint)
}

// finalView renders the completion message.
func (m watchModel) finalView() string {
	if m.quitting {
		msg := fmt.Sprintf("\nOperation %s continues in the background.\nUse 'shopify-toolkit bulk status %s' to check on it.\n",
			m.id, m.id)
		return m.theme.hintStyle().Render(msg)
	}

	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ %s\n", m.err))
	}

	if m.op != nil {
		var output string
		output += m.theme.completedStyle().Render("✓ Completed") + "\n\n"
		output += fmt.Sprintf("  Objects:   %d\n", int64(m.op.ObjectCount))
		if m.op.FileSize > 0 {
			output += fmt.Sprintf("  File size: %d bytes\n", int64(m.op.FileSize))
		}
		if m.op.URL != "" {
			output += fmt.Sprintf("  Results:   %s\n", m.op.URL)
		}
		return output
	}

	return m.theme.completedStyle().Render("✓ Completed\n")
}

// fetchOperation fetches the current operation snapshot.
// Runs in a separate goroutine (command) to avoid blocking Update().
func (m watchModel) fetchOperation() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		op, err := m.client.Get(ctx, m.id)
		return opUpdateMsg{op: op, err: err}
	}
}

// tickCmd returns a command that sends a tick after the poll interval.
func (m watchModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// watchOperation shows the interactive watch UI when stdout is a terminal
// and falls back to plain line-per-poll output otherwise.
func watchOperation(ctx context.Context, id string) error {
	client, err := getBulkClient()
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		op, err := waitForOperation(ctx, client, id, func(snapshot *bulk.Operation) {
			fmt.Printf("[%s] %d objects\n", snapshot.Status, int64(snapshot.ObjectCount))
		})
		if err != nil {
			return err
		}
		printOperation(op)
		return nil
	}

	model := newWatchModel(client, id, pollInterval(), pollTimeout())
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("watch UI error: %w", err)
	}

	if m, ok := finalModel.(watchModel); ok {
		// Ctrl+C leaves the operation running remotely - not an error
		if m.quitting {
			return nil
		}
		if m.err != nil {
			return m.err
		}
	}

	return nil
}
