// Package termview plays the security scan and the typing terminal in a
// local terminal, the way the hero section shows them in the browser.
package termview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zachkp/cyber-portfolio/internal/content"
	"github.com/Zachkp/cyber-portfolio/internal/scanner"
	"github.com/Zachkp/cyber-portfolio/internal/sequencer"
)

const barWidth = 40

type stateMsg sequencer.State

type progressMsg scanner.Progress

var (
	green  = lipgloss.Color("#00ff00")
	dim    = lipgloss.Color("#007700")
	frame  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(dim).Padding(0, 1)
	prompt = lipgloss.NewStyle().Foreground(dim)
	text   = lipgloss.NewStyle().Foreground(green)
	cursor = lipgloss.NewStyle().Background(green).Render(" ")
	help   = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

type Model struct {
	name   string
	prompt string
	width  int

	scan    scanner.Progress
	scanned bool
	line    sequencer.State
}

func NewModel(profile content.Profile) Model {
	return Model{name: profile.Name, prompt: profile.Prompt, width: 80}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case progressMsg:
		m.scan = scanner.Progress(msg)
		m.scanned = m.scan.Complete
	case stateMsg:
		m.line = sequencer.State(msg)
	}
	return m, nil
}

func (m Model) View() string {
	if !m.scanned {
		filled := int(m.scan.Percent / 100 * barWidth)
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		return frame.Render(
			text.Render(m.scan.Text) + "\n" +
				text.Render(bar) + "\n" +
				prompt.Render(fmt.Sprintf("%d%% complete", int(m.scan.Percent+0.5))),
		) + "\n"
	}

	width := m.width - 4
	if width < 20 {
		width = 20
	}
	body := prompt.Render(m.prompt) + "\n" +
		text.Width(width).Render(m.line.Buffer) + cursor
	return text.Bold(true).Render(m.name) + "\n" +
		frame.Render(body) + "\n" +
		help.Render("q to quit") + "\n"
}

// Run shows the scan, then loops the hero terminal until ctx ends or the
// user quits.
func Run(ctx context.Context, p *content.Portfolio, scanInterval time.Duration, opts ...tea.ProgramOption) error {
	cfg, err := p.TerminalConfig()
	if err != nil {
		return err
	}

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	prog := tea.NewProgram(NewModel(p.Profile), opts...)

	seq, err := sequencer.New(p.Terminal.Lines, cfg,
		sequencer.WithListener(func(st sequencer.State) { prog.Send(stateMsg(st)) }))
	if err != nil {
		return err
	}
	defer seq.Stop()

	sc, err := scanner.New(scanner.Messages, scanInterval,
		scanner.WithListener(func(pr scanner.Progress) { prog.Send(progressMsg(pr)) }))
	if err != nil {
		return err
	}
	defer sc.Stop()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sc.Done():
			seq.Start()
		case <-done:
		}
	}()
	sc.Start()

	_, err = prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
