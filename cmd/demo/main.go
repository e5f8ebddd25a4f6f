package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kass/go-pointclass/pkg/classify"
	"github.com/kass/go-pointclass/pkg/legend"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1).
			MarginTop(1).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9")).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)

	statStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))
)

type stage int

const (
	stageGenerating stage = iota
	stageClassifying
	stageDone
	stageFailed
)

type model struct {
	stage           stage
	spinner         spinner.Model
	progress        progress.Model
	progressPercent float64
	current         string

	scene  sceneStats
	report report
	err    error

	messages []string
	width    int
}

type progressMsg struct {
	layer   string
	percent float64
}
type sceneMsg sceneStats
type reportMsg report
type errMsg struct{ err error }
type messageMsg string

func initialModel() model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	return model{
		stage:    stageGenerating,
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient()),
		width:    80,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 10
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case sceneMsg:
		m.scene = sceneStats(msg)
		m.stage = stageClassifying
		return m, nil

	case progressMsg:
		m.current = msg.layer
		m.progressPercent = msg.percent
		return m, m.progress.SetPercent(msg.percent)

	case reportMsg:
		m.report = report(msg)
		m.stage = stageDone
		return m, nil

	case errMsg:
		m.err = msg.err
		m.stage = stageFailed
		return m, nil

	case messageMsg:
		m.messages = append(m.messages, string(msg))
		if len(m.messages) > 5 {
			m.messages = m.messages[1:]
		}
		return m, nil
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Point Cloud Classification Demo"))
	b.WriteString("\n\n")

	switch m.stage {
	case stageGenerating:
		b.WriteString(subtitleStyle.Render("Generating Scene"))
		b.WriteString("\n\n")
		b.WriteString(m.spinner.View() + " Building walls, structures and points...\n")

	case stageClassifying:
		b.WriteString(renderScene(m.scene))
		b.WriteString(subtitleStyle.Render("Classifying " + m.current))
		b.WriteString("\n\n")
		b.WriteString(m.spinner.View() + fmt.Sprintf(" %s on %d workers...\n\n", m.scene.method, m.scene.workers))
		b.WriteString(m.progress.ViewAs(m.progressPercent))

	case stageDone:
		b.WriteString(renderScene(m.scene))
		b.WriteString(renderReport(m.report))

	case stageFailed:
		b.WriteString(errorStyle.Render("Classification failed: " + m.err.Error()))
	}

	if len(m.messages) > 0 {
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("Recent activity:"))
		b.WriteString("\n")
		for _, msg := range m.messages {
			b.WriteString(dimStyle.Render("• " + msg))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Press 'q' to quit"))

	return b.String()
}

func renderScene(s sceneStats) string {
	content := fmt.Sprintf(
		"✓ Points: %s\n"+
			"✓ Walls: %s\n"+
			"✓ Structures: %s\n"+
			"✓ Generated in %s",
		statStyle.Render(fmt.Sprintf("%d", s.points)),
		statStyle.Render(fmt.Sprintf("%d", s.walls)),
		statStyle.Render(fmt.Sprintf("%d", s.structures)),
		statStyle.Render(s.duration.String()),
	)
	return boxStyle.Render(successStyle.Render("Scene Ready\n\n") + content)
}

func swatch(c string) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(c)).Render("   ")
}

func renderReport(r report) string {
	var b strings.Builder
	for _, l := range r.layers {
		b.WriteString(fmt.Sprintf("✓ %s: %s polygons hit, %s assignments in %s\n",
			l.source,
			statStyle.Render(fmt.Sprintf("%d", l.hit)),
			statStyle.Render(fmt.Sprintf("%d", l.assignments)),
			statStyle.Render(l.duration.String()),
		))
	}

	b.WriteString("\n" + subtitleStyle.Render(r.categoryLabel) + "\n")
	for _, e := range r.categories {
		b.WriteString(fmt.Sprintf("%s %-12s %s\n", swatch(e.Hex()), e.Key, dimStyle.Render(fmt.Sprintf("%d points", e.Points))))
	}

	b.WriteString("\n" + subtitleStyle.Render(r.scalarLabel) + "\n")
	labels := r.colorbar.Labels(legend.DefaultLabels)
	var bar, ticks strings.Builder
	for _, v := range labels {
		bar.WriteString(swatch(r.colorbar.Color(v).Hex()))
	}
	ticks.WriteString(fmt.Sprintf("%-*.2f", 3*(len(labels)-1), labels[0]))
	ticks.WriteString(fmt.Sprintf("%.2f", labels[len(labels)-1]))
	b.WriteString(bar.String() + "\n" + dimStyle.Render(ticks.String()))

	return boxStyle.Render(successStyle.Render("Classification Complete!\n\n") + b.String())
}

var program *tea.Program

func main() {
	var (
		numPoints = flag.Int("n", 1000000, "Number of points to generate")
		rooms     = flag.Int("rooms", 6, "Rooms per side of the site")
		method    = flag.String("method", "exact", "Classification method: bbox or exact")
		workers   = flag.Int("w", runtime.NumCPU(), "Number of worker goroutines")
	)
	flag.Parse()

	m, err := classify.ParseMethod(*method)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	program = tea.NewProgram(initialModel())
	go executeDemo(demoOptions{points: *numPoints, rooms: *rooms, method: m, workers: *workers})

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}

func since(start time.Time) time.Duration {
	return time.Since(start).Round(time.Millisecond)
}
