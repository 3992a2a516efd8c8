package controller

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	m "argstate.dev/pkg/argstate/internal/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	summaryBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// recentResultCount bounds the completed-invocation lines kept on screen.
const recentResultCount = 8

// TUI implements UI with an interactive Bubble Tea progress display.
type TUI struct {
	output  io.Writer
	program *tea.Program
	done    chan struct{}
	mu      sync.Mutex
}

// NewTUI creates a new TUI writing to output.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the Bubble Tea program in the background.
func (t *TUI) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.done = make(chan struct{})
	t.program = tea.NewProgram(newRunModel(), tea.WithOutput(t.output))

	go func() {
		_, _ = t.program.Run()
		close(t.done)
	}()

	return nil
}

// Close quits the program and waits for the final frame to be printed.
func (t *TUI) Close(_ context.Context) {
	t.mu.Lock()
	program, done := t.program, t.done
	t.program = nil
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Quit()
	<-done
}

func (t *TUI) send(msg tea.Msg) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}

// DisplayRunInfo feeds the run parameters into the progress display.
func (t *TUI) DisplayRunInfo(_ context.Context, cfg *m.RunConfig, units, symbols int) {
	t.send(runInfoMsg{subdir: cfg.Subdir, units: units, symbols: symbols, threads: cfg.EffectiveThreads()})
}

// DisplayInvocationStarted marks a symbol as in flight.
func (t *TUI) DisplayInvocationStarted(_ context.Context, entry m.WorklistEntry) {
	t.send(startedMsg{entry: entry})
}

// DisplayInvocationCompleted records one finished invocation.
func (t *TUI) DisplayInvocationCompleted(_ context.Context, invocation m.Invocation) {
	t.send(completedMsg{invocation: invocation})
}

// DisplayIndex renders the translation-unit index directly; the index
// listing has no progress to animate.
func (t *TUI) DisplayIndex(ctx context.Context, index *m.TranslationUnitIndex) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Sub-directory", "Translation Units"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, subdir := range index.Subdirectories() {
		units, err := index.Lookup(subdir)
		if err != nil {
			return err
		}

		table.Append([]string{string(subdir), fmt.Sprintf("%d", len(units))})
	}

	table.SetFooter([]string{"Total", fmt.Sprintf("%d", index.Len())})
	table.Render()

	_, err := fmt.Fprintf(t.output, "\n%s%s\n", titleStyle.Render("Translation-unit index"), "\n"+tableBuffer.String())

	return err
}

// DisplaySummary hands the summary to the model; it becomes part of the
// final frame printed when the program quits.
func (t *TUI) DisplaySummary(ctx context.Context, summary *m.RunSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.send(summaryMsg{summary: summary})

	return nil
}

type runInfoMsg struct {
	subdir  m.Path
	units   int
	symbols int
	threads int
}

type startedMsg struct {
	entry m.WorklistEntry
}

type completedMsg struct {
	invocation m.Invocation
}

type summaryMsg struct {
	summary *m.RunSummary
}

// runModel is the Bubble Tea model for a pipeline run.
type runModel struct {
	spinner  spinner.Model
	progress progress.Model

	subdir   m.Path
	units    int
	symbols  int
	threads  int
	finished int

	// Keyed by worklist position so duplicate symbols in flight at the
	// same time stay distinct.
	inFlight map[int]m.Symbol
	recent   []m.Invocation
	summary  *m.RunSummary
	quitting bool
}

func newRunModel() runModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))

	return runModel{
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient()),
		inFlight: map[int]m.Symbol{},
	}
}

func (rm runModel) Init() tea.Cmd {
	return rm.spinner.Tick
}

func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - 8
		if width > 10 {
			rm.progress.Width = width
		}

		return rm, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			rm.quitting = true
			return rm, tea.Quit
		}

		return rm, nil

	case spinner.TickMsg:
		var cmd tea.Cmd

		rm.spinner, cmd = rm.spinner.Update(msg)

		return rm, cmd

	case runInfoMsg:
		rm.subdir = msg.subdir
		rm.units = msg.units
		rm.symbols = msg.symbols
		rm.threads = msg.threads

		return rm, nil

	case startedMsg:
		rm.inFlight[msg.entry.Seq] = msg.entry.Symbol

		return rm, nil

	case completedMsg:
		delete(rm.inFlight, msg.invocation.Entry.Seq)

		rm.finished++

		rm.recent = append(rm.recent, msg.invocation)
		if len(rm.recent) > recentResultCount {
			rm.recent = rm.recent[len(rm.recent)-recentResultCount:]
		}

		return rm, nil

	case summaryMsg:
		rm.summary = msg.summary

		return rm, nil
	}

	return rm, nil
}

func (rm runModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("argstate — argument-state extraction"))
	b.WriteString("\n\n")

	if rm.symbols > 0 {
		fmt.Fprintf(&b, "  %s %d/%d symbols | %d TUs under %s | %d worker(s)\n",
			rm.spinner.View(), rm.finished, rm.symbols, rm.units, rm.subdir, rm.threads)

		percent := float64(rm.finished) / float64(rm.symbols)
		b.WriteString("  " + rm.progress.ViewAs(percent) + "\n\n")
	}

	if len(rm.inFlight) > 0 {
		seqs := make([]int, 0, len(rm.inFlight))
		for seq := range rm.inFlight {
			seqs = append(seqs, seq)
		}

		sort.Ints(seqs)

		names := make([]string, 0, len(seqs))
		for _, seq := range seqs {
			names = append(names, string(rm.inFlight[seq]))
		}

		b.WriteString(dimStyle.Render("  analyzing: "+strings.Join(names, ", ")) + "\n")
	}

	for _, invocation := range rm.recent {
		b.WriteString(renderInvocationLine(invocation) + "\n")
	}

	if rm.summary != nil {
		b.WriteString("\n" + renderSummaryBlock(rm.summary) + "\n")
	}

	return b.String()
}

func renderInvocationLine(invocation m.Invocation) string {
	symbol := string(invocation.Entry.Symbol)

	switch invocation.Status {
	case m.Completed:
		return okStyle.Render("  ✓ "+symbol) + dimStyle.Render(fmt.Sprintf(" (%s)", invocation.Duration.Round(time.Millisecond)))
	case m.SymbolNotFound:
		return dimStyle.Render("  - " + symbol + " not found")
	case m.Skipped:
		return dimStyle.Render("  = " + symbol + " skipped")
	case m.EngineFailure:
		return failStyle.Render("  ✗ " + symbol + ": " + invocation.Diagnostic)
	}

	return "  ? " + symbol
}

func renderSummaryBlock(summary *m.RunSummary) string {
	body := fmt.Sprintf("processed %d | completed %d | not found %d | failed %d | skipped %d",
		summary.Processed, summary.Completed, summary.NotFound, summary.Failed, summary.Skipped)

	if summary.Failed > 0 {
		lines := make([]string, 0, len(summary.Failures))
		for _, failure := range summary.Failures {
			lines = append(lines, failStyle.Render("✗ "+failure.Symbol+": "+failure.Diagnostic))
		}

		body += "\n" + strings.Join(lines, "\n")
	}

	return summaryBorder.Render(body)
}
