// SPDX-License-Identifier: MIT

// Package tui renders a live tuning meter in the terminal using bubbletea.
package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tuner/internal/tuner"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Bold(true)

	inTuneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	offPitchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5C07B")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5C6370"))
)

// meterWidth is the character width of the cents meter bar. Odd so the
// center mark sits on a single column.
const meterWidth = 41

// meterRangeCents is the deviation at either end of the bar.
const meterRangeCents = 50.0

type resultMsg struct {
	result tuner.Result
}

// MeterModel is the bubbletea model for the live tuning meter.
type MeterModel struct {
	result      tuner.Result
	haveResult  bool
	inTuneCents float64
}

// NewMeterModel creates a meter that highlights readings within
// inTuneCents of the reference pitch.
func NewMeterModel(inTuneCents float64) MeterModel {
	return MeterModel{inTuneCents: inTuneCents}
}

// Init implements tea.Model.
func (m MeterModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m MeterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.result = msg.result
		m.haveResult = true

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m MeterModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Tuner"))
	b.WriteString("\n\n")

	if !m.haveResult {
		b.WriteString(dimStyle.Render("Listening..."))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("Press q to quit"))
		b.WriteString("\n")
		return b.String()
	}

	style := offPitchStyle
	if math.Abs(m.result.Cents) <= m.inTuneCents {
		style = inTuneStyle
	}

	b.WriteString(noteStyle.Render(m.result.Note))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %.1f Hz", m.result.Frequency)))
	b.WriteString("\n\n")
	b.WriteString(renderMeter(m.result.Cents, style))
	b.WriteString("\n")
	b.WriteString(style.Render(fmt.Sprintf("%+.0f cents", m.result.Cents)))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Press q to quit"))
	b.WriteString("\n")

	return b.String()
}

// renderMeter draws the deviation bar with a pointer at the current cents
// offset, clamped to meterRangeCents at either end.
func renderMeter(cents float64, pointerStyle lipgloss.Style) string {
	center := meterWidth / 2
	offset := int(math.Round(cents / meterRangeCents * float64(center)))
	pos := min(max(center+offset, 0), meterWidth-1)

	var b strings.Builder
	b.WriteString(dimStyle.Render("♭ "))
	for i := range meterWidth {
		switch {
		case i == pos:
			b.WriteString(pointerStyle.Render("█"))
		case i == center:
			b.WriteString(dimStyle.Render("┼"))
		default:
			b.WriteString(dimStyle.Render("─"))
		}
	}
	b.WriteString(dimStyle.Render(" ♯"))
	return b.String()
}

// MeterSink forwards detection results to a running bubbletea program.
// It implements tuner.Sink.
type MeterSink struct {
	program *tea.Program
}

// NewMeterSink creates a sink feeding the given program.
func NewMeterSink(program *tea.Program) *MeterSink {
	return &MeterSink{program: program}
}

// Send delivers one result to the meter. Implements tuner.Sink.
func (s *MeterSink) Send(result tuner.Result) error {
	s.program.Send(resultMsg{result})
	return nil
}

var _ tuner.Sink = (*MeterSink)(nil)
