package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pgatlas/pgatlas/pkg/gate"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// GateModel - Interactive gate result browser
// =============================================================================

// GateModel is the bubbletea model for browsing gate results. Enter opens
// the audit narrative of the selected result.
type GateModel struct {
	Results []gate.Result
	Cursor  int
	Height  int
	Offset  int
	Detail  bool
}

// NewGateModel creates a new gate browser model.
func NewGateModel(results []gate.Result) GateModel {
	return GateModel{Results: results, Height: 15}
}

func (m GateModel) Init() tea.Cmd {
	return nil
}

func (m GateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Detail {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "esc", "backspace", "enter":
				m.Detail = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Results)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Results) > 0 {
				m.Detail = true
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m GateModel) View() string {
	if len(m.Results) == 0 {
		return StyleTitle.Render("Gate Results") + "\n\n" + listDimStyle.Render("No results. q quit") + "\n"
	}
	if m.Detail {
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Gate Results"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ explain  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Results))
	rows := gateRows(m.Results[m.Offset:end])
	for i := range rows {
		cursor := "  "
		if m.Offset+i == m.Cursor {
			cursor = "▸ "
		}
		rows[i] = append([]string{cursor}, rows[i]...)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers("", "Repository", "Verdict", "Signals", "Criticality", "HHI", "Adoption").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Results))))
	return b.String()
}

func (m GateModel) detailView() string {
	r := m.Results[m.Cursor]
	var b strings.Builder
	b.WriteString(StyleTitle.Render(r.ID))
	b.WriteString("  ")
	b.WriteString(styleVerdict(gateVerdict(r)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Width(100).Render(r.Explanation))
	b.WriteString("\n")
	return b.String()
}
