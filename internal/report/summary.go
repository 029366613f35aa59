package report

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Faint(true).Width(10)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Summary describes a finished run.
type Summary struct {
	RunID   string
	Backend string
	Host    string
	History History
	Model   string // checkpoint path
	Plot    string // curve image path, empty if not rendered
	Log     string // parquet history path, empty if not written
}

// Render returns the summary as a bordered box.
func (s Summary) Render() string {
	rows := []string{titleStyle.Render("charpos run " + s.RunID)}
	add := func(label, value string) {
		if value == "" {
			return
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value))
	}

	add("backend", s.Backend)
	add("host", s.Host)
	add("epochs", fmt.Sprintf("%d", len(s.History)))
	if last, ok := s.History.Last(); ok {
		add("final", fmt.Sprintf("acc %.4f  loss %.6f", last.Accuracy, last.MeanLoss))
	}
	if best, ok := s.History.Best(); ok {
		add("best", fmt.Sprintf("acc %.4f  (epoch %d)", best.Accuracy, best.Epoch+1))
	}
	add("model", s.Model)
	add("plot", s.Plot)
	add("history", s.Log)

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
