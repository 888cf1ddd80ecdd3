package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/pyfetch/pkg/python"
)

var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	previewStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

const (
	previewLines   = 20
	minListHeight  = 5
	listChromeRows = 6 // title, help and table borders
)

// FileListModel is the bubbletea model behind "discover --interactive".
// Enter toggles a preview of the file under the cursor; "o" selects it and
// quits so the caller can print it.
type FileListModel struct {
	Files    []python.ManifestFile
	Cursor   int
	Offset   int
	Height   int
	Preview  bool
	Selected *python.ManifestFile
}

// NewFileListModel creates a browser over files.
func NewFileListModel(files []python.ManifestFile) FileListModel {
	return FileListModel{Files: files, Height: 15}
}

func (m FileListModel) Init() tea.Cmd {
	return nil
}

func (m FileListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.Offset = min(m.Offset, m.Cursor)
			}
		case "down", "j":
			if m.Cursor < len(m.Files)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			m.Preview = !m.Preview
		case "o":
			if len(m.Files) > 0 {
				f := m.Files[m.Cursor]
				m.Selected = &f
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-listChromeRows, minListHeight)
	}
	return m, nil
}

func (m FileListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Discovered Files"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ preview  o open  q quit"))
	b.WriteString("\n\n")

	if len(m.Files) == 0 {
		b.WriteString(listDimStyle.Render("  no files"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Files))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		f := m.Files[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		kind := "primary"
		if f.SupportFile {
			kind = "support"
		}
		rows = append(rows, []string{cursor, f.Name, kind, formatSize(len(f.Content))})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "File", "Kind", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Files) {
				return lipgloss.NewStyle()
			}
			style := lipgloss.NewStyle()
			if m.Files[idx].SupportFile {
				style = style.Foreground(colorGray)
			} else {
				style = style.Foreground(colorGreen)
			}
			if idx == m.Cursor {
				style = style.Bold(true)
			}
			return style
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Files))))

	if m.Preview {
		b.WriteString("\n")
		b.WriteString(previewStyle.Render(preview(m.Files[m.Cursor].Content, previewLines)))
	}
	return b.String()
}

// preview returns the first n lines of content, marking truncation.
func preview(content string, n int) string {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:n], "\n") + "\n" + listDimStyle.Render(fmt.Sprintf("… %d more lines", len(lines)-n))
}
