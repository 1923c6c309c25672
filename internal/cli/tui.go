package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/popgraph/pkg/resource"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// BrowseModel - Interactive resource graph browser
// =============================================================================

// browseRow is one line of a view. Rows with a target can be opened.
type browseRow struct {
	field  string
	value  string
	target resource.Resource
}

func (r browseRow) openable() bool {
	return r.target != nil && !resource.IsDummy(r.target)
}

// browseView is one screen: a list of entities or the detail of one entity.
type browseView struct {
	title   string
	headers []string
	rows    []browseRow
	cursor  int
	offset  int
}

// BrowseModel is the bubbletea model for walking the resource graph.
// Enter opens the entity under the cursor; esc goes back.
type BrowseModel struct {
	stack  []browseView
	Height int
}

// NewBrowseModel starts the browser on a list of entities.
func NewBrowseModel(title string, rs []resource.Resource) BrowseModel {
	return BrowseModel{
		stack:  []browseView{listView(title, rs)},
		Height: 15,
	}
}

func listView(title string, rs []resource.Resource) browseView {
	rows := make([]browseRow, len(rs))
	for i, r := range rs {
		rows[i] = browseRow{field: resource.Name(r), value: r.ID(), target: r}
	}
	return browseView{title: title, headers: []string{"", "Name", "ID"}, rows: rows}
}

// detailView lists the attributes of r, then one row per related entity.
func detailView(r resource.Resource) browseView {
	var rows []browseRow
	for _, name := range r.Attributes().Names() {
		v, _ := r.Attributes().String(name)
		rows = append(rows, browseRow{field: name, value: v})
	}
	for _, name := range resource.Relations(r.Kind()) {
		rel, err := r.Resolve(name)
		if err != nil {
			continue
		}
		if rel.Len() == 0 {
			rows = append(rows, browseRow{field: iconArrow + " " + name, value: "none"})
		}
		for _, item := range rel.All() {
			rows = append(rows, browseRow{field: iconArrow + " " + name, value: resource.Name(item), target: item})
		}
	}
	title := r.Kind().Singular() + " " + resource.Name(r)
	return browseView{title: title, headers: []string{"", "Field", "Value"}, rows: rows}
}

// Depth returns the number of open views.
func (m BrowseModel) Depth() int { return len(m.stack) }

// Current returns the title of the visible view.
func (m BrowseModel) Current() string { return m.top().title }

func (m BrowseModel) top() *browseView { return &m.stack[len(m.stack)-1] }

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc", "backspace", "left", "h":
			if len(m.stack) == 1 {
				return m, tea.Quit
			}
			m.stack = m.stack[:len(m.stack)-1]
		case "up", "k":
			m.stack = cloneStack(m.stack)
			v := m.top()
			if v.cursor > 0 {
				v.cursor--
				if v.cursor < v.offset {
					v.offset = v.cursor
				}
			}
		case "down", "j":
			m.stack = cloneStack(m.stack)
			v := m.top()
			if v.cursor < len(v.rows)-1 {
				v.cursor++
				if v.cursor >= v.offset+m.Height {
					v.offset = v.cursor - m.Height + 1
				}
			}
		case "enter", "right", "l":
			v := m.top()
			if len(v.rows) == 0 || !v.rows[v.cursor].openable() {
				return m, nil
			}
			m.stack = append(cloneStack(m.stack), detailView(v.rows[v.cursor].target))
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

// cloneStack copies the view stack so earlier model values keep their
// cursor positions.
func cloneStack(s []browseView) []browseView {
	return append([]browseView(nil), s...)
}

func (m BrowseModel) View() string {
	var b strings.Builder
	v := m.top()

	crumbs := make([]string, len(m.stack))
	for i, view := range m.stack {
		crumbs[i] = view.title
	}
	b.WriteString(StyleTitle.Render(strings.Join(crumbs, " "+iconArrow+" ")))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  esc back  q quit"))
	b.WriteString("\n\n")

	if len(v.rows) == 0 {
		b.WriteString(listDimStyle.Render("  (empty)"))
		return b.String()
	}

	end := min(v.offset+m.Height, len(v.rows))
	rows := make([][]string, 0, end-v.offset)
	for i := v.offset; i < end; i++ {
		cursor := "  "
		if i == v.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, v.rows[i].field, v.rows[i].value})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(v.headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := v.offset + row
			if idx >= len(v.rows) {
				return lipgloss.NewStyle()
			}
			r := v.rows[idx]
			style := lipgloss.NewStyle()
			switch {
			case r.target != nil && resource.IsDummy(r.target):
				style = style.Foreground(colorYellow)
			case r.openable():
				style = style.Foreground(colorGreen)
			default:
				style = style.Foreground(colorWhite)
			}
			if idx == v.cursor {
				style = style.Bold(true)
			}
			return style
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", v.cursor+1, len(v.rows))))
	return b.String()
}

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "browse <products|merchants|deals>",
		Short: "Call an endpoint and browse the resource graph interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			call, err := c.run(cmd.Context(), args[0], &q)
			if err != nil {
				return err
			}
			kind := primaryKind(call.Kind())
			results := call.Sorted(kind, q.sortBy, !q.asc)
			if len(results) == 0 {
				printInfo("No %s returned", kind)
				return nil
			}
			title := fmt.Sprintf("%s (%d)", kind, len(results))
			_, err = tea.NewProgram(NewBrowseModel(title, results), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	q.register(cmd)
	return cmd
}
