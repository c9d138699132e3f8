package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/recipeflow/pkg/recipe"
	"github.com/matzehuels/recipeflow/pkg/render"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ItemListModel - Interactive item selection
// =============================================================================

// pickRow is one selectable line: an item with its category.
type pickRow struct {
	Category string
	recipe.Entry
}

// ItemListModel is the bubbletea model for interactive item selection.
// Typing narrows the list to rows whose ID, name or category contains the
// filter text.
type ItemListModel struct {
	Rows     []pickRow
	Filter   string
	Cursor   int
	Offset   int
	Height   int
	Selected *recipe.Entry

	visible []int
}

// NewItemListModel creates a list over every craftable item of cats.
func NewItemListModel(cats []recipe.Category) ItemListModel {
	m := ItemListModel{Height: 15}
	for _, c := range cats {
		for _, e := range c.Items {
			m.Rows = append(m.Rows, pickRow{Category: c.Name, Entry: e})
		}
	}
	m.applyFilter()
	return m
}

func (m *ItemListModel) applyFilter() {
	m.visible = nil
	f := strings.ToLower(m.Filter)
	for i, r := range m.Rows {
		if f == "" ||
			strings.Contains(strings.ToLower(r.ID), f) ||
			strings.Contains(strings.ToLower(r.Name), f) ||
			strings.Contains(strings.ToLower(r.Category), f) {
			m.visible = append(m.visible, i)
		}
	}
	m.Cursor, m.Offset = 0, 0
}

func (m ItemListModel) Init() tea.Cmd {
	return nil
}

func (m ItemListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown:
			if m.Cursor < len(m.visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeyEnter:
			if len(m.visible) == 0 {
				return m, nil
			}
			e := m.Rows[m.visible[m.Cursor]].Entry
			m.Selected = &e
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.Filter != "" {
				r := []rune(m.Filter)
				m.Filter = string(r[:len(r)-1])
				m.applyFilter()
			}
		case tea.KeyRunes:
			m.Filter += string(msg.Runes)
			m.applyFilter()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m ItemListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Item"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  type to filter  esc quit"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("filter: ") + StyleValue.Render(m.Filter))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.visible))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rows[m.visible[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, r.Name, r.ID, r.Category})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Item", "ID", "Category").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col >= 2 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	pos := 0
	if len(m.visible) > 0 {
		pos = m.Cursor + 1
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", pos, len(m.visible))))

	return b.String()
}

// =============================================================================
// pick command
// =============================================================================

// pickCommand creates the pick command.
func (c *CLI) pickCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose an item interactively and render its flow graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := render.ParseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats
			opts.barrels = c.barrels(cmd, opts.barrels)

			db, err := c.loadDatabase()
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewItemListModel(db.Categories()), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			sel := final.(ItemListModel).Selected
			if sel == nil {
				printInfo(cmd.OutOrStdout(), "Nothing selected")
				return nil
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), sel.ID, opts)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", render.FormatSVG, "output format(s): svg, png, pdf, dot, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show in/out rates on nodes")
	cmd.Flags().BoolVar(&opts.barrels, "barrels", false, "count liquids in barrels (50 units each)")

	return cmd
}
