package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/recipeflow/pkg/recipe"
)

func pickCategories() []recipe.Category {
	return []recipe.Category{
		{Name: "Intermediate product", Items: []recipe.Entry{{ID: "gear", Name: "Iron gear wheel"}}},
		{Name: "Logistics", Items: []recipe.Entry{{ID: "belt", Name: "Transport belt"}, {ID: "inserter", Name: "Inserter"}}},
	}
}

func send(m ItemListModel, msg tea.Msg) (ItemListModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(ItemListModel), cmd
}

func typeKeys(m ItemListModel, s string) ItemListModel {
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func TestItemListModelFilter(t *testing.T) {
	m := NewItemListModel(pickCategories())
	if len(m.visible) != 3 {
		t.Fatalf("visible = %d, want 3", len(m.visible))
	}

	tests := []struct {
		filter string
		want   int
	}{
		{"logi", 2},  // category
		{"GEAR", 1},  // id, case-insensitive
		{"wheel", 1}, // name
		{"in", 2},    // "Intermediate product" and "Inserter"
		{"zzz", 0},
	}
	for _, tt := range tests {
		m.Filter = ""
		m.applyFilter()
		m = typeKeys(m, tt.filter)
		if len(m.visible) != tt.want {
			t.Errorf("filter %q: visible = %d, want %d", tt.filter, len(m.visible), tt.want)
		}
	}
}

func TestItemListModelBackspace(t *testing.T) {
	m := typeKeys(NewItemListModel(pickCategories()), "gearx")
	if len(m.visible) != 0 {
		t.Fatalf("visible = %d, want 0", len(m.visible))
	}
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.Filter != "gear" || len(m.visible) != 1 {
		t.Errorf("after backspace: filter %q, visible %d", m.Filter, len(m.visible))
	}
}

func TestItemListModelSelect(t *testing.T) {
	m := NewItemListModel(pickCategories())

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyDown}) // clamps at the last row
	if m.Cursor != 2 {
		t.Fatalf("Cursor = %d, want 2", m.Cursor)
	}
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyUp})

	m, cmd := send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Selected == nil || m.Selected.ID != "belt" {
		t.Fatalf("Selected = %+v, want belt", m.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit")
	}
}

func TestItemListModelEmptySelection(t *testing.T) {
	m := typeKeys(NewItemListModel(pickCategories()), "zzz")
	m, cmd := send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Selected != nil || cmd != nil {
		t.Error("enter on an empty list should do nothing")
	}

	m, cmd = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil || m.Selected != nil {
		t.Error("esc should quit without a selection")
	}
}

func TestItemListModelView(t *testing.T) {
	m := typeKeys(NewItemListModel(pickCategories()), "belt")
	view := m.View()
	for _, want := range []string{"Select Item", "Transport belt", "Logistics", "[1/1]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "Inserter") {
		t.Error("filtered rows should not be drawn")
	}
}
