package cli

import (
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/popgraph/pkg/resource"
)

func browseFixture(t *testing.T) []resource.Resource {
	t.Helper()
	s := resource.NewStore()
	add := func(kind resource.Kind, raw map[string]any) resource.Resource {
		r, err := s.Internalize(kind, raw)
		if err != nil {
			t.Fatal(err)
		}
		return r
	}
	p := add(resource.KindProduct, map[string]any{"id": json.Number("1"), "name": "Widget", "category": json.Number("10"), "brand": json.Number("99")}).(*resource.Product)
	o := add(resource.KindOffer, map[string]any{"id": json.Number("100"), "name": "Widget offer", "merchant": json.Number("5")}).(*resource.Offer)
	s.Link(p, o)
	add(resource.KindProduct, map[string]any{"id": json.Number("2"), "name": "Gizmo"})
	add(resource.KindCategory, map[string]any{"id": json.Number("10"), "name": "Tools"})
	add(resource.KindMerchant, map[string]any{"id": json.Number("5"), "name": "Acme"})
	return s.Collection(resource.KindProduct)
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestBrowseModel_View(t *testing.T) {
	m := NewBrowseModel("products (2)", browseFixture(t))
	view := m.View()
	for _, want := range []string{"products (2)", "Widget", "Gizmo", "[1/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestBrowseModel_DrillDown(t *testing.T) {
	m := press(NewBrowseModel("products", browseFixture(t)), "enter").(BrowseModel)
	if m.Depth() != 2 || m.Current() != "product Widget" {
		t.Fatalf("after enter: depth %d, current %q", m.Depth(), m.Current())
	}
	view := m.View()
	for _, want := range []string{"products → product Widget", "offers", "Widget offer", "Tools", "brands with id"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q:\n%s", want, view)
		}
	}

	// Rows: brand, category, id, name (attributes in ingest order), then the
	// offer, the category and the brand. Row 4 is the offer.
	m = press(m, "down", "down", "down", "down", "enter").(BrowseModel)
	if m.Current() != "offer Widget offer" {
		t.Fatalf("current = %q, want the offer", m.Current())
	}

	m = press(m, "esc", "esc").(BrowseModel)
	if m.Depth() != 1 {
		t.Errorf("depth after esc = %d, want 1", m.Depth())
	}
}

func TestBrowseModel_MissingReferenceDoesNotOpen(t *testing.T) {
	m := press(NewBrowseModel("products", browseFixture(t)), "enter").(BrowseModel)
	// Last row is the unresolved brand 99.
	m = press(m, "down", "down", "down", "down", "down", "down", "enter").(BrowseModel)
	if m.Depth() != 2 {
		t.Errorf("depth = %d, a placeholder must not open", m.Depth())
	}
}

func TestBrowseModel_CursorBounds(t *testing.T) {
	m := press(NewBrowseModel("products", browseFixture(t)), "up", "down", "down", "down").(BrowseModel)
	if !strings.Contains(m.View(), "[2/2]") {
		t.Errorf("cursor should stop at the last row:\n%s", m.View())
	}
}

func TestBrowseModel_Quit(t *testing.T) {
	m := NewBrowseModel("products", browseFixture(t))
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q should quit")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc}); cmd == nil {
		t.Error("esc at the root view should quit")
	}
}

func TestBrowseModel_Empty(t *testing.T) {
	m := NewBrowseModel("nothing", nil)
	m = press(m, "enter", "down").(BrowseModel)
	if !strings.Contains(m.View(), "(empty)") {
		t.Errorf("View() = %q", m.View())
	}
}
