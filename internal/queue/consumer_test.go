package queue

import "testing"

func strPtr(s string) *string { return &s }

func TestTicketLinesGroupsByDepartment(t *testing.T) {
	ev := OrderPlacedEvent{
		Items: []OrderEventItem{
			{Name: "Margherita", Quantity: 2, Department: "KITCHEN"},
			{Name: "Lemonade", Quantity: 1, Department: "BAR"},
			{Name: "Carbonara", Quantity: 1, Department: "KITCHEN", Notes: strPtr("no pepper")},
		},
	}
	lines := ticketLines(ev)
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0].dept != "KITCHEN" || lines[1].dept != "BAR" {
		t.Fatalf("department order = %s, %s; want KITCHEN, BAR", lines[0].dept, lines[1].dept)
	}
	if want := "2x Margherita, 1x Carbonara [no pepper]"; lines[0].items != want {
		t.Fatalf("kitchen line = %q, want %q", lines[0].items, want)
	}
	if want := "1x Lemonade"; lines[1].items != want {
		t.Fatalf("bar line = %q, want %q", lines[1].items, want)
	}
}

func TestTicketLinesSelections(t *testing.T) {
	ev := OrderPlacedEvent{
		Items: []OrderEventItem{
			{Name: "Burger", Quantity: 1, Department: "KITCHEN", Selections: strPtr(`[{"name":"extra cheese"}]`)},
		},
	}
	lines := ticketLines(ev)
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	if want := `1x Burger ([{"name":"extra cheese"}])`; lines[0].items != want {
		t.Fatalf("line = %q, want %q", lines[0].items, want)
	}
}
