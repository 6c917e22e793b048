package completion

import "testing"

func TestList(t *testing.T) {
	items := List(Position{Line: 42, Character: 7})
	if len(items) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(items))
	}
	if items[0].Label != "swagger" || items[0].Kind != KindField || items[0].Detail != "Swagger version" {
		t.Errorf("unexpected first entry %+v", items[0])
	}
	if items[1].Label != "info" || items[1].Kind != KindText || items[1].Detail != "Info object" {
		t.Errorf("unexpected second entry %+v", items[1])
	}

	other := List(Position{})
	for i := range items {
		if items[i] != other[i] {
			t.Errorf("entry %d differs between positions: %+v vs %+v", i, items[i], other[i])
		}
	}
}

func TestListReturnsCopies(t *testing.T) {
	items := List(Position{})
	items[0].Label = "mutated"
	if List(Position{})[0].Label != "swagger" {
		t.Error("mutating a returned entry changed the catalog")
	}
}

func TestResolveIsIdentity(t *testing.T) {
	for _, entry := range List(Position{}) {
		if got := Resolve(entry); got != entry {
			t.Errorf("Resolve(%+v) = %+v", entry, got)
		}
	}
	custom := Entry{Label: "x-custom", Kind: KindText}
	if Resolve(custom) != custom {
		t.Error("Resolve altered an entry outside the catalog")
	}
}
