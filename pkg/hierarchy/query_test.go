package hierarchy

import (
	"testing"
)

func TestLocations(t *testing.T) {
	h := buildFixture(t)

	locations := h.Locations()
	if len(locations) != 2 {
		t.Fatalf("Expected 2 locations, got %d", len(locations))
	}
	if locations[0].ID != 1 || locations[1].ID != 6 {
		t.Errorf("Locations out of fetch order: %v, %v", locations[0].ID, locations[1].ID)
	}
}

func TestApplicationsFiltersByType(t *testing.T) {
	h := buildFixture(t)

	loc, _ := h.Node(1)
	apps := h.Applications(loc)
	if len(apps) != 2 {
		t.Fatalf("Expected 2 applications, got %d", len(apps))
	}
	for _, app := range apps {
		if app.Type != NodeTypeWaterAbstraction && app.Type != NodeTypeWaterDistribution {
			t.Errorf("Unexpected application type %q", app.Type)
		}
	}
}

func TestApplicationsIgnoresOtherChildren(t *testing.T) {
	nodes := []NodeRecord{
		{ID: 1, Name: "Plant", Type: "location"},
		{ID: 2, Name: "Office", Type: "building", ParentID: intPtr(1)},
	}
	h, err := NewFromRecords(newStubHub(), nodes, nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	loc, _ := h.Node(1)
	if apps := h.Applications(loc); len(apps) != 0 {
		t.Errorf("Expected no applications for non-water children, got %d", len(apps))
	}
}

func TestModulesAreUntypedPassthrough(t *testing.T) {
	h := buildFixture(t)

	app, _ := h.Node(2)
	modules := h.Modules(app)
	if len(modules) != 1 || modules[0].ID != 3 {
		t.Fatalf("Expected module 3 below application 2, got %v", modules)
	}
}

func TestInstrumentationsAndAssets(t *testing.T) {
	h := buildFixture(t)

	module, _ := h.Node(5)
	instrs := h.Instrumentations(module)
	if len(instrs) != 1 || instrs[0].ID != 11 {
		t.Fatalf("Expected instrumentation 11 on module 5, got %v", instrs)
	}

	assets := h.Assets(instrs[0])
	if len(assets) != 2 {
		t.Fatalf("Expected 2 assets on instrumentation 11, got %d", len(assets))
	}
}

func TestAssetBySerial(t *testing.T) {
	h := buildFixture(t)

	if a := h.AssetBySerial("SN-101"); a == nil || a.ID != 101 {
		t.Errorf("Expected asset 101 for SN-101, got %v", a)
	}
	if a := h.AssetBySerial("SN-404"); a != nil {
		t.Errorf("Expected nil sentinel for unknown serial, got %v", a)
	}
}

func TestAllInstrumentationsOrder(t *testing.T) {
	h := buildFixture(t)

	instrs := h.AllInstrumentations()
	if len(instrs) != 2 || instrs[0].ID != 10 || instrs[1].ID != 11 {
		t.Errorf("Expected instrumentations in fetch order [10 11], got %v", instrs)
	}
}
