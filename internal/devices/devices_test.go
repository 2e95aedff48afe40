package devices_test

import (
	"testing"

	"fitfaker/internal/devices"
)

func TestLookupDefaultKey(t *testing.T) {
	d, err := devices.Lookup(devices.DefaultKey)
	if err != nil {
		t.Fatalf("lookup default: %v", err)
	}
	if d.ProductID != 3122 {
		t.Fatalf("default product id = %d", d.ProductID)
	}
}

func TestLookupNormalizesKey(t *testing.T) {
	d, err := devices.Lookup(" Edge_1040 ")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if d.Name != "Edge 1040" {
		t.Fatalf("name = %q", d.Name)
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := devices.Lookup("edge_9999"); err == nil {
		t.Fatal("expected error for unknown device")
	}
}

func TestListPopularSubset(t *testing.T) {
	popular := devices.List(false)
	all := devices.List(true)
	if len(popular) == 0 || len(popular) >= len(all) {
		t.Fatalf("popular=%d all=%d", len(popular), len(all))
	}
	for _, d := range popular {
		if !d.Popular {
			t.Fatalf("%s listed as popular", d.Key)
		}
	}
}

func TestRegistryCoherent(t *testing.T) {
	seenKey := make(map[string]bool)
	seenProduct := make(map[uint16]bool)
	for _, d := range devices.List(true) {
		if seenKey[d.Key] {
			t.Fatalf("duplicate key %q", d.Key)
		}
		if seenProduct[d.ProductID] {
			t.Fatalf("duplicate product id %d", d.ProductID)
		}
		seenKey[d.Key] = true
		seenProduct[d.ProductID] = true
		if d.ProductID == 0 {
			t.Fatalf("%s has no product id", d.Key)
		}
	}
}
