package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTerrainAt(t *testing.T) {
	terrain := TerrainFromRows(
		"#~..",
		".#~.",
	)

	tests := []struct {
		x, y int
		want TerrainType
	}{
		{0, 0, Wall},
		{1, 0, Swamp},
		{2, 0, Plain},
		{1, 1, Wall},
		{2, 1, Swamp},
		{49, 49, Plain},
	}
	for _, tc := range tests {
		got := terrain.At(tc.x, tc.y)
		if got != tc.want {
			t.Errorf("At(%d, %d) = %d, want %d", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestTerrainAtOutOfBounds(t *testing.T) {
	terrain := &Terrain{}

	// Out-of-bounds should read as Wall so walks stay inside.
	for _, p := range []Pos{{-1, 0}, {0, -1}, {Size, 0}, {0, Size}} {
		if got := terrain.AtPos(p); got != Wall {
			t.Errorf("AtPos(%v) = %d, want Wall", p, got)
		}
	}
}

func TestParseTerrain(t *testing.T) {
	raw := strings.Repeat("0", Size*Size)
	raw = "1" + raw[1:3] + "3" + raw[4:]
	raw = raw[:10] + "2" + raw[11:]

	terrain, err := ParseTerrain(raw)
	if err != nil {
		t.Fatalf("ParseTerrain: %v", err)
	}
	if got := terrain.At(0, 0); got != Wall {
		t.Errorf("At(0,0) = %d, want Wall", got)
	}
	if got := terrain.At(3, 0); got != Wall {
		t.Errorf("At(3,0) = %d, want Wall for wall+swamp mask", got)
	}
	if got := terrain.At(10, 0); got != Swamp {
		t.Errorf("At(10,0) = %d, want Swamp", got)
	}
}

func TestParseTerrainRejectsBadInput(t *testing.T) {
	if _, err := ParseTerrain("000"); err == nil {
		t.Error("ParseTerrain should reject short input")
	}
	bad := strings.Repeat("0", Size*Size-1) + "x"
	if _, err := ParseTerrain(bad); err == nil {
		t.Error("ParseTerrain should reject non-digit tiles")
	}
}

func TestTerrainJSON(t *testing.T) {
	terrain := TerrainFromRows("#~.", "..#")
	b, err := json.Marshal(terrain)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Terrain
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != *terrain {
		t.Error("terrain changed across JSON encoding")
	}
}

func TestHasExit(t *testing.T) {
	rows := make([]string, Size)
	rows[0] = strings.Repeat("#", Size)
	terrain := TerrainFromRows(rows...)
	if terrain.HasExit(Top) {
		t.Error("HasExit(Top) should be false when the top row is all wall")
	}
	if !terrain.HasExit(Bottom) {
		t.Error("HasExit(Bottom) should be true on open ground")
	}
}

func TestPosRangeAndPacking(t *testing.T) {
	a := Pos{X: 3, Y: 4}
	b := Pos{X: 7, Y: 2}
	if got := a.Range(b); got != 4 {
		t.Errorf("Range = %d, want 4", got)
	}
	if got := Unpack(a.Pack()); got != a {
		t.Errorf("Unpack(Pack(%v)) = %v", a, got)
	}
	if n := len((Pos{X: 0, Y: 0}).Neighbors()); n != 3 {
		t.Errorf("corner has %d neighbours, want 3", n)
	}
}

func TestNearestBorder(t *testing.T) {
	tests := []struct {
		p    Pos
		want Direction
	}{
		{Pos{25, 2}, Top},
		{Pos{47, 25}, Right},
		{Pos{25, 48}, Bottom},
		{Pos{1, 25}, Left},
	}
	for _, tc := range tests {
		if got := NearestBorder(tc.p); got != tc.want {
			t.Errorf("NearestBorder(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestQuota(t *testing.T) {
	if got := Quota(Extension, 2); got != 5 {
		t.Errorf("Quota(extension, 2) = %d, want 5", got)
	}
	if got := Quota(Tower, 12); got != 6 {
		t.Errorf("Quota(tower, 12) = %d, want level clamp to 8", got)
	}
	if got := Quota(Controller, 8); got != 0 {
		t.Errorf("Quota(controller, 8) = %d, want 0", got)
	}
}
