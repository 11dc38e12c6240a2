package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Size is the edge length of every territory grid.
const Size = 50

// TerrainType classifies a single tile. Values match the raw terrain mask
// sent by the bridge: bit 0 is wall, bit 1 is swamp.
type TerrainType byte

const (
	Plain TerrainType = 0 // passable ground
	Wall  TerrainType = 1 // impassable natural wall
	Swamp TerrainType = 2 // passable, slow to walk
)

// Terrain is the immutable 50x50 tile grid of one territory.
// Tiles are row-major: Tiles[y*Size + x].
type Terrain struct {
	Tiles [Size * Size]TerrainType
}

// At returns the terrain type at (x, y). Out-of-bounds tiles read as Wall
// so that grid walks never step outside the territory.
func (t *Terrain) At(x, y int) TerrainType {
	if x < 0 || x >= Size || y < 0 || y >= Size {
		return Wall
	}
	return t.Tiles[y*Size+x]
}

func (t *Terrain) AtPos(p Pos) TerrainType { return t.At(p.X, p.Y) }

func (t *Terrain) IsWall(x, y int) bool { return t.At(x, y) == Wall }

// Set overwrites a single tile. Only used while building terrains from
// bridge payloads and tests.
func (t *Terrain) Set(x, y int, v TerrainType) {
	if x < 0 || x >= Size || y < 0 || y >= Size {
		return
	}
	t.Tiles[y*Size+x] = v
}

// ParseTerrain decodes the bridge's compact encoding: 2500 digits, one per
// tile, row-major. A mask of 3 (wall+swamp) is treated as wall.
func ParseTerrain(raw string) (*Terrain, error) {
	if len(raw) != Size*Size {
		return nil, fmt.Errorf("terrain: want %d tiles, got %d", Size*Size, len(raw))
	}
	t := &Terrain{}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c < '0' || c > '3' {
			return nil, fmt.Errorf("terrain: bad tile %q at %d", c, i)
		}
		v := TerrainType(c - '0')
		if v&Wall != 0 {
			v = Wall
		}
		t.Tiles[i] = v
	}
	return t, nil
}

// TerrainFromRows builds a terrain from up to 50 strings where '#' is wall,
// '~' is swamp and anything else is plain. Missing rows/columns are plain.
func TerrainFromRows(rows ...string) *Terrain {
	t := &Terrain{}
	for y, row := range rows {
		if y >= Size {
			break
		}
		for x := 0; x < len(row) && x < Size; x++ {
			switch row[x] {
			case '#':
				t.Tiles[y*Size+x] = Wall
			case '~':
				t.Tiles[y*Size+x] = Swamp
			}
		}
	}
	return t
}

// String returns the compact digit encoding accepted by ParseTerrain.
func (t *Terrain) String() string {
	var b strings.Builder
	b.Grow(Size * Size)
	for _, v := range t.Tiles {
		b.WriteByte('0' + byte(v))
	}
	return b.String()
}

func (t Terrain) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Terrain) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("terrain: %w", err)
	}
	parsed, err := ParseTerrain(raw)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}

// HasExit reports whether any border tile on side d is walkable.
func (t *Terrain) HasExit(d Direction) bool {
	for _, p := range BorderTiles(d) {
		if t.AtPos(p) != Wall {
			return true
		}
	}
	return false
}
