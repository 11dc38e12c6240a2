package plan

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/Mirroar/hivemind-sub000/model"
)

const recordFormat = 1

// matrixCells is the length of every persisted distance matrix.
const matrixCells = model.Size * model.Size

// recordV1 is the persisted layout of a Record. Positions are packed
// indices and matrices are RLE strings, keeping the blob small.
type recordV1 struct {
	Format    int    `json:"format"`
	Territory string `json:"territory"`
	Version   int    `json:"version"`
	Phase     Phase  `json:"phase"`

	Center *model.Pos       `json:"center,omitempty"`
	Plan   map[string][]int `json:"plan,omitempty"`

	TerrainDigest string `json:"terrain_digest,omitempty"`
	WallDist      string `json:"wall_dist,omitempty"`
	BorderDist    string `json:"border_dist,omitempty"`
	DistStage     uint8  `json:"dist_stage,omitempty"`
	DistLevel     uint8  `json:"dist_level,omitempty"`
	HasDistance   bool   `json:"has_distance,omitempty"`

	Safety        [4]bool  `json:"safety"`
	SafetyKnown   bool     `json:"safety_known,omitempty"`
	SafetyTick    int      `json:"safety_tick,omitempty"`
	SafeNeighbors []string `json:"safe_neighbors,omitempty"`

	Attempts        int    `json:"attempts,omitempty"`
	LastAttemptTick int    `json:"last_attempt_tick,omitempty"`
	RunID           string `json:"run_id,omitempty"`
	FinalizedTick   int    `json:"finalized_tick,omitempty"`

	ReplanNextTick    bool            `json:"replan_next_tick,omitempty"`
	MisplacedSpawn    bool            `json:"misplaced_spawn,omitempty"`
	Dismantle         map[string]bool `json:"dismantle,omitempty"`
	LastReconcileTick int             `json:"last_reconcile_tick"`
}

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// Encode serializes a record as zstd-compressed JSON.
func Encode(r *Record) ([]byte, error) {
	w := recordV1{
		Format:            recordFormat,
		Territory:         r.Territory,
		Version:           r.Version,
		Phase:             r.Phase,
		TerrainDigest:     r.TerrainDigest,
		Safety:            r.Safety,
		SafetyKnown:       r.SafetyKnown,
		SafetyTick:        r.SafetyTick,
		SafeNeighbors:     r.SafeNeighbors,
		Attempts:          r.Attempts,
		LastAttemptTick:   r.LastAttemptTick,
		RunID:             r.RunID,
		FinalizedTick:     r.FinalizedTick,
		ReplanNextTick:    r.ReplanNextTick,
		MisplacedSpawn:    r.MisplacedSpawn,
		Dismantle:         r.Dismantle,
		LastReconcileTick: r.LastReconcileTick,
	}
	if r.Plan != nil {
		c := r.Plan.Center
		w.Center = &c
		w.Plan = r.Plan.Packed()
	}
	if d := r.Distance; d != nil {
		w.HasDistance = true
		w.WallDist = EncodeRLE(d.Wall)
		w.BorderDist = EncodeRLE(d.Border)
		w.DistStage = d.Stage
		w.DistLevel = d.Level
	}

	raw, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("marshal record %s: %w", r.Territory, err)
	}
	return encoder.EncodeAll(raw, nil), nil
}

// Decode is the inverse of Encode.
func Decode(b []byte) (*Record, error) {
	raw, err := decoder.DecodeAll(b, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress record: %w", err)
	}
	var w recordV1
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	if w.Format != recordFormat {
		return nil, fmt.Errorf("record %s: unsupported format %d", w.Territory, w.Format)
	}

	r := &Record{
		Territory:         w.Territory,
		Version:           w.Version,
		Phase:             w.Phase,
		TerrainDigest:     w.TerrainDigest,
		Safety:            w.Safety,
		SafetyKnown:       w.SafetyKnown,
		SafetyTick:        w.SafetyTick,
		SafeNeighbors:     w.SafeNeighbors,
		Attempts:          w.Attempts,
		LastAttemptTick:   w.LastAttemptTick,
		RunID:             w.RunID,
		FinalizedTick:     w.FinalizedTick,
		ReplanNextTick:    w.ReplanNextTick,
		MisplacedSpawn:    w.MisplacedSpawn,
		Dismantle:         w.Dismantle,
		LastReconcileTick: w.LastReconcileTick,
	}
	if r.Dismantle == nil {
		r.Dismantle = make(map[string]bool)
	}
	if w.Center != nil {
		p, err := FromPacked(*w.Center, w.Plan)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", w.Territory, err)
		}
		r.Plan = p
	}
	if w.HasDistance {
		wall, err := DecodeRLE(w.WallDist, matrixCells)
		if err != nil {
			return nil, fmt.Errorf("record %s wall distance: %w", w.Territory, err)
		}
		// The border matrix is seeded only once the wall stage is done.
		var border []uint8
		if w.DistStage != DistanceStageWall || w.BorderDist != "" {
			if border, err = DecodeRLE(w.BorderDist, matrixCells); err != nil {
				return nil, fmt.Errorf("record %s border distance: %w", w.Territory, err)
			}
		}
		r.Distance = &DistanceState{Wall: wall, Border: border, Stage: w.DistStage, Level: w.DistLevel}
	}
	return r, nil
}
