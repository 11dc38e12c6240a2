package agent

import (
	"errors"
	"testing"

	"github.com/Mirroar/hivemind-sub000/ipc"
	"github.com/Mirroar/hivemind-sub000/model"
	"github.com/Mirroar/hivemind-sub000/rules"
)

func TestCommandBufferPlaceSite(t *testing.T) {
	terrain := &model.Terrain{}
	terrain.Set(3, 3, model.Wall)
	obs := &model.Observation{
		Terrain: terrain,
		Structures: []model.Structure{
			{ID: "e1", Type: model.Extension, X: 10, Y: 10},
			{ID: "r1", Type: model.Road, X: 11, Y: 10},
		},
		Sites: []model.Site{{Type: model.Road, X: 12, Y: 10}},
	}

	tests := []struct {
		name    string
		typ     model.StructureType
		pos     model.Pos
		blocked bool
	}{
		{"free tile", model.Extension, model.Pos{X: 20, Y: 20}, false},
		{"wall", model.Road, model.Pos{X: 3, Y: 3}, true},
		{"out of bounds", model.Road, model.Pos{X: -1, Y: 3}, true},
		{"existing site", model.Rampart, model.Pos{X: 12, Y: 10}, true},
		{"solid structure", model.Tower, model.Pos{X: 10, Y: 10}, true},
		{"rampart over solid", model.Rampart, model.Pos{X: 10, Y: 10}, false},
		{"rampart over road", model.Rampart, model.Pos{X: 11, Y: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &ipc.CommandsMessage{}
			err := newCommandBuffer(msg, obs).PlaceSite(tt.typ, tt.pos)
			if got := errors.Is(err, rules.ErrPlacementBlocked); got != tt.blocked {
				t.Errorf("PlaceSite(%s, %v) blocked = %v, want %v", tt.typ, tt.pos, got, tt.blocked)
			}
			if want := map[bool]int{true: 0, false: 1}[tt.blocked]; len(msg.Commands) != want {
				t.Errorf("commands = %d, want %d", len(msg.Commands), want)
			}
		})
	}
}

func TestCommandBufferRejectsSecondSiteOnTile(t *testing.T) {
	msg := &ipc.CommandsMessage{}
	c := newCommandBuffer(msg, &model.Observation{Terrain: &model.Terrain{}})
	pos := model.Pos{X: 5, Y: 5}
	if err := c.PlaceSite(model.Road, pos); err != nil {
		t.Fatalf("first PlaceSite: %v", err)
	}
	if err := c.PlaceSite(model.Rampart, pos); !errors.Is(err, rules.ErrPlacementBlocked) {
		t.Errorf("second PlaceSite = %v, want ErrPlacementBlocked", err)
	}
}

func TestCommandBufferDestroyIsIdempotent(t *testing.T) {
	msg := &ipc.CommandsMessage{}
	c := newCommandBuffer(msg, &model.Observation{
		Terrain:    &model.Terrain{},
		Structures: []model.Structure{{ID: "w1", Type: model.ConstructedWall, X: 1, Y: 1}},
	})
	for _, id := range []string{"w1", "w1", "gone"} {
		if err := c.Destroy(id); err != nil {
			t.Errorf("Destroy(%s): %v", id, err)
		}
	}
	if len(msg.Commands) != 1 || msg.Commands[0].ID != "w1" || msg.Commands[0].Kind != ipc.CommandDestroy {
		t.Errorf("commands = %+v, want one destroy of w1", msg.Commands)
	}
}
