package agent

import (
	"github.com/Mirroar/hivemind-sub000/ipc"
	"github.com/Mirroar/hivemind-sub000/model"
	"github.com/Mirroar/hivemind-sub000/rules"
)

// commandBuffer collects the reconciler's mutations into the reply
// message. It rejects placements the bridge would reject, using the
// observation as its view of the world.
type commandBuffer struct {
	msg     *ipc.CommandsMessage
	terrain *model.Terrain
	sites   map[model.Pos]bool
	solid   map[model.Pos]bool
	alive   map[string]bool
}

func newCommandBuffer(msg *ipc.CommandsMessage, obs *model.Observation) *commandBuffer {
	c := &commandBuffer{
		msg:     msg,
		terrain: obs.Terrain,
		sites:   make(map[model.Pos]bool, len(obs.Sites)),
		solid:   make(map[model.Pos]bool),
		alive:   make(map[string]bool, len(obs.Structures)),
	}
	for _, s := range obs.Sites {
		c.sites[s.Position()] = true
	}
	for _, s := range obs.Structures {
		c.alive[s.ID] = true
		if !sharesTile(s.Type) {
			c.solid[s.Position()] = true
		}
	}
	return c
}

// sharesTile reports whether t can sit on a tile with another structure.
func sharesTile(t model.StructureType) bool {
	switch t {
	case model.Road, model.Rampart, model.Container:
		return true
	}
	return false
}

func (c *commandBuffer) PlaceSite(t model.StructureType, pos model.Pos) error {
	if !pos.InBounds() || c.terrain.IsWall(pos.X, pos.Y) || c.sites[pos] {
		return rules.ErrPlacementBlocked
	}
	if t != model.Rampart && c.solid[pos] {
		return rules.ErrPlacementBlocked
	}
	c.msg.AddPlaceSite(t, pos)
	c.sites[pos] = true
	return nil
}

func (c *commandBuffer) Destroy(id string) error {
	if !c.alive[id] {
		return nil
	}
	c.msg.AddDestroy(id)
	delete(c.alive, id)
	return nil
}
