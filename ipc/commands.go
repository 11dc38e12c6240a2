package ipc

import "github.com/Mirroar/hivemind-sub000/model"

// Command kinds inside a CommandsMessage.
const (
	CommandPlaceSite = "place_site"
	CommandDestroy   = "destroy"
)

// Command is one world mutation.
type Command struct {
	Kind      string              `json:"kind"`
	Structure model.StructureType `json:"structure,omitempty"`
	X         int                 `json:"x,omitempty"`
	Y         int                 `json:"y,omitempty"`
	ID        string              `json:"id,omitempty"`
}

// CommandsMessage is the reply to an observation.
type CommandsMessage struct {
	Territory string    `json:"territory"`
	Tick      int       `json:"tick"`
	Commands  []Command `json:"commands"`
}

func (m *CommandsMessage) AddPlaceSite(t model.StructureType, pos model.Pos) {
	m.Commands = append(m.Commands, Command{Kind: CommandPlaceSite, Structure: t, X: pos.X, Y: pos.Y})
}

func (m *CommandsMessage) AddDestroy(id string) {
	m.Commands = append(m.Commands, Command{Kind: CommandDestroy, ID: id})
}
