package ipc

import "github.com/Mirroar/hivemind-sub000/model"

// Message types understood by the bridge.
const (
	TypeHello       = "hello"
	TypeAck         = "ack"
	TypeObservation = "observation"
	TypeCommands    = "commands"
	TypePlanQuery   = "plan_query"
	TypePlan        = "plan"
	TypeCostMatrix  = "cost_matrix"
	TypeCosts       = "costs"
	TypeDemolish    = "request_demolition"
	TypeAbandon     = "abandon_territory"
	TypeError       = "error"
)

type HelloMessage struct {
	Player string `json:"player"`
	Shard  string `json:"shard,omitempty"`
}

type AckMessage struct {
	Status string `json:"status"`
}

// ErrorMessage answers a request whose handler failed.
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// ObservationMessage is one territory's state for one tick.
type ObservationMessage = model.Observation

// PlanQuery asks for the stored plan of a territory.
type PlanQuery struct {
	Territory string `json:"territory"`
}

// PlanMessage answers a PlanQuery. Categories is empty until planning is
// finished.
type PlanMessage struct {
	Territory     string                 `json:"territory"`
	Phase         string                 `json:"phase"`
	Finished      bool                   `json:"finished"`
	Center        *model.Pos             `json:"center,omitempty"`
	Categories    map[string][]model.Pos `json:"categories,omitempty"`
	SafeNeighbors []string               `json:"safeNeighbors"`
	Dismantle     []string               `json:"dismantle,omitempty"`
}

// CostMatrixQuery asks for the navigation costs of a planned territory.
type CostMatrixQuery struct {
	Territory string `json:"territory"`
}

// CostsMessage carries 2500 row-major cost bytes, base64 encoded on the wire.
type CostsMessage struct {
	Territory string `json:"territory"`
	Costs     []byte `json:"costs"`
}

// DemolitionRequest allows destroying a queued rampart outright.
type DemolitionRequest struct {
	Territory string `json:"territory"`
	ID        string `json:"id"`
}

// AbandonMessage tears down a territory's record once it is no longer held.
type AbandonMessage struct {
	Territory string `json:"territory"`
}
