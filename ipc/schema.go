package ipc

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Mirroar/hivemind-sub000/model"
)

//go:embed schemas/observation.schema.json
var observationSchemaSrc string

var observationSchema = jsonschema.MustCompileString("observation.schema.json", observationSchemaSrc)

// DecodeObservation validates raw against the observation schema before
// decoding, so handlers never see half-formed territories.
func DecodeObservation(raw json.RawMessage) (*model.Observation, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("observation: %w", err)
	}
	if err := observationSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("observation: %w", err)
	}
	var obs model.Observation
	if err := json.Unmarshal(raw, &obs); err != nil {
		return nil, fmt.Errorf("observation: %w", err)
	}
	return &obs, nil
}
