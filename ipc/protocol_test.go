package ipc

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/Mirroar/hivemind-sub000/model"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	env, err := NewEnvelope(TypePlanQuery, PlanQuery{Territory: "W1N1"})
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	if err := WriteEnvelope(&buf, env); err != nil {
		t.Fatalf("WriteEnvelope: %v", err)
	}
	got, err := ReadEnvelope(&buf)
	if err != nil {
		t.Fatalf("ReadEnvelope: %v", err)
	}
	if got.Type != TypePlanQuery {
		t.Errorf("Type = %q, want %q", got.Type, TypePlanQuery)
	}
	var q PlanQuery
	if err := json.Unmarshal(got.Data, &q); err != nil || q.Territory != "W1N1" {
		t.Errorf("Data = %s, err %v", got.Data, err)
	}
}

func TestReadEnvelopeRejectsBadLength(t *testing.T) {
	for _, n := range []uint32{0, maxFrame + 1} {
		var buf bytes.Buffer
		binary.Write(&buf, binary.LittleEndian, n)
		if _, err := ReadEnvelope(&buf); err == nil {
			t.Errorf("ReadEnvelope accepted length %d", n)
		}
	}
}

func TestConnectionDispatchesHandlers(t *testing.T) {
	server, client := net.Pipe()
	c := NewConnection(server, nil)
	c.RegisterHandler(TypeHello, func(env Envelope) (*Envelope, error) {
		var hello HelloMessage
		if err := json.Unmarshal(env.Data, &hello); err != nil {
			return nil, err
		}
		reply, err := NewEnvelope(TypeAck, AckMessage{Status: "ok " + hello.Player})
		return &reply, err
	})
	go c.ReadLoop()
	defer client.Close()

	env, _ := NewEnvelope(TypeHello, HelloMessage{Player: "tester"})
	if err := WriteEnvelope(client, env); err != nil {
		t.Fatalf("WriteEnvelope: %v", err)
	}
	got, err := ReadEnvelope(client)
	if err != nil {
		t.Fatalf("ReadEnvelope: %v", err)
	}
	var ack AckMessage
	if err := json.Unmarshal(got.Data, &ack); err != nil {
		t.Fatal(err)
	}
	if got.Type != TypeAck || ack.Status != "ok tester" {
		t.Errorf("reply = %s %+v", got.Type, ack)
	}
}

func validObservation() map[string]any {
	return map[string]any{
		"tick":      12,
		"territory": "W1N1",
		"level":     3,
		"terrain":   strings.Repeat("0", 2500),
		"sources":   []any{map[string]any{"x": 10, "y": 12}},
		"structures": []any{
			map[string]any{"id": "s1", "type": "spawn", "x": 25, "y": 25, "hits": 5000, "hitsMax": 5000},
		},
		"intel": []any{
			map[string]any{"name": "W1N1", "exits": map[string]any{"top": "W1N2"}, "owned": true},
		},
	}
}

func TestDecodeObservation(t *testing.T) {
	raw, _ := json.Marshal(validObservation())
	obs, err := DecodeObservation(raw)
	if err != nil {
		t.Fatalf("DecodeObservation: %v", err)
	}
	if obs.Territory != "W1N1" || obs.Level != 3 || obs.Terrain == nil {
		t.Errorf("decoded %+v", obs)
	}
	if got := obs.Intel[0].Exits[model.Top]; got != "W1N2" {
		t.Errorf("top exit = %q, want W1N2", got)
	}
	if len(obs.StructuresOfType(model.Spawn)) != 1 {
		t.Error("spawn not decoded")
	}
}

func TestDecodeObservationRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
	}{
		{"missing territory", func(m map[string]any) { delete(m, "territory") }},
		{"level too high", func(m map[string]any) { m["level"] = 9 }},
		{"short terrain", func(m map[string]any) { m["terrain"] = "000" }},
		{"bad terrain digit", func(m map[string]any) { m["terrain"] = strings.Repeat("7", 2500) }},
		{"structure off grid", func(m map[string]any) {
			m["structures"] = []any{map[string]any{"id": "x", "type": "road", "x": 50, "y": 1}}
		}},
		{"unknown exit direction", func(m map[string]any) {
			m["intel"] = []any{map[string]any{"name": "A", "exits": map[string]any{"up": "B"}}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validObservation()
			tt.mutate(m)
			raw, _ := json.Marshal(m)
			if _, err := DecodeObservation(raw); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestCommandsMessage(t *testing.T) {
	var m CommandsMessage
	m.AddPlaceSite(model.Tower, model.Pos{X: 3, Y: 4})
	m.AddDestroy("abc")
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	want := `"commands":[{"kind":"place_site","structure":"tower","x":3,"y":4},{"kind":"destroy","id":"abc"}]`
	if !strings.Contains(string(raw), want) {
		t.Errorf("json = %s, want it to contain %s", raw, want)
	}
}

func TestConnectionRepliesWithErrorEnvelope(t *testing.T) {
	server, client := net.Pipe()
	c := NewConnection(server, nil)
	c.RegisterHandler(TypePlanQuery, func(env Envelope) (*Envelope, error) {
		return nil, errors.New("no such territory")
	})
	go c.ReadLoop()
	defer client.Close()

	env, _ := NewEnvelope(TypePlanQuery, PlanQuery{Territory: "W9N9"})
	if err := WriteEnvelope(client, env); err != nil {
		t.Fatalf("WriteEnvelope: %v", err)
	}
	got, err := ReadEnvelope(client)
	if err != nil {
		t.Fatalf("ReadEnvelope: %v", err)
	}
	var msg ErrorMessage
	if err := json.Unmarshal(got.Data, &msg); err != nil {
		t.Fatal(err)
	}
	if got.Type != TypeError || msg.Type != TypePlanQuery || msg.Error != "no such territory" {
		t.Errorf("reply = %s %+v", got.Type, msg)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	c := NewConnection(server, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Serve(ctx)
		close(done)
	}()
	cancel()
	<-done
}
