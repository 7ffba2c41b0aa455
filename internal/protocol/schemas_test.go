package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, raw string) {
		t.Helper()
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			t.Fatalf("unmarshal sample: %v", err)
		}
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	eventSchema := compile("event.schema.json")
	frameSchema := compile("frame.schema.json")

	validate(eventSchema, `{
	  "type":"construction:material_delivered",
	  "t":120,
	  "task_id":"T000001",
	  "agent_id":"A1",
	  "material_id":"wood",
	  "pos":[4,-2]
	}`)

	validate(eventSchema, `{
	  "type":"tree:felled",
	  "t":88,
	  "pos":[10,3],
	  "material_dropped":12
	}`)

	validate(eventSchema, `{
	  "type":"construction:tile_placed",
	  "t":300,
	  "task_id":"T000002",
	  "pos":[0,0],
	  "tile_type":"wall",
	  "collaborators":["A1","A2"]
	}`)

	validate(frameSchema, `{
	  "type":"FRAME",
	  "tick":500,
	  "events":[{"type":"door:opened","t":500,"pos":[3,0]}],
	  "world":{"agents":2,"rooms":1,"open_tasks":0,"resources":14,"ambient_temp_c":12.5,"step_ms":0.8}
	}`)
}

func TestSchemas_RejectBadEvent(t *testing.T) {
	p := filepath.Join("..", "..", "schemas", "event.schema.json")
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	var v any
	_ = json.Unmarshal([]byte(`{"type":"no:such_event","t":1}`), &v)
	if err := s.Validate(v); err == nil {
		t.Fatalf("expected unknown event type to fail validation")
	}
	_ = json.Unmarshal([]byte(`{"type":"door:opened"}`), &v)
	if err := s.Validate(v); err == nil {
		t.Fatalf("expected missing tick to fail validation")
	}
}
