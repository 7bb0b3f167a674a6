package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

type reflectSample struct {
	Name  string `json:"name" jsonschema:"title=name,description=The name."`
	Count int    `json:"count" jsonschema:"title=count"`
}

func (s reflectSample) String() string {
	return JSON(s)
}

func TestStringify(t *testing.T) {
	if got := Stringify(nil); got != "" {
		t.Errorf("expect empty string for nil schema, but got %q", got)
	}
	if got := Stringify(String("hello")); got != "hello" {
		t.Errorf("expect hello, but got %q", got)
	}
	if got := Stringify(reflectSample{Name: "a", Count: 2}); got != `{"name":"a","count":2}` {
		t.Errorf("unexpected json %s", got)
	}
}

func TestReflect(t *testing.T) {
	s := Reflect[reflectSample]()
	bs, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal schema failed: %v", err)
	}
	raw := string(bs)
	if strings.Contains(raw, "$ref") || strings.Contains(raw, "$schema") {
		t.Errorf("schema should be self contained, got %s", raw)
	}
	if !strings.Contains(raw, `"additionalProperties":false`) {
		t.Errorf("schema should forbid additional properties, got %s", raw)
	}
	var decoded map[string]any
	if err := json.Unmarshal(bs, &decoded); err != nil {
		t.Fatalf("unmarshal schema failed: %v", err)
	}
	required, _ := decoded["required"].([]any)
	if len(required) != 2 {
		t.Errorf("expect 2 required fields, but got %v", decoded["required"])
	}
}
