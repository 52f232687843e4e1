// Package schema decodes Elasticsearch index mappings into an ordered field
// tree and flattens that tree into field descriptors.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Field is one node of a mapping tree. Sub-fields declared under the
// definition's "properties" key are kept in Properties in source order.
type Field struct {
	Name        string
	Type        string
	Analyzer    string
	Index       OptionalBool
	Store       OptionalBool
	MultiFields bool
	Properties  Properties
}

// Properties is a mapping "properties" object decoded in document order.
type Properties []Field

// UnmarshalJSON decodes a properties object, keeping key insertion order.
func (p *Properties) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("properties: expected object, got %v", tok)
	}

	out := Properties{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		out = append(out, decodeField(name, raw))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

type fieldDefinition struct {
	Type       json.RawMessage `json:"type"`
	Analyzer   json.RawMessage `json:"analyzer"`
	Index      OptionalBool    `json:"index"`
	Store      OptionalBool    `json:"store"`
	Fields     json.RawMessage `json:"fields"`
	Properties json.RawMessage `json:"properties"`
}

// decodeField reads one field definition. Keys holding a value of the wrong
// JSON type are treated as absent so the rest of the mapping survives.
func decodeField(name string, raw json.RawMessage) Field {
	f := Field{Name: name}
	var def fieldDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return f
	}
	f.Type = stringValue(def.Type)
	f.Analyzer = stringValue(def.Analyzer)
	f.Index = def.Index
	f.Store = def.Store

	var fields map[string]json.RawMessage
	if json.Unmarshal(def.Fields, &fields) == nil {
		f.MultiFields = len(fields) > 0
	}
	var props Properties
	if len(def.Properties) > 0 && json.Unmarshal(def.Properties, &props) == nil {
		f.Properties = props
	}
	return f
}

func stringValue(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// Mapping is the "mappings" object of a GET /{index}/_mapping response.
type Mapping struct {
	Properties Properties
}

// UnmarshalJSON accepts both the typeless layout ({"properties": ...}) and the
// pre-7.x layout with a single document type ({"_doc": {"properties": ...}}).
func (m *Mapping) UnmarshalJSON(b []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(b, &top); err != nil {
		return err
	}
	if raw, ok := top["properties"]; ok {
		return json.Unmarshal(raw, &m.Properties)
	}
	if len(top) == 1 {
		for _, raw := range top {
			var typed struct {
				Properties Properties `json:"properties"`
			}
			if err := json.Unmarshal(raw, &typed); err == nil {
				m.Properties = typed.Properties
			}
		}
	}
	return nil
}

// OptionalBool is a mapping flag that may be absent. Legacy string forms are
// accepted: "no" and "false" mean false, anything else ("analyzed",
// "not_analyzed", "true", "yes") means true. Numbers, arrays and objects
// leave the flag unset.
type OptionalBool struct {
	Set   bool
	Value bool
}

// Or returns the flag value, or def when the flag was absent.
func (o OptionalBool) Or(def bool) bool {
	if !o.Set {
		return def
	}
	return o.Value
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalBool) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch s {
	case "null":
		*o = OptionalBool{}
		return nil
	case "true":
		*o = OptionalBool{Set: true, Value: true}
		return nil
	case "false":
		*o = OptionalBool{Set: true, Value: false}
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		*o = OptionalBool{}
		return nil
	}
	switch strings.ToLower(str) {
	case "no", "false":
		*o = OptionalBool{Set: true, Value: false}
	default:
		*o = OptionalBool{Set: true, Value: true}
	}
	return nil
}
