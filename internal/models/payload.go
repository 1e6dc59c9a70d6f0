package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Payload is the inbound webhook body: arbitrary field names mapped to
// scalar or list values. Key order is preserved from the raw body so field
// processing is deterministic across requests.
type Payload struct {
	keys   []string
	values map[string]any
}

func NewPayload() *Payload {
	return &Payload{values: make(map[string]any)}
}

func (p *Payload) Set(key string, value any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Keys returns the field names in original body order.
func (p *Payload) Keys() []string {
	return p.keys
}

func (p *Payload) Len() int {
	return len(p.keys)
}

// Get reports the raw value and whether the field is present. A field set
// to JSON null is present with a nil value.
func (p *Payload) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

func (p *Payload) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// GetString returns the stringified value of a field, or "" when absent.
func (p *Payload) GetString(key string) string {
	v, ok := p.values[key]
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// UnmarshalJSON decodes a JSON object while recording top-level key order.
func (p *Payload) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("payload must be a JSON object")
	}

	p.keys = nil
	p.values = make(map[string]any)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in payload", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		p.Set(key, value)
	}

	// consume the closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// ParseForm decodes a URL-encoded body, keeping the order pairs appear in.
// url.ParseQuery would lose it.
func ParseForm(body string) (*Payload, error) {
	p := NewPayload()
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("decode form key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("decode form value for %q: %w", key, err)
		}
		p.Set(key, value)
	}
	return p, nil
}

// FormatValue is the universal stringification rule for field values:
// lists are joined with ", ", null becomes "", numbers keep their shortest
// decimal form.
func FormatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case []any:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			parts = append(parts, FormatValue(item))
		}
		return strings.Join(parts, ", ")
	case json.Number:
		return value.String()
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
