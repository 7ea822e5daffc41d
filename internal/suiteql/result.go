package suiteql

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Link is a hypermedia link attached to a response or a record.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// PagedResult is one page of rows returned by the SuiteQL endpoint.
type PagedResult struct {
	Links        []Link   `json:"links,omitempty"`
	Count        int      `json:"count"`
	HasMore      bool     `json:"hasMore"`
	Items        []Record `json:"items"`
	Offset       int      `json:"offset"`
	TotalResults int      `json:"totalResults"`

	// Raw holds the response body as received.
	Raw json.RawMessage `json:"-"`
}

// DecodePagedResult decodes a response body and keeps it as Raw.
func DecodePagedResult(body []byte) (*PagedResult, error) {
	var res PagedResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, err
	}
	res.Raw = append(json.RawMessage(nil), body...)
	return &res, nil
}

// Record is a single row. Keys keep the order of the response object.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord builds a record from alternating key/value pairs.
func NewRecord(kv ...any) Record {
	r := Record{values: make(map[string]any, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(fmt.Sprint(kv[i]), kv[i+1])
	}
	return r
}

// Keys returns field names in response order.
func (r Record) Keys() []string {
	return r.keys
}

// Get returns the value of a field and whether it was present.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Set adds or replaces a field, appending new keys at the end.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.keys)
}

// UnmarshalJSON decodes an object while recording key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	*r = Record{values: make(map[string]any)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: expected key, got %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("record: field %q: %w", key, err)
		}
		r.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes the record with its original key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
