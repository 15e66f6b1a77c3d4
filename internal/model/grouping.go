package model

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// ChargeGroup holds the bills sharing one bill type, in insertion order.
type ChargeGroup struct {
	BillType string
	Charges  []Bill
}

// ChargeGroups is an order-preserving multi-map from bill type to bills.
// Groups appear in first-seen order and marshal as a JSON object whose keys
// keep that order.
type ChargeGroups []ChargeGroup

// Add appends a bill to the group for billType, creating the group at the
// end when it is new.
func (g *ChargeGroups) Add(billType string, bill Bill) {
	for i := range *g {
		if (*g)[i].BillType == billType {
			(*g)[i].Charges = append((*g)[i].Charges, bill)
			return
		}
	}
	*g = append(*g, ChargeGroup{BillType: billType, Charges: []Bill{bill}})
}

// Get returns the bills for billType.
func (g ChargeGroups) Get(billType string) ([]Bill, bool) {
	for _, grp := range g {
		if grp.BillType == billType {
			return grp.Charges, true
		}
	}
	return nil, false
}

// MarshalJSON implements json.Marshaler.
func (g ChargeGroups) MarshalJSON() ([]byte, error) {
	keys := make([]string, len(g))
	values := make([]any, len(g))
	for i, grp := range g {
		keys[i] = grp.BillType
		charges := grp.Charges
		if charges == nil {
			charges = []Bill{}
		}
		values[i] = charges
	}
	return marshalOrdered(keys, values)
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *ChargeGroups) UnmarshalJSON(data []byte) error {
	out := ChargeGroups{}
	err := unmarshalOrdered(data, func(key string, raw json.RawMessage) error {
		var bills []Bill
		if err := json.Unmarshal(raw, &bills); err != nil {
			return eris.Wrapf(err, "model: decode charges for %q", key)
		}
		out = append(out, ChargeGroup{BillType: key, Charges: bills})
		return nil
	})
	if err != nil {
		return err
	}
	*g = out
	return nil
}

// TypeTotal is the rounded total for one bill type.
type TypeTotal struct {
	BillType string
	Total    float64
}

// TypeTotals is an ordered list of per-type totals, marshalled as a JSON
// object in slice order.
type TypeTotals []TypeTotal

// Get returns the total for billType.
func (t TypeTotals) Get(billType string) (float64, bool) {
	for _, tt := range t {
		if tt.BillType == billType {
			return tt.Total, true
		}
	}
	return 0, false
}

// MarshalJSON implements json.Marshaler.
func (t TypeTotals) MarshalJSON() ([]byte, error) {
	keys := make([]string, len(t))
	values := make([]any, len(t))
	for i, tt := range t {
		keys[i] = tt.BillType
		values[i] = tt.Total
	}
	return marshalOrdered(keys, values)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *TypeTotals) UnmarshalJSON(data []byte) error {
	out := TypeTotals{}
	err := unmarshalOrdered(data, func(key string, raw json.RawMessage) error {
		var total float64
		if err := json.Unmarshal(raw, &total); err != nil {
			return eris.Wrapf(err, "model: decode total for %q", key)
		}
		out = append(out, TypeTotal{BillType: key, Total: total})
		return nil
	})
	if err != nil {
		return err
	}
	*t = out
	return nil
}

func marshalOrdered(keys []string, values []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, eris.Wrap(err, "model: marshal key")
		}
		vb, err := json.Marshal(values[i])
		if err != nil {
			return nil, eris.Wrapf(err, "model: marshal value for %q", k)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// unmarshalOrdered walks a JSON object key by key in document order.
func unmarshalOrdered(data []byte, fn func(key string, raw json.RawMessage) error) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return eris.Wrap(err, "model: read opening token")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return eris.Errorf("model: expected '{', got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return eris.Wrap(err, "model: read key")
		}
		key, ok := tok.(string)
		if !ok {
			return eris.Errorf("model: expected string key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return eris.Wrapf(err, "model: read value for %q", key)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return eris.Wrap(err, "model: read closing token")
	}
	return nil
}
