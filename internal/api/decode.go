package api

import (
	"encoding/json"
	"fmt"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// collection keys tried, in order, when a list body is an object
var listKeys = []string{"data", "customers", "orders", "stores", "results", "items"}

// decodeList accepts a bare array, {"data": [...]} or one of the other
// wrapper keys. {"data": {"stores": [...]}} is unwrapped once more.
func decodeList(body []byte) ([]models.Record, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return listFrom(raw, 2)
}

func listFrom(raw any, depth int) ([]models.Record, error) {
	switch v := raw.(type) {
	case []any:
		records := make([]models.Record, 0, len(v))
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T, not an object", ErrMalformedResponse, i, item)
			}
			records = append(records, models.Record(obj))
		}
		return records, nil
	case map[string]any:
		if depth == 0 {
			break
		}
		for _, key := range listKeys {
			inner, ok := v[key]
			if !ok || inner == nil {
				continue
			}
			return listFrom(inner, depth-1)
		}
	}
	return nil, fmt.Errorf("%w: expected an array of records, got %T", ErrMalformedResponse, raw)
}

// decodeOne accepts {"data": {...}} or a bare object
func decodeOne(body []byte) (models.Record, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if inner, ok := raw["data"].(map[string]any); ok {
		return models.Record(inner), nil
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	return models.Record(raw), nil
}

// decodeInto decodes an object, unwrapping "data" when present
func decodeInto(body []byte, out any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 && envelope.Data[0] == '{' {
		body = envelope.Data
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
