package classifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

var errNotObject = errors.New("response is not a JSON object")

// payload is the set of fields read from a remote reply before taxonomy validation.
type payload struct {
	category   string
	priority   string
	confidence float64
}

// parseResponse decodes the remote reply. Type errors on category or confidence make the
// whole reply malformed; a priority of the wrong type is treated as absent.
func parseResponse(text string) (payload, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return payload{}, err
	}
	if fields == nil {
		return payload{}, errNotObject
	}

	var p payload

	if raw, ok := fields["category"]; ok {
		v, err := decodeValue(raw)
		if err != nil {
			return payload{}, err
		}
		s, ok := v.(string)
		if !ok {
			return payload{}, fmt.Errorf("category has type %T", v)
		}
		p.category = strings.ToLower(s)
	}

	if raw, ok := fields["priority"]; ok {
		v, err := decodeValue(raw)
		if err != nil {
			return payload{}, err
		}
		if s, ok := v.(string); ok {
			p.priority = s
		}
	}

	if raw, ok := fields["confidence"]; ok {
		v, err := decodeValue(raw)
		if err != nil {
			return payload{}, err
		}
		conf, err := toFloat(v)
		if err != nil {
			return payload{}, err
		}
		p.confidence = conf
	}

	return p, nil
}

// normalize applies the taxonomy: unknown categories become other, unknown priorities Medium.
func (p payload) normalize(taxonomy domain.Taxonomy) domain.Classification {
	category := p.category
	if !taxonomy.HasCategory(category) {
		category = domain.CategoryOther
	}
	priority := p.priority
	if !taxonomy.HasPriority(priority) {
		priority = domain.PriorityMedium
	}
	return domain.Classification{
		Category:   category,
		Priority:   priority,
		Confidence: p.confidence,
	}
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func toFloat(v any) (float64, error) {
	switch val := v.(type) {
	case json.Number:
		return parseFloat(val.String())
	case string:
		return parseFloat(strings.TrimSpace(val))
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("confidence has type %T", v)
	}
}

// parseFloat rejects NaN and +/-Inf, including values that overflow float64.
// Finite values outside [0,1] are kept as returned.
func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("confidence %q is not finite", s)
	}
	return f, nil
}
