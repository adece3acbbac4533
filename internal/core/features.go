package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NumFeatures is the width of a FeatureVector row.
const NumFeatures = 4

// FeatureVector is one row of water-quality readings for the tabular model.
type FeatureVector struct {
	PH   float64
	Temp float64
	EC   float64
	TDS  float64
}

// DefaultFeatures fills in any reading missing from a request.
var DefaultFeatures = FeatureVector{PH: 6.2, Temp: 21.0, EC: 2.0, TDS: 140.0}

// Values returns the features in the column order the forest was fitted on.
func (f FeatureVector) Values() []float32 {
	return []float32{float32(f.PH), float32(f.Temp), float32(f.EC), float32(f.TDS)}
}

// ParseFeatures reads ph, temp, ec and tds from a decoded JSON object. Absent
// keys take their default. Numbers, numeric strings and booleans are
// accepted; null, any other type, and values that are not finite as float32
// are errors.
func ParseFeatures(input map[string]any) (FeatureVector, error) {
	f := DefaultFeatures
	fields := []struct {
		key string
		dst *float64
	}{
		{"ph", &f.PH},
		{"temp", &f.Temp},
		{"ec", &f.EC},
		{"tds", &f.TDS},
	}

	for _, field := range fields {
		raw, ok := input[field.key]
		if !ok {
			continue
		}
		v, err := toFloat(raw)
		if err != nil {
			return FeatureVector{}, fmt.Errorf("invalid value for %q: %w", field.key, err)
		}
		*field.dst = v
	}

	return f, nil
}

func parseFloat(s string) (float64, error) {
	// Hex floats are accepted by ParseFloat but are not decimal numbers.
	if strings.ContainsAny(s, "xX") {
		return 0, fmt.Errorf("could not convert string to float: %q", s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("could not convert string to float: %q", s)
	}
	return v, nil
}

func toFloat(raw any) (float64, error) {
	var v float64
	switch r := raw.(type) {
	case json.Number:
		f, err := parseFloat(r.String())
		if err != nil {
			return 0, err
		}
		v = f
	case float64:
		v = r
	case string:
		f, err := parseFloat(strings.TrimSpace(r))
		if err != nil {
			return 0, err
		}
		v = f
	case bool:
		if r {
			return 1, nil
		}
		return 0, nil
	case nil:
		return 0, fmt.Errorf("value must be a string or a number, not null")
	default:
		return 0, fmt.Errorf("value must be a string or a number, not %T", raw)
	}

	// The forest evaluates float32 inputs; anything that overflows it is
	// rejected along with inf and nan.
	if f32 := float64(float32(v)); math.IsInf(f32, 0) || math.IsNaN(f32) {
		return 0, fmt.Errorf("input contains NaN, infinity or a value too large for float32: %v", v)
	}
	return v, nil
}
