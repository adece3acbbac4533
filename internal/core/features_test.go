package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeObject(t *testing.T, body string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &m))
	return m
}

func TestParseFeaturesDefaults(t *testing.T) {
	f, err := ParseFeatures(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, FeatureVector{PH: 6.2, Temp: 21.0, EC: 2.0, TDS: 140.0}, f)
	assert.Equal(t, []float32{6.2, 21.0, 2.0, 140.0}, f.Values())
}

func TestParseFeaturesPartial(t *testing.T) {
	f, err := ParseFeatures(decodeObject(t, `{"ph": 5.5, "tds": 300, "other": "ignored"}`))
	require.NoError(t, err)
	assert.Equal(t, FeatureVector{PH: 5.5, Temp: 21.0, EC: 2.0, TDS: 300}, f)
}

func TestParseFeaturesConversions(t *testing.T) {
	f, err := ParseFeatures(map[string]any{
		"ph":   json.Number("7.25"),
		"temp": " 19.5\n",
		"ec":   true,
		"tds":  false,
	})
	require.NoError(t, err)
	assert.Equal(t, FeatureVector{PH: 7.25, Temp: 19.5, EC: 1, TDS: 0}, f)
}

func TestParseFeaturesInvalid(t *testing.T) {
	cases := map[string]any{
		"null":   nil,
		"text":   "acidic",
		"array":  []any{1.0},
		"object": map[string]any{"v": 1.0},
		"inf":    "inf",
		"nan":    "NaN",
		"hex":    "0x1p3",
		"huge":   json.Number("1e400"),
		"f32max": json.Number("1e39"),
		"float":  1e39,
	}

	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFeatures(map[string]any{"temp": value})
			require.Error(t, err)
			assert.Contains(t, err.Error(), `"temp"`)
		})
	}
}

func TestParseFeaturesFloat32Limits(t *testing.T) {
	f, err := ParseFeatures(map[string]any{"tds": json.Number("3.4e38"), "ec": "1e-50"})
	require.NoError(t, err)
	assert.Equal(t, 3.4e38, f.TDS)
	assert.Equal(t, 1e-50, f.EC)
}
