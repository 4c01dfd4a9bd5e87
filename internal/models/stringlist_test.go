package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListRoundTrip(t *testing.T) {
	cases := [][]string{
		{},
		{"groceries"},
		{"food", "weekly", "family"},
		{"with space", "with,comma", `with"quote`},
		{"unicode ☕", "emoji 🍕"},
	}

	for _, original := range cases {
		v, err := StringList(original).Value()
		require.NoError(t, err)

		var decoded StringList
		require.NoError(t, decoded.Scan(v))
		assert.Equal(t, StringList(original), decoded, "round trip of %v", original)
	}
}

func TestStringListScanNil(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan(nil))
	assert.Empty(t, l)
	assert.NotNil(t, l)
}

func TestStringListScanMalformed(t *testing.T) {
	// Legacy rows that predate the JSON encoding must not fail the scan.
	for _, raw := range []string{"not json", "{", "food,weekly", ""} {
		var l StringList
		require.NoError(t, l.Scan(raw))
		assert.Empty(t, l, "input %q", raw)
	}
}

func TestStringListScanBytes(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringList{"a", "b"}, l)
}
