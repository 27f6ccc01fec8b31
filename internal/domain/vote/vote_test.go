package vote

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		multi   bool
		wantErr bool
	}{
		{name: "plain string", payload: `"Architecture"`},
		{name: "label array", payload: `["X","Y"]`, multi: true},
		{name: "empty array", payload: `[]`, multi: true},
		{name: "number rejected", payload: `42`, wantErr: true},
		{name: "object rejected", payload: `{"a":1}`, wantErr: true},
		{name: "mixed array rejected", payload: `["X",1]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			err := json.Unmarshal([]byte(tt.payload), &v)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.multi, v.IsMulti())
		})
	}
}

func TestValueCanonical(t *testing.T) {
	t.Run("scalar is stored verbatim", func(t *testing.T) {
		canonical, err := Scalar("hello world").Canonical()
		require.NoError(t, err)
		assert.Equal(t, "hello world", canonical)
	})

	t.Run("multi-select is a JSON label array", func(t *testing.T) {
		canonical, err := MultiSet([]string{"X", "Y"}).Canonical()
		require.NoError(t, err)
		assert.Equal(t, `["X","Y"]`, canonical)
	})
}

func TestValueIsEmpty(t *testing.T) {
	assert.True(t, Scalar("").IsEmpty())
	assert.True(t, MultiSet(nil).IsEmpty())
	assert.False(t, Scalar("x").IsEmpty())
	assert.False(t, MultiSet([]string{"x"}).IsEmpty())
}

func TestVoteSelections(t *testing.T) {
	t.Run("round trip through canonical form", func(t *testing.T) {
		canonical, err := MultiSet([]string{"A", "B"}).Canonical()
		require.NoError(t, err)

		v := New("poll", "voter", canonical)
		labels, ok := v.Selections()
		require.True(t, ok)
		assert.Equal(t, []string{"A", "B"}, labels)
	})

	t.Run("malformed value reports failure instead of error", func(t *testing.T) {
		v := New("poll", "voter", "plain text")
		_, ok := v.Selections()
		assert.False(t, ok)
	})
}

func TestNewVote(t *testing.T) {
	v := New("poll", "voter", "value")

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", v.ID.String())
	assert.Equal(t, "poll", v.PollID)
	assert.Equal(t, "voter", v.VoterID)
	assert.False(t, v.RecordedAt.IsZero())
}
