package poll

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog(t *testing.T) {
	tests := []struct {
		name    string
		polls   []Poll
		wantErr string
	}{
		{
			name: "valid catalog",
			polls: []Poll{
				{ID: "a", Question: "A?", AnswerType: AnswerSingleChoice, Options: []string{"x"}},
				{ID: "b", Question: "B?", AnswerType: AnswerFreeText},
			},
		},
		{
			name: "duplicate poll id",
			polls: []Poll{
				{ID: "a", Question: "A?", AnswerType: AnswerFreeText},
				{ID: "a", Question: "B?", AnswerType: AnswerFreeText},
			},
			wantErr: "duplicate poll id",
		},
		{
			name:    "missing question",
			polls:   []Poll{{ID: "a", AnswerType: AnswerFreeText}},
			wantErr: "question is required",
		},
		{
			name:    "choice poll without options",
			polls:   []Poll{{ID: "a", Question: "A?", AnswerType: AnswerSingleChoice}},
			wantErr: "requires options",
		},
		{
			name:    "free text poll with options",
			polls:   []Poll{{ID: "a", Question: "A?", AnswerType: AnswerFreeText, Options: []string{"x"}}},
			wantErr: "must not declare options",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, err := NewCatalog(tt.polls)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.polls), catalog.Len())
		})
	}
}

func TestCatalogLookup(t *testing.T) {
	catalog, err := NewCatalog([]Poll{
		{ID: "first", Question: "First?", AnswerType: AnswerFreeText},
		{ID: "second", Question: "Second?", AnswerType: AnswerFreeText},
	})
	require.NoError(t, err)

	p, ok := catalog.Get("second")
	require.True(t, ok)
	assert.Equal(t, "Second?", p.Question)

	_, ok = catalog.Get("missing")
	assert.False(t, ok)

	all := catalog.All()
	require.Len(t, all, 2)
	assert.Equal(t, "first", all[0].ID, "All preserves declaration order")
}

func TestHasOption(t *testing.T) {
	p := Poll{ID: "a", Question: "A?", AnswerType: AnswerSingleChoice, Options: []string{"Red", "Blue"}}

	assert.True(t, p.HasOption("Red"))
	assert.False(t, p.HasOption("red"), "matching is exact")
	assert.False(t, p.HasOption("Green"))
}

func TestAnswerTypeJSON(t *testing.T) {
	for _, answerType := range []AnswerType{AnswerSingleChoice, AnswerFreeText, AnswerRating, AnswerMultiSelect, AnswerWriteIn} {
		data, err := json.Marshal(answerType)
		require.NoError(t, err)

		var decoded AnswerType
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, answerType, decoded)
	}

	var invalid AnswerType
	assert.Error(t, json.Unmarshal([]byte(`"bogus"`), &invalid))
}

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	assert.Greater(t, catalog.Len(), 0)
}
