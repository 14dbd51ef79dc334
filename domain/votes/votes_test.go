package votes

import (
	"encoding/json"
	"testing"

	"gorepness/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestLabelArrayWithOptionalUngrouped(t *testing.T) {
	colors := []*int{nil, intp(3), intp(UnpaintedIndex), intp(3)}

	assert.Equal(t,
		[]GroupLabel{NoGroup, "3", NoGroup, "3"},
		LabelArrayWithOptionalUngrouped(colors, false))

	assert.Equal(t,
		[]GroupLabel{NoGroup, "3", UnpaintedLabel, "3"},
		LabelArrayWithOptionalUngrouped(colors, true))
}

func TestLabelArray_MarshalsNoGroupAsNull(t *testing.T) {
	colors := []*int{nil, intp(3), intp(UnpaintedIndex), intp(3)}
	data, err := json.Marshal(LabelArrayWithOptionalUngrouped(colors, true))
	require.NoError(t, err)
	assert.JSONEq(t, `[null,"3","unpainted","3"]`, string(data))

	var back []GroupLabel
	require.NoError(t, json.Unmarshal([]byte(`[null, "0", 1]`), &back))
	assert.Equal(t, []GroupLabel{NoGroup, "0", "1"}, back)
}

func TestGroupLabel_RejectsEmptyString(t *testing.T) {
	var back []GroupLabel
	err := json.Unmarshal([]byte(`["0", ""]`), &back)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")

	var one GroupLabel
	require.NoError(t, json.Unmarshal([]byte(`null`), &one))
	assert.False(t, one.IsAssigned())
}

func TestHasEnoughGroupsForAnalysis(t *testing.T) {
	assert.True(t, HasEnoughGroupsForAnalysis([]GroupLabel{"0", "0", NoGroup, "1"}))
	assert.False(t, HasEnoughGroupsForAnalysis([]GroupLabel{"0", "0", NoGroup, NoGroup}))
	assert.False(t, HasEnoughGroupsForAnalysis(nil))
}

func TestAnalysisStatusMessage(t *testing.T) {
	assert.Contains(t, AnalysisStatusMessage(nil), "No groups painted")
	assert.Contains(t, AnalysisStatusMessage([]GroupLabel{"1", NoGroup}), "Only one group")
	assert.Equal(t, "3 groups available for analysis.",
		AnalysisStatusMessage([]GroupLabel{"1", "2", "unpainted", "1"}))
}

func TestSortLabels_NumericFirst(t *testing.T) {
	labels := []GroupLabel{"unpainted", "10", "2", "0"}
	SortLabels(labels)
	assert.Equal(t, []GroupLabel{"0", "2", "10", "unpainted"}, labels)
}

func TestParseVote(t *testing.T) {
	for _, v := range []int64{-1, 0, 1} {
		got, err := ParseVote(v)
		require.NoError(t, err)
		assert.Equal(t, Vote(v), got)
	}
	_, err := ParseVote(2)
	assert.ErrorIs(t, err, core.ErrInvalidVote)
}

func TestGroupVoteMatrix_PassIsNotAbsence(t *testing.T) {
	m := NewGroupVoteMatrix([]Record{
		{ParticipantID: "p1", StatementID: "1", Vote: Pass},
		{ParticipantID: "p2", StatementID: "2", Vote: Agree},
	})

	v, ok := m["p1"]["1"]
	assert.True(t, ok)
	assert.Equal(t, Pass, v)

	_, ok = m["p2"]["1"]
	assert.False(t, ok)

	assert.Equal(t, []core.StatementID{"1", "2"}, m.StatementIDs())
}

func TestStatementCatalog_ModerationForms(t *testing.T) {
	strMod, err := ParseModeration("-1")
	require.NoError(t, err)
	numMod, err := ParseModeration(-1)
	require.NoError(t, err)
	assert.Equal(t, strMod, numMod)

	c := NewStatementCatalog([]Statement{
		{ID: "1", Text: "Parks need funding", Moderation: Accepted},
		{ID: "2", Text: "spam", Moderation: ModeratedOut},
		{ID: "10", Moderation: ModeratedOut},
	})

	s, ok := c.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "Parks need funding", s.Text)

	assert.True(t, c.IsModerated("2"))
	assert.False(t, c.IsModerated("1"))
	assert.False(t, c.IsModerated("99"))
	assert.Equal(t, []core.StatementID{"2", "10"}, c.ModeratedIDs())
	assert.Equal(t, "Statement 10", c.Text("10"))
}
