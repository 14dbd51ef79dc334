package report

import (
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"gorepness/adapters/excel"
	"gorepness/domain/stats"
	"gorepness/domain/votes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *stats.AnalysisResult {
	return &stats.AnalysisResult{
		RepComments: stats.RepComments{
			"1": {
				{TID: "4", NAgree: 7, NTrials: 7, PSuccess: 0.89, PTest: 2.8, Repness: 8, RepnessTest: 3.5, RepfulFor: stats.DirectionAgree, BestAgree: true},
				{TID: "9", NDisagree: 6, NPass: 1, NTrials: 7, PSuccess: 0.78, PTest: 2.1, Repness: 4, RepnessTest: 2.9, RepfulFor: stats.DirectionDisagree},
			},
			"0": {},
		},
		ConsensusStatements: &stats.ConsensusResult{
			Agree: []stats.ConsensusStatement{{TID: "2", NSuccess: 14, NTrials: 14, PSuccess: 0.94, PTest: 3.9, ConsFor: stats.DirectionAgree}},
		},
		GroupVotes: votes.GroupVotes{
			"0": {"a": {"2": votes.Agree}},
			"1": {"b": {"2": votes.Agree, "4": votes.Agree}},
		},
	}
}

func sampleCatalog() votes.StatementCatalog {
	return votes.NewStatementCatalog([]votes.Statement{
		{ID: "4", Text: "Parks need | more shade"},
		{ID: "2", Text: "Libraries matter"},
	})
}

func TestFormatForDisplay_TextFallback(t *testing.T) {
	got := FormatForDisplay(sampleResult().RepComments, sampleCatalog())

	require.Len(t, got["1"], 2)
	assert.Equal(t, "Parks need | more shade", got["1"][0].Text)
	assert.Equal(t, "Statement 9", got["1"][1].Text)
	assert.True(t, got["1"][0].Stats.BestAgree)
	assert.InDelta(t, 0.000233, got["1"][0].PValue, 1e-5)
	assert.Empty(t, got["0"])
}

func TestBuild_OrdersGroupsAndSummarizes(t *testing.T) {
	r, err := Build("Conversation", sampleResult(), sampleCatalog())
	require.NoError(t, err)

	require.Len(t, r.Groups, 2)
	assert.Equal(t, votes.GroupLabel("0"), r.Groups[0].Label)
	assert.True(t, r.HasConsensus)
	assert.Equal(t, "Libraries matter", r.Agree[0].Text)
	require.Len(t, r.Participation, 2)
	assert.Equal(t, 2, r.Participation[1].TotalVotes)

	_, err = Build("x", nil, nil)
	assert.Error(t, err)
}

func TestMarkdownAndHTML(t *testing.T) {
	r, err := Build("Conversation", sampleResult(), sampleCatalog())
	require.NoError(t, err)

	md := r.Markdown()
	assert.Contains(t, md, "# Conversation")
	assert.Contains(t, md, "## Group 1")
	assert.Contains(t, md, `Parks need \| more shade **(best agree)**`)
	assert.Contains(t, md, "_No representative statements._")
	assert.Contains(t, md, "### Agreed by most")
	assert.Contains(t, md, "| 2 | Libraries matter | 14/14 |")

	page := string(r.HTML())
	assert.True(t, strings.Contains(page, "<table>"))
	assert.Contains(t, page, "<title>Conversation</title>")
	assert.Contains(t, page, "Libraries matter")
}

func TestHTML_EscapesStatementMarkup(t *testing.T) {
	catalog := votes.NewStatementCatalog([]votes.Statement{
		{ID: "4", Text: "<img src=x onerror=alert(1)>"},
		{ID: "2", Text: "<script>alert('x')</script> libraries"},
	})
	r, err := Build("Conversation", sampleResult(), catalog)
	require.NoError(t, err)

	md := r.Markdown()
	assert.Contains(t, md, `\<img src=x onerror=alert(1)\>`)

	page := string(r.HTML())
	assert.NotContains(t, page, "<img")
	assert.NotContains(t, page, "<script")
	assert.Contains(t, page, "libraries")
}

func TestSheetName_TruncatesByCharacter(t *testing.T) {
	name := sheetName("Group " + strings.Repeat("é", 40))
	assert.True(t, utf8.ValidString(name))
	assert.Equal(t, 31, utf8.RuneCountInString(name))

	assert.Equal(t, "Group ab", sheetName("Group a/b"))
}

func TestMarkdown_NoConsensus(t *testing.T) {
	res := sampleResult()
	res.ConsensusStatements = nil
	r, err := Build("Single", res, nil)
	require.NoError(t, err)
	assert.Contains(t, r.Markdown(), "_Consensus needs at least two groups._")
}

func TestWriteXLSX(t *testing.T) {
	r, err := Build("Conversation", sampleResult(), sampleCatalog())
	require.NoError(t, err)

	sheets := r.Sheets()
	require.Len(t, sheets, 3)
	assert.Equal(t, "Group 0", sheets[0].Name)
	assert.Equal(t, "Consensus", sheets[2].Name)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, r.WriteXLSX(path))

	data, err := excel.NewDataReader(path).ReadData()
	require.NoError(t, err)
	assert.Equal(t, "tid", data.Headers[0])
	assert.Empty(t, data.Rows)
}
