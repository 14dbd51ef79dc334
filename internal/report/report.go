// Package report turns analysis results into display-ready statements and
// renders them as Markdown, HTML or an xlsx workbook.
package report

import (
	"fmt"
	"strings"

	"gorepness/adapters/excel"
	"gorepness/adapters/stats/repness"
	"gorepness/domain/core"
	"gorepness/domain/stats"
	"gorepness/domain/votes"
	"gorepness/internal/profiling"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// DisplayStatement is a representative statement with its text attached
type DisplayStatement struct {
	TID    core.StatementID            `json:"tid"`
	Text   string                      `json:"txt"`
	Stats  stats.FinalizedCommentStats `json:"stats"`
	PValue float64                     `json:"p_value"` // one-sided, from repness_test
}

// DisplayConsensus is a consensus statement with its text attached
type DisplayConsensus struct {
	TID    core.StatementID         `json:"tid"`
	Text   string                   `json:"txt"`
	Stats  stats.ConsensusStatement `json:"stats"`
	PValue float64                  `json:"p_value"`
}

// GroupSection lists one group's representative statements
type GroupSection struct {
	Label      votes.GroupLabel   `json:"label"`
	Statements []DisplayStatement `json:"statements"`
}

// Report is the display form of one analysis
type Report struct {
	Title         string                           `json:"title"`
	Groups        []GroupSection                   `json:"groups"`
	Agree         []DisplayConsensus               `json:"consensus_agree,omitempty"`
	Disagree      []DisplayConsensus               `json:"consensus_disagree,omitempty"`
	HasConsensus  bool                             `json:"has_consensus"`
	Participation []profiling.ParticipationSummary `json:"participation"`
}

// FormatForDisplay attaches statement text to each group's representative
// statements, falling back to "Statement <tid>" for unknown ids.
func FormatForDisplay(repComments stats.RepComments, catalog votes.StatementCatalog) map[votes.GroupLabel][]DisplayStatement {
	out := make(map[votes.GroupLabel][]DisplayStatement, len(repComments))
	for label, list := range repComments {
		formatted := make([]DisplayStatement, len(list))
		for i, f := range list {
			formatted[i] = DisplayStatement{
				TID:    f.TID,
				Text:   catalog.Text(f.TID),
				Stats:  f,
				PValue: repness.OneSidedPValue(f.RepnessTest),
			}
		}
		out[label] = formatted
	}
	return out
}

// Build assembles a report from an analysis result
func Build(title string, result *stats.AnalysisResult, catalog votes.StatementCatalog) (*Report, error) {
	if result == nil {
		return nil, fmt.Errorf("no analysis result to report")
	}

	r := &Report{Title: title}
	display := FormatForDisplay(result.RepComments, catalog)
	labels := make([]votes.GroupLabel, 0, len(display))
	for label := range display {
		labels = append(labels, label)
	}
	votes.SortLabels(labels)
	for _, label := range labels {
		r.Groups = append(r.Groups, GroupSection{Label: label, Statements: display[label]})
	}

	if result.ConsensusStatements != nil {
		r.HasConsensus = true
		r.Agree = formatConsensus(result.ConsensusStatements.Agree, catalog)
		r.Disagree = formatConsensus(result.ConsensusStatements.Disagree, catalog)
	}

	participation, err := profiling.SummarizeParticipation(result.GroupVotes)
	if err != nil {
		return nil, err
	}
	r.Participation = participation
	return r, nil
}

func formatConsensus(list []stats.ConsensusStatement, catalog votes.StatementCatalog) []DisplayConsensus {
	out := make([]DisplayConsensus, len(list))
	for i, c := range list {
		out[i] = DisplayConsensus{
			TID:    c.TID,
			Text:   catalog.Text(c.TID),
			Stats:  c,
			PValue: repness.OneSidedPValue(c.PTest),
		}
	}
	return out
}

// Markdown renders the report as GitHub-style Markdown tables
func (r *Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)

	for _, g := range r.Groups {
		fmt.Fprintf(&b, "## Group %s\n\n", groupName(g.Label))
		if len(g.Statements) == 0 {
			b.WriteString("_No representative statements._\n\n")
			continue
		}
		b.WriteString("| tid | statement | for | agree | disagree | pass | p | repness | z | p-value |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|---|---|\n")
		for _, s := range g.Statements {
			marker := ""
			if s.Stats.BestAgree {
				marker = " **(best agree)**"
			}
			fmt.Fprintf(&b, "| %s | %s%s | %s | %d | %d | %d | %.0f%% | %.2f | %.2f | %.3f |\n",
				s.TID, escapeCell(s.Text), marker, s.Stats.RepfulFor,
				s.Stats.NAgree, s.Stats.NDisagree, s.Stats.NPass,
				s.Stats.PSuccess*100, s.Stats.Repness, s.Stats.RepnessTest, s.PValue)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Consensus\n\n")
	if !r.HasConsensus {
		b.WriteString("_Consensus needs at least two groups._\n\n")
	} else {
		writeConsensus(&b, "Agreed by most", r.Agree)
		writeConsensus(&b, "Disagreed by most", r.Disagree)
	}

	if len(r.Participation) > 0 {
		b.WriteString("## Participation\n\n")
		b.WriteString("| group | voters | votes | agree | disagree | pass | statements | mean/voter | median/voter |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
		for _, p := range r.Participation {
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %d | %d | %.1f | %.1f |\n",
				groupName(p.Group), p.Voters, p.TotalVotes, p.Agrees, p.Disagrees, p.Passes,
				p.StatementsSeen, p.MeanVotesPerVoter, p.MedianVotesPerVoter)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeConsensus(b *strings.Builder, heading string, list []DisplayConsensus) {
	fmt.Fprintf(b, "### %s\n\n", heading)
	if len(list) == 0 {
		b.WriteString("_None._\n\n")
		return
	}
	b.WriteString("| tid | statement | votes | p | z |\n|---|---|---|---|---|\n")
	for _, c := range list {
		fmt.Fprintf(b, "| %s | %s | %d/%d | %.0f%% | %.2f |\n",
			c.TID, escapeCell(c.Text), c.Stats.NSuccess, c.Stats.NTrials, c.Stats.PSuccess*100, c.Stats.PTest)
	}
	b.WriteString("\n")
}

// HTML renders the Markdown form to a standalone HTML page. Raw HTML in
// statement text never reaches the page.
func (r *Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage | html.SkipHTML,
		Title: r.Title,
	})
	return markdown.ToHTML([]byte(r.Markdown()), p, renderer)
}

// Sheets lays the report out as workbook sheets: one per group, then consensus
func (r *Report) Sheets() []excel.Sheet {
	repHeaders := []string{"tid", "statement", "repful_for", "best_agree", "n_agree", "n_disagree", "n_pass", "p_success", "p_test", "repness", "repness_test", "p_value"}
	var sheets []excel.Sheet
	for _, g := range r.Groups {
		sheet := excel.Sheet{Name: sheetName("Group " + groupName(g.Label)), Headers: repHeaders}
		for _, s := range g.Statements {
			sheet.Rows = append(sheet.Rows, []interface{}{
				s.TID.String(), s.Text, string(s.Stats.RepfulFor), s.Stats.BestAgree,
				s.Stats.NAgree, s.Stats.NDisagree, s.Stats.NPass,
				s.Stats.PSuccess, s.Stats.PTest, s.Stats.Repness, s.Stats.RepnessTest, s.PValue,
			})
		}
		sheets = append(sheets, sheet)
	}

	consensus := excel.Sheet{Name: "Consensus", Headers: []string{"tid", "statement", "cons_for", "n_success", "n_trials", "p_success", "p_test", "p_value"}}
	for _, c := range append(append([]DisplayConsensus{}, r.Agree...), r.Disagree...) {
		consensus.Rows = append(consensus.Rows, []interface{}{
			c.TID.String(), c.Text, string(c.Stats.ConsFor), c.Stats.NSuccess, c.Stats.NTrials, c.Stats.PSuccess, c.Stats.PTest, c.PValue,
		})
	}
	return append(sheets, consensus)
}

// WriteXLSX saves the workbook form to path
func (r *Report) WriteXLSX(path string) error {
	return excel.NewReportWriter(r.Sheets()...).SaveAs(path)
}

func groupName(label votes.GroupLabel) string {
	if label == votes.NoGroup {
		return "(none)"
	}
	return string(label)
}

var cellEscaper = strings.NewReplacer("|", `\|`, "<", `\<`, ">", `\>`, "\n", " ")

// statement text is crowd-sourced; angle brackets are escaped so it stays text
func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}

// Excel caps sheet names at 31 characters and forbids a few symbols
func sheetName(s string) string {
	s = strings.NewReplacer(":", "", "\\", "", "/", "", "?", "", "*", "", "[", "", "]", "").Replace(s)
	if r := []rune(s); len(r) > 31 {
		s = string(r[:31])
	}
	return s
}
