package excel

// RawRowData represents a row of raw spreadsheet data as header -> cell
type RawRowData map[string]string

// ExcelData represents the complete sheet or CSV dataset
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// Accepted header spellings. Polis exports use the dashed forms, the
// parquet/database layout uses the underscored ones.
var (
	participantColumns = []string{"voter-id", "participant_id", "participant-id", "pid"}
	statementColumns   = []string{"comment-id", "comment_id", "tid", "statement_id"}
	voteColumns        = []string{"vote"}
	textColumns        = []string{"comment-body", "txt", "text"}
	moderatedColumns   = []string{"moderated", "mod"}
	labelColumns       = []string{"label", "group", "group_label"}
	colorIndexColumns  = []string{"color_index", "color-index", "palette_index"}
)
