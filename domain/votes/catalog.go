package votes

import (
	"fmt"
	"strconv"
	"strings"

	"gorepness/domain/core"
)

// Moderation is a statement's moderation flag as exported by Polis:
// -1 moderated out, 0 unmoderated, 1 accepted.
type Moderation int

const (
	ModeratedOut Moderation = -1
	Unmoderated  Moderation = 0
	Accepted     Moderation = 1
)

// ParseModeration accepts the numeric and string forms ("-1" and -1 alike)
func ParseModeration(raw interface{}) (Moderation, error) {
	switch v := raw.(type) {
	case Moderation:
		return v, nil
	case int:
		return Moderation(v), nil
	case int64:
		return Moderation(v), nil
	case float64:
		return Moderation(int(v)), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return Unmoderated, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return Unmoderated, fmt.Errorf("invalid moderation flag %q: %w", v, err)
		}
		return Moderation(n), nil
	default:
		return Unmoderated, fmt.Errorf("unsupported moderation type %T", raw)
	}
}

// Statement is one crowdsourced statement with its display text.
type Statement struct {
	ID         core.StatementID `json:"tid" db:"tid"`
	Text       string           `json:"txt" db:"txt"`
	Moderation Moderation       `json:"mod" db:"moderated"`
}

// IsModeratedOut reports whether moderators excluded the statement
func (s Statement) IsModeratedOut() bool {
	return s.Moderation == ModeratedOut
}

// StatementCatalog is the statement-id → statement lookup used for
// moderation filtering and display. Ids are canonical, so a numeric and a
// string form of the same tid hit the same entry.
type StatementCatalog map[core.StatementID]Statement

// NewStatementCatalog indexes statements by canonical id
func NewStatementCatalog(statements []Statement) StatementCatalog {
	c := make(StatementCatalog, len(statements))
	for _, s := range statements {
		c[s.ID] = s
	}
	return c
}

// Lookup finds a statement by any raw id form
func (c StatementCatalog) Lookup(raw interface{}) (Statement, bool) {
	tid, err := core.ParseStatementID(raw)
	if err != nil {
		return Statement{}, false
	}
	s, ok := c[tid]
	return s, ok
}

// IsModerated reports whether tid is moderated out; unknown ids are not.
func (c StatementCatalog) IsModerated(tid core.StatementID) bool {
	s, ok := c[tid]
	return ok && s.IsModeratedOut()
}

// ModeratedIDs lists moderated-out statement ids, ascending
func (c StatementCatalog) ModeratedIDs() []core.StatementID {
	var ids []core.StatementID
	for tid, s := range c {
		if s.IsModeratedOut() {
			ids = append(ids, tid)
		}
	}
	SortStatementIDs(ids)
	return ids
}

// Text returns the statement text, falling back to "Statement <tid>"
func (c StatementCatalog) Text(tid core.StatementID) string {
	if s, ok := c[tid]; ok && s.Text != "" {
		return s.Text
	}
	return fmt.Sprintf("Statement %s", tid)
}

// Statements returns the catalog entries ordered by id
func (c StatementCatalog) Statements() []Statement {
	ids := make([]core.StatementID, 0, len(c))
	for tid := range c {
		ids = append(ids, tid)
	}
	SortStatementIDs(ids)
	out := make([]Statement, len(ids))
	for i, tid := range ids {
		out[i] = c[tid]
	}
	return out
}
