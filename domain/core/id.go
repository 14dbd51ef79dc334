package core

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// ParticipantID is opaque and stable across the vote store and the group partition.
	ParticipantID ID
	// StatementID is the canonical (string) form of a statement "tid".
	StatementID ID
	// RunID identifies one analysis run of the statements manager.
	RunID ID
)

// String conversions for domain IDs
func (id ParticipantID) String() string { return ID(id).String() }
func (id StatementID) String() string   { return ID(id).String() }
func (id RunID) String() string         { return ID(id).String() }

// NewRunID creates a time-ordered run identifier
func NewRunID() RunID {
	return RunID(NewID())
}

// ParseParticipantID parses a string into ParticipantID
func ParseParticipantID(s string) (ParticipantID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("participant ID cannot be empty")
	}
	return ParticipantID(s), nil
}

// ParseStatementID converts a raw statement id into its canonical form.
// Strings, integers and integral floats all collapse to the same decimal
// string, so "7", 7 and 7.0 address the same statement.
func ParseStatementID(raw interface{}) (StatementID, error) {
	switch v := raw.(type) {
	case StatementID:
		return ParseStatementID(string(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return "", fmt.Errorf("statement ID cannot be empty")
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return StatementID(strconv.FormatInt(n, 10)), nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
			return StatementID(strconv.FormatInt(int64(f), 10)), nil
		}
		return StatementID(s), nil
	case int:
		return StatementID(strconv.Itoa(v)), nil
	case int32:
		return StatementID(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return StatementID(strconv.FormatInt(v, 10)), nil
	case float64:
		if v != float64(int64(v)) {
			return "", fmt.Errorf("statement ID %v is not integral", v)
		}
		return StatementID(strconv.FormatInt(int64(v), 10)), nil
	default:
		return "", fmt.Errorf("unsupported statement ID type %T", raw)
	}
}

// MustStatementID is ParseStatementID for ids known to be valid.
func MustStatementID(raw interface{}) StatementID {
	id, err := ParseStatementID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// CompareStatementIDs orders ids numerically when both are integers and
// lexically otherwise; numeric ids sort before non-numeric ones.
func CompareStatementIDs(a, b StatementID) int {
	ai, aok := new(big.Int).SetString(string(a), 10)
	bi, bok := new(big.Int).SetString(string(b), 10)
	switch {
	case aok && bok:
		return ai.Cmp(bi)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return strings.Compare(string(a), string(b))
	}
}
