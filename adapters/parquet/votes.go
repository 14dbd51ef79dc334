// Package parquet reads and writes vote exports in the votes.parquet layout
// (participant_id, comment_id, vote).
package parquet

import (
	"context"
	"os"

	"gorepness/adapters/memory"
	"gorepness/domain/core"
	"gorepness/domain/votes"
	"gorepness/internal"
	"gorepness/internal/errors"

	"github.com/parquet-go/parquet-go"
)

// VoteRow is one vote as laid out in the parquet file
type VoteRow struct {
	ParticipantID string `parquet:"participant_id"`
	CommentID     string `parquet:"comment_id"`
	Vote          int64  `parquet:"vote"`
}

// ReadVotes loads every valid vote record from path. Rows with an
// unparseable statement id or vote value are skipped and counted.
func ReadVotes(path string) ([]votes.Record, error) {
	rows, err := parquet.ReadFile[VoteRow](path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read parquet votes %s", path)
	}

	logger := internal.DefaultLogger.Component("ParquetVotes")
	records := make([]votes.Record, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		rec, ok := row.record()
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		logger.Warn("skipped %d invalid rows in %s", skipped, path)
	}
	logger.Info("loaded %d votes from %s", len(records), path)
	return records, nil
}

func (r VoteRow) record() (votes.Record, bool) {
	if r.ParticipantID == "" {
		return votes.Record{}, false
	}
	tid, err := core.ParseStatementID(r.CommentID)
	if err != nil {
		return votes.Record{}, false
	}
	v, err := votes.ParseVote(r.Vote)
	if err != nil {
		return votes.Record{}, false
	}
	return votes.Record{ParticipantID: core.ParticipantID(r.ParticipantID), StatementID: tid, Vote: v}, true
}

// WriteVotes writes records to path, replacing any existing file
func WriteVotes(path string, records []votes.Record) error {
	rows := make([]VoteRow, len(records))
	for i, r := range records {
		rows[i] = VoteRow{
			ParticipantID: r.ParticipantID.String(),
			CommentID:     r.StatementID.String(),
			Vote:          int64(r.Vote),
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[VoteRow](file)
	if _, err := writer.Write(rows); err != nil {
		return errors.Wrap(err, "failed to write parquet votes")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "failed to flush parquet votes")
	}
	return nil
}

// NewVoteStore returns a store that loads path on Open
func NewVoteStore(path string) *memory.VoteStore {
	return memory.NewLoadingVoteStore("parquet", func(ctx context.Context) ([]votes.Record, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return ReadVotes(path)
	})
}
