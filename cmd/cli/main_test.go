package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gorepness/domain/votes"
	"gorepness/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireGroups(t *testing.T) {
	err := requireGroups([]votes.GroupLabel{"0", "0", votes.NoGroup})
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
	assert.Contains(t, err.Error(), "Only one group painted")

	err = requireGroups(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No groups painted")

	assert.NoError(t, requireGroups([]votes.GroupLabel{"0", "1"}))
}

func TestRunAnalyze_SingleGroupRejected(t *testing.T) {
	t.Setenv("VOTE_SOURCE", "synthetic")
	dir := t.TempDir()
	labels := filepath.Join(dir, "groups.csv")
	require.NoError(t, os.WriteFile(labels, []byte("participant_id,label\na,0\nb,0\nc,\n"), 0o644))
	out := filepath.Join(dir, "report.md")

	err := runAnalyze(context.Background(), labels, "", "markdown", out, "Groups", false)
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
	assert.NoFileExists(t, out)
}
