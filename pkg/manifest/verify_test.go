package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BryceDouglasJames/fileslicer/pkg/bundle"
)

func writtenSplit(t *testing.T) (*Manifest, string) {
	t.Helper()
	text := "one\ntwo\nthree\nfour\nfive\nsix\nseven\n"
	res := splitText(t, "n.txt", text, 10)
	dir := t.TempDir()
	_, err := bundle.WriteDir(dir, res.Chunks)
	require.NoError(t, err)
	return FromResult(res, int64(len(text))), dir
}

func TestVerifyDir_Intact(t *testing.T) {
	m, dir := writtenSplit(t)

	report, err := VerifyDir(context.Background(), m, dir, 2)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, len(m.Entries), report.Checked)
	assert.Equal(t, len(m.Entries), report.Found)
	assert.Equal(t, m.Root, report.ObservedRoot)
}

func TestVerifyDir_MissingAndChanged(t *testing.T) {
	m, dir := writtenSplit(t)
	require.GreaterOrEqual(t, len(m.Entries), 4)

	require.NoError(t, os.Remove(filepath.Join(dir, m.Entries[1].Name)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, m.Entries[3].Name), []byte("tampered"), 0o644))

	report, err := VerifyDir(context.Background(), m, dir, 0)
	require.NoError(t, err)
	assert.False(t, report.OK())

	assert.Equal(t, len(m.Entries)-1, report.Found)
	require.Len(t, report.Missing, 1)
	assert.Equal(t, m.Entries[1].Name, report.Missing[0].Name)
	require.Len(t, report.Changed, 1)
	assert.Equal(t, m.Entries[3].Name, report.Changed[0].Name)
	assert.NotEqual(t, report.ExpectedRoot, report.ObservedRoot)
}

func TestVerifyDir_EmptyDir(t *testing.T) {
	m, _ := writtenSplit(t)

	report, err := VerifyDir(context.Background(), m, t.TempDir(), 4)
	require.NoError(t, err)
	assert.Len(t, report.Missing, len(m.Entries))
	assert.Zero(t, report.Found)
	assert.Empty(t, report.ObservedRoot)
}

func TestVerifyDir_Canceled(t *testing.T) {
	m, dir := writtenSplit(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := VerifyDir(ctx, m, dir, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
