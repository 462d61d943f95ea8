package main

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLoadSeed(t *testing.T) {
	chunks, err := loadSeed(strings.NewReader(`
- jp: いただきます
  en: Let's eat
- jp: ごちそうさまでした
  en: Thank you for the meal
`))
	require.NoError(t, err)
	assert.Equal(t, []seedChunk{
		{JP: "いただきます", EN: "Let's eat"},
		{JP: "ごちそうさまでした", EN: "Thank you for the meal"},
	}, chunks)

	chunks, err = loadSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, chunks)

	_, err = loadSeed(strings.NewReader("jp: not a list"))
	assert.Error(t, err)
}

func TestSeedReviewAndStats(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	dbFile := filepath.Join(t.TempDir(), "deck.db")
	base := []string{"--db", dbFile, "--user", "learner@example.com"}

	out, err := run(t, append([]string{"seed"}, base...)...)
	require.NoError(t, err)
	assert.Equal(t, len(builtinSeed), strings.Count(out, "seeded: "))
	assert.Contains(t, out, "seeded: おはようございます。調子はどうですか？ -> Good morning. How are you?, id=1")

	out, err = run(t, append([]string{"due", "--limit", "10"}, base...)...)
	require.NoError(t, err)
	assert.Equal(t, len(builtinSeed)+1, strings.Count(out, "\n"), "header plus one line per chunk")

	out, err = run(t, append([]string{"review", "1", "5"}, base...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "chunk 1: interval 1, ef 2.60, reviews 1")

	_, err = run(t, append([]string{"review", "1", "9"}, base...)...)
	assert.Error(t, err)

	out, err = run(t, append([]string{"stats"}, base...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "total chunks")
	assert.Contains(t, out, "reviews         1")
}

func TestExportThenImport(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	dir := t.TempDir()
	dbFile := filepath.Join(dir, "deck.db")
	csvFile := filepath.Join(dir, "deck.csv")

	_, err := run(t, "seed", "--db", dbFile, "--user", "a@example.com")
	require.NoError(t, err)

	out, err := run(t, "export", csvFile, "--db", dbFile, "--user", "a@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "exported to")

	out, err = run(t, "import", csvFile, "--db", dbFile, "--user", "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, "imported 5 chunks\n", out)

	_, err = run(t, "import", filepath.Join(dir, "deck.txt"), "--db", dbFile, "--user", "b@example.com")
	assert.Error(t, err)
}

func TestUserIsRequired(t *testing.T) {
	_, err := run(t, "due", "--db", filepath.Join(t.TempDir(), "deck.db"), "--user", "")
	assert.ErrorContains(t, err, "--user is required")
}
