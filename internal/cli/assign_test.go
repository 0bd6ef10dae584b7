package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	db := filepath.Join(t.TempDir(), "conf.db")

	out, err := execute(t, "load", "--db", db, "--format", "json", testFixture)
	require.NoError(t, err)

	var result LoadResult
	decodeData(t, out, &result)
	assert.Equal(t, 4, result.Contacts)
	assert.Equal(t, 6, result.Papers)

	out, err = execute(t, "load", "--db", db, testFixture)
	require.NoError(t, err, "reloading replaces rows")
	assert.Contains(t, out, "Loaded 4 contact(s) and 6 paper(s)")
}

func TestLoad_MissingFixture(t *testing.T) {
	db := filepath.Join(t.TempDir(), "conf.db")

	_, err := execute(t, "load", "--db", db, "testdata/missing.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestAssign_FromFile(t *testing.T) {
	db := loadedDB(t)
	batch := filepath.Join(t.TempDir(), "batch.csv")
	require.NoError(t, os.WriteFile(batch, []byte("action,paper,tag\ncleartag,1,green\ntag,3,green#5\n"), 0644))

	out, err := execute(t, "assign", "--db", db, "-u", chairEmail, "--format", "json", batch)
	require.NoError(t, err)

	var result AssignResult
	decodeData(t, out, &result)
	assert.Equal(t, 2, result.Lines)
	require.Len(t, result.Changes, 2)

	out, err = execute(t, "search", "--db", db, "-u", chairEmail, "-t", "s", "--format", "json", "#green")
	require.NoError(t, err)
	var found SearchResult
	decodeData(t, out, &found)
	// A single-tag search sorts by tag value: green#3 before green#5.
	assert.Equal(t, []int{2, 3}, found.IDs)
}

func TestAssign_FromStdin(t *testing.T) {
	db := loadedDB(t)

	cmd := NewRootCommand()
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetErr(&strings.Builder{})
	cmd.SetIn(strings.NewReader("paper,tag\n4,fart#3\n"))
	cmd.SetArgs([]string{"assign", "--db", db, "-u", chairEmail, "-"})
	require.NoError(t, cmd.ExecuteContext(t.Context()))
	assert.Contains(t, out.String(), "#4\tfart#3")
	assert.Contains(t, out.String(), "1 line(s), 1 change(s)")
}

func TestAssign_Errors(t *testing.T) {
	db := loadedDB(t)

	tests := []struct {
		name     string
		user     string
		batch    string
		exitCode int
	}{
		{"author cannot assign", "author@example.org", "paper,tag\n1,green\n", ExitFailure},
		{"missing tag column", chairEmail, "paper\n1\n", ExitFailure},
		{"unknown user", "nobody@example.org", "paper,tag\n1,green\n", ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := filepath.Join(t.TempDir(), "batch.csv")
			require.NoError(t, os.WriteFile(batch, []byte(tt.batch), 0644))

			_, err := execute(t, "assign", "--db", db, "-u", tt.user, batch)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))
		})
	}
}
