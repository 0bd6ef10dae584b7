package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCUE(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conf.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func TestValidate_Valid(t *testing.T) {
	out, err := execute(t, "validate", "--format", "json", testConf)
	require.NoError(t, err)

	var result ValidationResult
	decodeData(t, out, &result)
	assert.True(t, result.Valid)
	assert.Equal(t, "Scenario 2026", result.Name)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidate_Text(t *testing.T) {
	out, err := execute(t, "validate", testConf)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Settings valid: Scenario 2026")
}

func TestValidate_SearchWarnings(t *testing.T) {
	path := writeCUE(t, `conference: {
	name: "Loops"
	named_searches: [{name: "loop", q: "ss:loop"}]
	tags: [{tag: "odd", automatic: "foo:bar"}]
}
`)
	out, err := execute(t, "validate", "--format", "json", path)
	require.NoError(t, err, "query warnings do not fail validation")

	var result ValidationResult
	decodeData(t, out, &result)
	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 2)
	assert.Equal(t, "named_searches[0]", result.Warnings[0].Field)
	assert.Equal(t, "Circular reference in named search definitions", result.Warnings[0].Message)
	assert.Equal(t, "tags[0].automatic", result.Warnings[1].Field)
	assert.Equal(t, "Unknown search keyword ‘foo:’", result.Warnings[1].Message)
}

func TestValidate_Invalid(t *testing.T) {
	path := writeCUE(t, `conference: {
	name: "Dupes"
	decisions: [{id: 1, name: "Accepted"}, {id: 1, name: "Also accepted"}]
}
`)
	out, err := execute(t, "validate", "--format", "json", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result ValidationResult
	decodeData(t, out, &result)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "decisions[1]", result.Errors[0].Field)
	assert.Equal(t, ErrCodeSettings, result.Errors[0].Code)
}

func TestValidate_SyntaxError(t *testing.T) {
	path := writeCUE(t, "conference: {\n\tname: \n")

	out, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, out, "✗ [E004]")
}
