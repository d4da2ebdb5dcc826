package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thisisjab/docq/store"
)

func seedStore(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "db.json")
	content := `{"_default": {"1": {"name": "A", "age": 20}, "2": {"name": "B", "age": 35}}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func runDocq(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func decodeDocs(t *testing.T, output string) []store.Document {
	t.Helper()

	var docs []store.Document
	require.NoError(t, json.Unmarshal([]byte(output), &docs))
	return docs
}

func TestQueryEndToEnd(t *testing.T) {
	chdir(t, t.TempDir())
	path := seedStore(t)

	code, stdout, _ := runDocq(t, "--db", path, "query", "age >= 21")
	require.Equal(t, 0, code)

	docs := decodeDocs(t, stdout)
	require.Len(t, docs, 1)
	assert.Equal(t, "B", docs[0]["name"])
}

func TestQueryZeroMatchesIsSuccess(t *testing.T) {
	chdir(t, t.TempDir())
	path := seedStore(t)

	code, stdout, _ := runDocq(t, "--db", path, "query", "age > 100")
	require.Equal(t, 0, code)
	assert.Empty(t, decodeDocs(t, stdout))
}

func TestQueryStringEquality(t *testing.T) {
	chdir(t, t.TempDir())
	path := seedStore(t)

	code, stdout, _ := runDocq(t, "--db", path, "query", `name == "B"`)
	require.Equal(t, 0, code)

	docs := decodeDocs(t, stdout)
	require.Len(t, docs, 1)
	assert.Equal(t, float64(35), docs[0]["age"])
}

func TestQueryErrors(t *testing.T) {
	chdir(t, t.TempDir())
	path := seedStore(t)

	tests := map[string][]string{
		"empty expression":     {"--db", path, "query", ""},
		"malformed expression": {"--db", path, "query", "age is 30"},
		"non-numeric ordering": {"--db", path, "query", "age > abc"},
		"missing argument":     {"--db", path, "query"},
		"unknown command":      {"--db", path, "frobnicate"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			code, stdout, stderr := runDocq(t, args...)
			assert.Equal(t, 1, code)
			assert.Empty(t, stdout)
			assert.NotEmpty(t, stderr)
		})
	}
}

func TestQueryCorruptStore(t *testing.T) {
	chdir(t, t.TempDir())

	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	code, _, stderr := runDocq(t, "--db", path, "query", "age > 1")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "store_open")
}

func TestInsertListDeleteUpdateFlow(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "db.json")

	code, stdout, _ := runDocq(t, "--db", path, "insert", `{"name": "A", "age": 20}`)
	require.Equal(t, 0, code)
	assert.Equal(t, "1\n", stdout)

	code, stdout, _ = runDocq(t, "--db", path, "insert", `{"name": "B", "age": 35}`)
	require.Equal(t, 0, code)
	assert.Equal(t, "2\n", stdout)

	code, stdout, _ = runDocq(t, "--db", path, "--pretty=false", "list")
	require.Equal(t, 0, code)
	assert.Len(t, decodeDocs(t, stdout), 2)

	code, stdout, _ = runDocq(t, "--db", path, "update", `{"age": 21}`, "name == A")
	require.Equal(t, 0, code)
	assert.Equal(t, "1\n", stdout)

	code, stdout, _ = runDocq(t, "--db", path, "--pretty=false", "query", "age <= 21")
	require.Equal(t, 0, code)
	docs := decodeDocs(t, stdout)
	require.Len(t, docs, 1)
	assert.Equal(t, float64(21), docs[0]["age"])

	code, stdout, _ = runDocq(t, "--db", path, "delete", "age >= 0")
	require.Equal(t, 0, code)
	assert.Equal(t, "2\n", stdout)

	code, stdout, _ = runDocq(t, "--db", path, "--pretty=false", "list")
	require.Equal(t, 0, code)
	assert.Empty(t, decodeDocs(t, stdout))
}

func TestInsertRejectsNonObject(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "db.json")

	for _, raw := range []string{"[1,2]", `"text"`, "{broken"} {
		code, _, stderr := runDocq(t, "--db", path, "insert", raw)
		assert.Equal(t, 1, code, "insert %q", raw)
		assert.Contains(t, stderr, "bad_input")
	}
}

func TestTableFlag(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "db.json")

	code, _, _ := runDocq(t, "--db", path, "--table", "people", "insert", `{"name": "A"}`)
	require.Equal(t, 0, code)

	code, stdout, _ := runDocq(t, "--db", path, "--pretty=false", "list")
	require.Equal(t, 0, code)
	assert.Empty(t, decodeDocs(t, stdout))

	code, stdout, _ = runDocq(t, "--db", path, "--table", "people", "--pretty=false", "list")
	require.Equal(t, 0, code)
	assert.Len(t, decodeDocs(t, stdout), 1)
}

func TestPrettyOutput(t *testing.T) {
	chdir(t, t.TempDir())
	path := seedStore(t)

	code, stdout, _ := runDocq(t, "--db", path, "query", "age >= 21")
	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "[\n"), "default output should be indented")

	code, stdout, _ = runDocq(t, "--db", path, "--pretty=false", "query", "age >= 21")
	require.Equal(t, 0, code)
	assert.False(t, strings.Contains(stdout, "\n  "), "compact output should not be indented")
}

func TestConfigInit(t *testing.T) {
	chdir(t, t.TempDir())

	code, _, _ := runDocq(t, "config-init")
	require.Equal(t, 0, code)

	data, err := os.ReadFile("docq.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "database:")

	// Second run refuses to overwrite.
	code, _, _ = runDocq(t, "config-init")
	assert.Equal(t, 1, code)
}

func TestUsageOnNoCommand(t *testing.T) {
	chdir(t, t.TempDir())

	code, _, stderr := runDocq(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Usage:")
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
