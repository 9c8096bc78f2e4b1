package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments(" ISE1=Math , AS2 = Economics ,")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ISE1": "Math", "AS2": "Economics"}, got)

	_, err = parseAssignments("ISE1")
	assert.Error(t, err)
	_, err = parseAssignments("ISE1=")
	assert.Error(t, err)
	_, err = parseAssignments("")
	assert.Error(t, err)
}

func TestReadRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"classes":[{"class_name":"ISE1","subject":"Math","students":["a","b"]}],
		"rooms":["AS3"],
		"seed":5
	}`), 0o600))

	req, err := readRequest(path, "")
	require.NoError(t, err)
	assert.Equal(t, 2, req.TotalStudents())
	require.NotNil(t, req.Seed)
	assert.Equal(t, int64(5), *req.Seed)

	req, err = readRequest(path, "12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), *req.Seed)

	_, err = readRequest(path, "x")
	assert.Error(t, err)
	_, err = readRequest(filepath.Join(t.TempDir(), "missing.json"), "")
	assert.Error(t, err)
}
