package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const descriptionsYAML = `
table: USERS
properties:
  - name: id
    type: integer
    id: true
    autoIncrement: true
  - name: email
    mandatory: true
    unique: true
  - name: name
associations:
  - name: posts
    type: one-to-many
    target: posts
    joinKey: userId
---
table: POSTS
properties:
  - name: id
    type: integer
    id: true
    autoIncrement: true
  - name: userId
    type: integer
    mandatory: true
  - name: title
    mandatory: true
`

// workspace writes a configuration for a SQLite file database and returns
// its path.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	ormDir := filepath.Join(dir, "orm")
	require.NoError(t, os.Mkdir(ormDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(ormDir, "blog.yaml"), []byte(descriptionsYAML), 0o600))
	cfg := "dataSource:\n  dialect: sqlite\n  dsn: " + filepath.Join(dir, "blog.db") + "\normDir: " + ormDir + "\nlog:\n  level: error\n"
	path := filepath.Join(dir, "daoism.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

type result struct {
	code   int
	stdout string
	stderr string
}

func invoke(t *testing.T, cfg string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"-config", cfg}, args...), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRun(t *testing.T) {
	cfg := workspace(t)

	res := invoke(t, cfg, "create")
	require.Zero(t, res.code, res.stderr)
	assert.Equal(t, "created posts (POSTS)\ncreated users (USERS)\n", res.stdout)

	res = invoke(t, cfg, "create", "users")
	require.Zero(t, res.code, res.stderr)
	assert.Equal(t, "exists users (USERS)\n", res.stdout)

	res = invoke(t, cfg, "insert", "users",
		"{email: ann@example.com, name: Ann, posts: [{title: Hello}, {title: Again}]}",
		"{email: bob@example.com, name: Bob}")
	require.Zero(t, res.code, res.stderr)
	assert.Equal(t, "- 1\n- 2\n", res.stdout)

	res = invoke(t, cfg, "find", "-expand", "posts", "users", "1")
	require.Zero(t, res.code, res.stderr)
	assert.Contains(t, res.stdout, "email: ann@example.com")
	assert.Contains(t, res.stdout, "title: Hello")
	assert.Contains(t, res.stdout, "title: Again")

	res = invoke(t, cfg, "list", "-filter", "{contains: {email: bob}}", "-select", "name", "users")
	require.Zero(t, res.code, res.stderr)
	assert.Equal(t, "- name: Bob\n", res.stdout)

	res = invoke(t, cfg, "list", "-sort", "email", "-order", "desc", "-limit", "1", "users")
	require.Zero(t, res.code, res.stderr)
	assert.Contains(t, res.stdout, "bob@example.com")
	assert.NotContains(t, res.stdout, "ann@example.com")

	res = invoke(t, cfg, "count", "posts")
	require.Zero(t, res.code, res.stderr)
	assert.Equal(t, "2\n", res.stdout)

	res = invoke(t, cfg, "status")
	require.Zero(t, res.code, res.stderr)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"posts", "POSTS", "true", "2"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"users", "USERS", "true", "2"}, strings.Fields(lines[2]))

	res = invoke(t, cfg, "remove", "users", "1")
	require.Zero(t, res.code, res.stderr)
	assert.Equal(t, "removed 1\n", res.stdout)
	res = invoke(t, cfg, "count", "posts")
	require.Zero(t, res.code, res.stderr)
	assert.Equal(t, "0\n", res.stdout, "dependents are removed")

	res = invoke(t, cfg, "drop", "-sequence", "posts")
	require.Zero(t, res.code, res.stderr)
	assert.Equal(t, "dropped posts (POSTS)\n", res.stdout)

	res = invoke(t, cfg, "status")
	require.Zero(t, res.code, res.stderr)
	assert.Contains(t, res.stdout, "false")
}

func TestRunErrors(t *testing.T) {
	cfg := workspace(t)
	tests := []struct {
		name   string
		args   []string
		code   int
		stderr string
	}{
		{name: "NoCommand", code: 2, stderr: "usage: daoism"},
		{name: "UnknownCommand", args: []string{"migrate"}, code: 2, stderr: `unknown command "migrate"`},
		{name: "BadFlag", args: []string{"list", "-bogus", "users"}, code: 2, stderr: "usage: daoism list"},
		{name: "Arguments", args: []string{"count"}, code: 1, stderr: "wrong number of arguments"},
		{name: "UnknownDAO", args: []string{"count", "orders"}, code: 1, stderr: "orders"},
		{name: "NotFound", args: []string{"find", "users", "9"}, code: 1, stderr: "not found"},
		{name: "BadEntity", args: []string{"insert", "users", "{email: [}"}, code: 1, stderr: "entity"},
		{name: "BadFilter", args: []string{"list", "-filter", "{like: {a: b}}", "users"}, code: 1, stderr: "filter"},
	}
	require.Zero(t, invoke(t, cfg, "create").code)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := invoke(t, cfg, tt.args...)
			assert.Equal(t, tt.code, res.code)
			assert.Contains(t, res.stderr, tt.stderr)
		})
	}
}

func TestRunConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", filepath.Join(t.TempDir(), "none.yaml"), "status"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "config")
}

func TestRunHelp(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.yaml")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", missing, "find", "-h"}, &stdout, &stderr)
	assert.Zero(t, code, stderr.String())
	assert.Contains(t, stderr.String(), "usage: daoism find [-select props] [-expand assocs] <name> <id>")
	assert.Contains(t, stderr.String(), "-expand")
	assert.NotContains(t, stderr.String(), "config")
	assert.Empty(t, stdout.String())

	stderr.Reset()
	code = run(context.Background(), []string{"-config", missing, "list", "-bogus", "users"}, &stdout, &stderr)
	assert.Equal(t, 2, code, "flag errors are reported before the configuration is read")
	assert.Contains(t, stderr.String(), "usage: daoism list")
}
