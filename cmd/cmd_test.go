package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/output"
)

// cliEnv runs commands in-process against a badger database in a temp dir.
type cliEnv struct {
	t       *testing.T
	cfgPath string
}

func setup(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STUDYLOG_BACKEND", "")
	t.Setenv("STUDYLOG_DATABASE", filepath.Join(dir, "db"))
	t.Setenv("STUDYLOG_LOG_LEVEL", "error")

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, nil, 0o600))
	return &cliEnv{t: t, cfgPath: cfgPath}
}

// run executes the root command and returns what it wrote to stdout.
func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	resetFlags(rootCmd)
	ctx = nil

	r, w, err := os.Pipe()
	require.NoError(e.t, err)
	stdout := os.Stdout
	os.Stdout = w

	rootCmd.SetArgs(append([]string{"--config", e.cfgPath, "--color", "never"}, args...))
	runErr := rootCmd.ExecuteContext(context.Background())

	os.Stdout = stdout
	require.NoError(e.t, w.Close())
	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(e.t, err)

	// Failed commands skip the post-run hook.
	if ctx != nil {
		_ = ctx.Close()
	}
	return buf.String(), runErr
}

// runJSON runs a command with --format json and decodes its output into v.
func (e *cliEnv) runJSON(v any, args ...string) error {
	e.t.Helper()
	out, err := e.run(append([]string{"--format", "json"}, args...)...)
	if err != nil {
		return err
	}
	require.NoError(e.t, json.Unmarshal([]byte(out), v), out)
	return nil
}

func (e *cliEnv) list() output.RecordsResponse {
	e.t.Helper()
	var resp output.RecordsResponse
	require.NoError(e.t, e.runJSON(&resp, "list"))
	return resp
}

// resetFlags restores every flag to its default so runs don't leak into
// each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// =============================================================================
// Command Tests
// =============================================================================

func TestListEmpty(t *testing.T) {
	e := setup(t)

	resp := e.list()
	assert.Empty(t, resp.Records)
	assert.Equal(t, 0, resp.TotalCount)
}

func TestAddAndList(t *testing.T) {
	e := setup(t)

	var mut output.MutationResponse
	require.NoError(t, e.runJSON(&mut, "add", "Go", "concurrency", "--time", "2"))
	assert.Equal(t, "ok", mut.Status)
	assert.Equal(t, errors.OpCreate, mut.Op)
	require.Len(t, mut.Records.Records, 1)

	resp := e.list()
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "Go concurrency", resp.Records[0].Title)
	assert.Equal(t, 2, resp.Records[0].Time)
	assert.NotEmpty(t, resp.Records[0].ID)
	assert.Equal(t, 2, resp.TotalHours)
}

func TestAddAboveInputRangeIsStored(t *testing.T) {
	e := setup(t)

	_, err := e.run("add", "Test Title", "--time", "60")
	require.NoError(t, err)

	resp := e.list()
	require.Len(t, resp.Records, 1)
	assert.Equal(t, 60, resp.Records[0].Time)
}

func TestAddValidation(t *testing.T) {
	e := setup(t)

	tests := []struct {
		name  string
		args  []string
		field string
		rule  string
	}{
		{"missing time", []string{"add", "Title"}, "time", errors.RuleRequired},
		{"missing title", []string{"add", "--time", "1"}, "title", errors.RuleRequired},
		{"negative time", []string{"add", "Title", "--time=-1"}, "time", errors.RuleMin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.run(tt.args...)
			verr, ok := errors.AsValidationError(err)
			require.True(t, ok, "got %v", err)
			assert.True(t, verr.Has(tt.field, tt.rule))
		})
	}

	assert.Empty(t, e.list().Records)
}

func TestEdit(t *testing.T) {
	e := setup(t)

	_, err := e.run("add", "Old", "--time", "1")
	require.NoError(t, err)
	id := e.list().Records[0].ID

	_, err = e.run("edit", id, "--time", "3")
	require.NoError(t, err)

	resp := e.list()
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "Old", resp.Records[0].Title)
	assert.Equal(t, 3, resp.Records[0].Time)
	assert.Equal(t, id, resp.Records[0].ID)

	_, err = e.run("edit", id, "--title", "New")
	require.NoError(t, err)
	assert.Equal(t, "New", e.list().Records[0].Title)
}

func TestEditNothingToChange(t *testing.T) {
	e := setup(t)

	_, err := e.run("edit", "some-id")
	assert.True(t, errors.IsUserError(err))
}

func TestEditUnknownID(t *testing.T) {
	e := setup(t)

	_, err := e.run("edit", "missing", "--time", "1")
	assert.ErrorIs(t, err, errors.ErrRecordNotFound)
}

func TestDelete(t *testing.T) {
	e := setup(t)

	_, err := e.run("add", "Keep", "--time", "1")
	require.NoError(t, err)
	_, err = e.run("add", "Drop", "--time", "2")
	require.NoError(t, err)

	var drop string
	for _, r := range e.list().Records {
		if r.Title == "Drop" {
			drop = r.ID
		}
	}
	require.NotEmpty(t, drop)

	var mut output.MutationResponse
	require.NoError(t, e.runJSON(&mut, "delete", drop))
	assert.Equal(t, errors.OpDelete, mut.Op)
	assert.Equal(t, drop, mut.ID)

	resp := e.list()
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "Keep", resp.Records[0].Title)
}

func TestInvalidRecordID(t *testing.T) {
	e := setup(t)

	_, err := e.run("delete", "../x")
	assert.True(t, errors.IsUserError(err))

	_, err = e.run("edit", "a b", "--time", "1")
	assert.True(t, errors.IsUserError(err))
}

func TestDeleteUnknownID(t *testing.T) {
	e := setup(t)

	_, err := e.run("delete", "missing")
	assert.ErrorIs(t, err, errors.ErrRecordNotFound)
	assert.True(t, errors.IsRepositoryError(err))
}

func TestPlainList(t *testing.T) {
	e := setup(t)

	_, err := e.run("add", "Plain", "--time", "4")
	require.NoError(t, err)

	out, err := e.run("--format", "plain", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Plain\t4")
}

func TestCLIList(t *testing.T) {
	e := setup(t)

	_, err := e.run("add", "Pretty", "--time", "5")
	require.NoError(t, err)

	out, err := e.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "Study Log")
	assert.Contains(t, out, "Pretty")
	assert.Contains(t, out, "1 records")
}

func TestInvalidFormat(t *testing.T) {
	e := setup(t)

	_, err := e.run("--format", "xml", "list")
	assert.True(t, errors.IsUserError(err))
}

func TestInvalidBackend(t *testing.T) {
	e := setup(t)

	_, err := e.run("--backend", "mongo", "list")
	assert.Error(t, err)
}

func TestVersionSkipsRuntime(t *testing.T) {
	e := setup(t)

	_, err := e.run("version")
	require.NoError(t, err)
	assert.Nil(t, ctx)
}
