package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/bcp/internal/engine"
)

func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func bcp(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func seqFile(t *testing.T, dir, name string, n int) string {
	t.Helper()
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestVersion(t *testing.T) {
	isolateConfig(t)
	code, stdout, _ := bcp(t, "--version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "bcp dev\n", stdout)
}

func TestUsageErrors(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	src := seqFile(t, dir, "src", 16)

	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"one argument", []string{src}},
		{"three arguments", []string{src, "a", "b"}},
		{"bad count", []string{"-c", "lots", src, filepath.Join(dir, "dst")}},
		{"negative offset", []string{"-s", "-1", src, filepath.Join(dir, "dst")}},
		{"bad bwlimit", []string{"--bwlimit", "fast", src, filepath.Join(dir, "dst")}},
		{"unknown flag", []string{"--buffer-size", "4096", src, filepath.Join(dir, "dst")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := bcp(t, tt.args...)
			assert.Equal(t, 2, code)
			assert.Contains(t, stderr, "Error: ")
		})
	}
	assert.NoFileExists(t, filepath.Join(dir, "dst"))
}

func TestCopyRange(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	src := seqFile(t, dir, "src", 16)
	dst := filepath.Join(dir, "dst")

	code, stdout, stderr := bcp(t, "-s", "4", "-c", "4", src, dst)
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x05, 0x06, 0x07}, got)
}

func TestCopyLongFlagsAndSuffixes(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	src := seqFile(t, dir, "src", 4096)
	dst := seqFile(t, dir, "dst", 2048)

	code, _, stderr := bcp(t, "--src-offset", "1K", "--dst-offset", "2K", "--count", "1K", src, dst)
	require.Equal(t, 0, code, stderr)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Len(t, got, 3072)
	want, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, want[1024:2048], got[2048:])
}

func TestValidationFailureExitCode(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	src := seqFile(t, dir, "src", 16)
	dst := filepath.Join(dir, "dst")

	code, _, stderr := bcp(t, "-s", "16", "-c", "1", src, dst)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Error: read past end of source")
	assert.NoFileExists(t, dst)

	code, _, stderr = bcp(t, "-d", "5", src, dst)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Error: destination must exist for a nonzero offset")
	assert.NoFileExists(t, dst)

	code, _, stderr = bcp(t, filepath.Join(dir, "missing"), dst)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Error: source not found")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 2, exitCode(&engine.Error{Kind: engine.ReadPastEnd}))
	assert.Equal(t, 2, exitCode(&engine.Error{Kind: engine.DestNotRegularFile}))
	assert.Equal(t, 1, exitCode(&engine.Error{Kind: engine.IoError}))
	assert.Equal(t, 1, exitCode(&engine.Error{Kind: engine.ChecksumMismatch}))
	assert.Equal(t, 1, exitCode(errors.New("unclassified")))
}

func TestVerboseSummary(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	src := seqFile(t, dir, "src", 64)
	dst := filepath.Join(dir, "dst")

	code, _, stderr := bcp(t, "-v", "--verify", src, dst)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "done ✓")
	assert.Contains(t, stderr, "range verified")
}

func TestQuietWinsOverVerbose(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	src := seqFile(t, dir, "src", 64)

	code, _, stderr := bcp(t, "-v", "-q", src, filepath.Join(dir, "dst"))
	require.Equal(t, 0, code)
	assert.Empty(t, stderr)
}

func readLogRecords(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, sc.Err())
	return records
}

func TestLogFileAppends(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	src := seqFile(t, dir, "src", 32)
	dst := filepath.Join(dir, "dst")
	logPath := filepath.Join(dir, "bcp.log")

	for range 2 {
		code, _, stderr := bcp(t, "--log", logPath, src, dst)
		require.Equal(t, 0, code, stderr)
	}

	records := readLogRecords(t, logPath)
	require.NotEmpty(t, records)

	ids := map[any]bool{}
	for _, rec := range records {
		require.Contains(t, rec, "copy_id")
		ids[rec["copy_id"]] = true
	}
	assert.Len(t, ids, 2, "each invocation gets its own copy_id")
}

func TestConfigDefaults(t *testing.T) {
	cfgDir := isolateConfig(t)
	dir := t.TempDir()
	src := seqFile(t, dir, "src", 32)
	dst := filepath.Join(dir, "dst")
	logPath := filepath.Join(dir, "from-config.log")

	require.NoError(t, os.MkdirAll(filepath.Join(cfgDir, "bcp"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "bcp", "config.toml"), []byte(
		"[defaults]\nverify = true\nlog = \""+logPath+"\"\n",
	), 0o644))

	code, _, stderr := bcp(t, src, dst)
	require.Equal(t, 0, code, stderr)

	var verified bool
	for _, rec := range readLogRecords(t, logPath) {
		if rec["msg"] == "range verified" {
			verified = true
		}
	}
	assert.True(t, verified, "verify from config should apply")
}

func TestConfigDefaultsOverriddenByFlag(t *testing.T) {
	cfgDir := isolateConfig(t)
	dir := t.TempDir()
	src := seqFile(t, dir, "src", 32)

	require.NoError(t, os.MkdirAll(filepath.Join(cfgDir, "bcp"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "bcp", "config.toml"), []byte(
		"[defaults]\nverbose = true\n",
	), 0o644))

	code, _, stderr := bcp(t, "--verbose=false", src, filepath.Join(dir, "dst"))
	require.Equal(t, 0, code)
	assert.Empty(t, stderr)
}

func TestGenDocs(t *testing.T) {
	isolateConfig(t)
	out := filepath.Join(t.TempDir(), "man")

	code, _, stderr := bcp(t, "gen-docs", "--dir", out)
	require.Equal(t, 0, code, stderr)
	assert.FileExists(t, filepath.Join(out, "bcp.1"))
}

func TestSourceNamedLikeDocsCommand(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	seqFile(t, dir, "gen-docs", 8)
	t.Chdir(dir)

	code, _, stderr := bcp(t, "./gen-docs", "out")
	require.Equal(t, 0, code, stderr)

	got, err := os.ReadFile(filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7}, got)

	help := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{}).Long
	assert.Contains(t, help, "./gen-docs")
}
