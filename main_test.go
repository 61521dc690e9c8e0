package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v2"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp(strings.NewReader(stdin), &stdout, &stderr)
	err := app.Run(append([]string{"tinyscript"}, args...))
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if coder, ok := err.(cli.ExitCoder); ok {
		return coder.ExitCode()
	}
	return 1
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "tinyscript")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestScenarios(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   string
	}{
		{"precedence", "print 1+2*3", "7"},
		{"set then use", "set x 5; print x-1", "4"},
		{"repetition", "print \"ab\"*3", "ababab"},
		{"divide by zero", "print 1/0", "RUNTIME ERROR Divide by zero error\n"},
		{"type mismatch", "print 1+\"a\"", "RUNTIME ERROR Type mismatch for arguments of +\n"},
		{"false if", "if 0 begin print 1 end", ""},
		{"missing begin", "if 1 print 2\n", "1: Expected BEGIN after IF\n"},
		{"empty program", "", "1: No statements in program\n"},
		{"partial output", "print \"a\"\nprint b\nprint \"c\"\n", "aRUNTIME ERROR Symbol b not defined\n"},
		{"parse errors block evaluation", "print 1\nprint (2\n", "3: Missing ) after expression\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := runCLI(t, c.source)
			require.NoError(t, res.err)
			require.Equal(t, c.want, res.stdout)
			require.Empty(t, res.stderr)
		})
	}
}

func TestFileArgument(t *testing.T) {
	dir := tempDir(t)
	path := writeFile(t, dir, "prog.ts", "set i 3\nloop i begin print i; set i i-1 end\n")

	res := runCLI(t, "ignored", path)
	require.NoError(t, res.err)
	require.Equal(t, "321", res.stdout)
}

func TestTooManyFilenames(t *testing.T) {
	res := runCLI(t, "", "a", "b")
	require.Equal(t, 1, exitCode(res.err))
	require.Equal(t, "TOO MANY FILENAMES\n", res.stderr)
	require.Empty(t, res.stdout)
}

func TestCouldNotOpen(t *testing.T) {
	missing := filepath.Join(tempDir(t), "missing.ts")
	res := runCLI(t, "", missing)
	require.Equal(t, 1, exitCode(res.err))
	require.Equal(t, "COULD NOT OPEN "+missing+"\n", res.stderr)
}

func TestSymbolsDump(t *testing.T) {
	dir := tempDir(t)
	out := filepath.Join(dir, "symbols.yaml")

	res := runCLI(t, "set b \"two\"; set a 1; print a", "--symbols", out)
	require.NoError(t, res.err)
	require.Equal(t, "1", res.stdout)

	data, err := ioutil.ReadFile(out)
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &got))
	require.Equal(t, map[string]interface{}{"a": 1, "b": "two"}, got)
}

func TestConfigFile(t *testing.T) {
	dir := tempDir(t)
	out := filepath.Join(dir, "symbols.yaml")
	cfg := writeFile(t, dir, "config.yaml", "log_level: error\nsymbols: "+out+"\n")

	res := runCLI(t, "set x 7", "--config", cfg)
	require.NoError(t, res.err)

	data, err := ioutil.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "x: 7\n", string(data))
}

func TestBadLogLevel(t *testing.T) {
	res := runCLI(t, "print 1", "--log-level", "chatty")
	require.Equal(t, 1, exitCode(res.err))
	require.Empty(t, res.stdout)
}

func TestCheck(t *testing.T) {
	res := runCLI(t, "print 1\n", "check")
	require.NoError(t, res.err)
	require.Empty(t, res.stdout)

	res = runCLI(t, "print\nset 1 1\n", "check")
	require.Equal(t, 1, exitCode(res.err))
	require.Equal(t, "2: Expected expression after PRINT\n2: Expected identifier after SET\n", res.stdout)
	require.Empty(t, res.stderr)
}

func TestDumpSource(t *testing.T) {
	res := runCLI(t, "set x (1+2)*3;if x begin print x end", "dump", "--source")
	require.NoError(t, res.err)
	require.Equal(t, "set x (1 + 2) * 3\nif x begin\n\tprint x\nend\n", res.stdout)
}

func TestDumpTree(t *testing.T) {
	res := runCLI(t, "print 1", "dump")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "ast.Print")
	require.Contains(t, res.stdout, "ast.IntLiteral")
}

func TestStats(t *testing.T) {
	res := runCLI(t, "set x \"a\"*2\nprint x+\"b\"\n", "stats")
	require.NoError(t, res.err)

	var got map[string]int
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &got))
	require.Equal(t, map[string]int{
		"nodes":     10,
		"leaves":    4,
		"operators": 2,
		"strings":   2,
		"max_depth": 5,
	}, got)
}

func TestBuildDump(t *testing.T) {
	res := runCLI(t, "set x 6; print x/2", "build", "--dump")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "@main()")
	require.Contains(t, res.stdout, "sdiv")

	res = runCLI(t, "print \"a\"+\"b\"", "build", "--dump")
	require.Equal(t, 1, exitCode(res.err))
	require.Contains(t, res.stderr, "cannot compile")
}
