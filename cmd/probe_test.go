package cmd

import (
	"bytes"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func writeScenario(t *testing.T, src string) string {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestProbeCmd(t *testing.T) {
	path := writeScenario(t, `
classes:
  - name: Box
    members:
      get: ["=> Int"]
probes:
  - name: box has get
    select: {receiver: Box, name: get, type: Int}
    want: "true"
  - name: box get is a String
    select: {receiver: Box, name: get, type: String}
    want: "true"
`)
	out := &bytes.Buffer{}
	ProbeCmd.SetOut(out)
	ProbeCmd.SetErr(&bytes.Buffer{})
	ProbeCmd.SetArgs([]string{"--color", "never", path})

	err := ProbeCmd.Execute()

	require.Error(t, err)
	assert.Equal(t, "1 of 2 probes failed", err.Error())
	assert.Contains(t, out.String(), "PASS box has get\n")
	assert.Contains(t, out.String(), "FAIL box get is a String (select)\n")
	assert.Contains(t, out.String(), "got: false\n")
	assert.Contains(t, out.String(), "1 passed, 1 failed\n")
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestProbeCmdRunFilter(t *testing.T) {
	path := writeScenario(t, `
probes:
  - name: passes
    wildApprox: {type: Int}
    want: Int
  - name: fails
    wildApprox: {type: Int}
    want: String
`)
	out := &bytes.Buffer{}
	ProbeCmd.SetOut(out)
	ProbeCmd.SetArgs([]string{"--color", "always", "--run", "pass", path})

	err := ProbeCmd.Execute()

	require.NoError(t, err)
	green := color.New(color.FgGreen)
	green.EnableColor()
	assert.Contains(t, out.String(), green.Sprint("PASS")+" passes\n")
	assert.Contains(t, out.String(), "\x1b[32m")
	assert.NotContains(t, out.String(), "fails")
	*probeOnly = ""
}

func TestProbeCmdDumpShowsErrorOrigin(t *testing.T) {
	path := writeScenario(t, `
probes:
  - name: undefined callee
    apply: {callee: nope}
    want: Int
`)
	out := &bytes.Buffer{}
	ProbeCmd.SetOut(out)
	ProbeCmd.SetErr(&bytes.Buffer{})
	ProbeCmd.SetArgs([]string{"--color", "never", "--dump", path})

	err := ProbeCmd.Execute()
	*probeDump = false

	require.Error(t, err)
	assert.Contains(t, out.String(), "(E002) variable 'nope' is not defined")
	assert.Regexp(t, `reported at \S+/frontend/types/env_typer\.go:\d+\n`, out.String())
}

func TestProbeCmdBadColor(t *testing.T) {
	path := writeScenario(t, "probes: []")
	ProbeCmd.SetOut(&bytes.Buffer{})
	ProbeCmd.SetErr(&bytes.Buffer{})
	ProbeCmd.SetArgs([]string{"--color", "sometimes", path})

	err := ProbeCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown color mode 'sometimes'")
}

func TestExplainCmd(t *testing.T) {
	path := writeScenario(t, `
env:
  f: "(x: Int)String"
`)
	out := &bytes.Buffer{}
	ExplainCmd.SetOut(out)
	ExplainCmd.SetArgs([]string{"--color", "never", path})

	require.NoError(t, ExplainCmd.Execute())
	assert.Contains(t, out.String(), "scenario.yaml\n")
	assert.Regexp(t, `f\s+\(x: Int\)String\s+Int => String\s+Int => String`, out.String())
}

func TestNewPrinterNeverColorsBuffers(t *testing.T) {
	p, err := newPrinter(&bytes.Buffer{}, "auto")
	require.NoError(t, err)
	assert.False(t, p.color)
	assert.Equal(t, "x", p.fail.Sprint("x"))
}

func TestNewPrinterColorModes(t *testing.T) {
	tests := []struct {
		mode string
		want bool
	}{
		{"always", true},
		{"ALWAYS", true},
		{"never", false},
		{"auto", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			p, err := newPrinter(&bytes.Buffer{}, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.color)
			assert.Equal(t, tt.want, p.pass.Sprint("PASS") != "PASS")
		})
	}
}
