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
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("RULES_CONFIG_PATH", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCantusCmd(t *testing.T) {
	out, err := run(t, "cantus", "--mode", "aeolian", "--finalis", "A", "--measures", "9", "--seed", "11")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Contains(t, lines[0], "seed 11")
	if !strings.Contains(out, "fallback") {
		assert.Len(t, strings.Fields(lines[1]), 9)
	}

	again, err := run(t, "cantus", "--mode", "aeolian", "--finalis", "A", "--measures", "9", "--seed", "11")
	require.NoError(t, err)
	assert.Equal(t, out, again)

	_, err = run(t, "cantus", "--mode", "locrian")
	assert.Error(t, err)
}

func TestGenerateCmd(t *testing.T) {
	out, err := run(t, "generate", "--species", "1", "--cantus", "D4 F4 E4 D4", "--seed", "5", "--json")
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Len(t, resp["notes"], 4)
	assert.EqualValues(t, 5, resp["seed"])
}

func TestGenerateCmd_WritesMIDI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mid")
	out, err := run(t, "generate", "-s", "2", "-c", "D4 F4 E4 D4", "--below", "--seed", "8", "--midi", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2nd species")
	assert.Contains(t, out, "wrote "+path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestGenerateCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"fifth species", []string{"generate", "-s", "5", "-c", "D4 E4"}, "not yet implemented"},
		{"bad pitch", []string{"generate", "-c", "D4 Q4"}, "--cantus"},
		{"bad species", []string{"generate", "-s", "x", "-c", "D4 E4"}, "--species"},
		{"exhausted", []string{"generate", "-c", "C6 B5"}, "could not generate"},
		{"missing cantus", []string{"generate"}, "cantus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAnalyzeCmd(t *testing.T) {
	out, err := run(t, "analyze", "-s", "1", "-c", "D4 F4 E4 D4", "-p", "A4 C5 B4 D5")
	require.NoError(t, err)
	assert.Contains(t, out, "1st species")
	assert.Contains(t, out, "Parallel fifths")

	_, err = run(t, "analyze", "-s", "1", "-c", "D4 F4 E4 D4", "-p", "A4")
	assert.Error(t, err)
}

func TestGenerateCmd_Meter(t *testing.T) {
	out, err := run(t, "generate", "-s", "2", "-c", "D4 F4 E4 D4", "--seed", "3")
	require.NoError(t, err)
	var line string
	for _, l := range strings.Split(out, "\n") {
		if strings.HasPrefix(l, "counterpoint:") {
			line = l
		}
	}
	// two half notes per cut-time bar
	assert.Equal(t, 3, strings.Count(line, " | "), out)

	out, err = run(t, "generate", "-s", "1", "-c", "D4 F4 E4 D4", "--seed", "3", "--meter", "4/2")
	require.NoError(t, err)
	assert.Contains(t, out, "cantus:       D4 F4 | E4 D4")

	_, err = run(t, "generate", "-s", "1", "-c", "D4 F4 E4 D4", "--meter", "three")
	assert.ErrorContains(t, err, "--meter")
}

func TestAnalyzeCmd_Below(t *testing.T) {
	line := "D3 E3 F3 G3 A3 G3 F3 E3 C#4 B3 A3 B3 D4 D4 D4 D4"

	out, err := run(t, "analyze", "-s", "3", "-c", "D4 F4 E4 D4", "-p", line)
	require.NoError(t, err)
	assert.Contains(t, out, "Penultimate should be M6 (m3)")

	out, err = run(t, "analyze", "-s", "3", "-c", "D4 F4 E4 D4", "-p", line, "--below")
	require.NoError(t, err)
	assert.NotContains(t, out, "Penultimate should be")
}

func TestRulesCmd(t *testing.T) {
	out, err := run(t, "rules", "--species", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "beatThreeConsonance")

	out, err = run(t, "rules", "--example")
	require.NoError(t, err)
	assert.Contains(t, out, "species:")

	override := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(override, []byte("species:\n  1:\n    preferContraryMotion: 7\n"), 0o600))
	out, err = run(t, "rules", "--rules-config", override, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"weight": 7`)
}
