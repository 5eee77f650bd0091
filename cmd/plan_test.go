package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulmenhq/scansort/pkg/exitcode"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func planArgs(dir string, extra ...string) []string {
	return append([]string{"plan", dir, "--front", "lside", "--back", "rside", "--missing", "4"}, extra...)
}

func expectedReport() planReport {
	return planReport{
		TotalPages: 6,
		Front:      planBatch{Dir: "lside", Files: 3, Missing: []int{}},
		Back:       planBatch{Dir: "rside", Files: 2, Missing: []int{4}},
		Pages: []planPage{
			{Page: 1, File: "lside/a"},
			{Page: 2, File: "rside/x"},
			{Page: 3, File: "lside/b"},
			{Page: 5, File: "lside/c"},
			{Page: 6, File: "rside/y"},
		},
	}
}

func TestPlan_Text(t *testing.T) {
	dir := scanDir(t, []string{"a", "b", "c"}, []string{"x", "y"})

	out, err := execRoot(t, planArgs(dir)...)
	require.NoError(t, err, out)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	var entries []string
	for _, line := range lines {
		if !strings.HasPrefix(line, "#") {
			entries = append(entries, line)
		}
	}
	require.Len(t, entries, 5)
	assert.Contains(t, entries[0], filepath.Join(dir, "lside", "a"))
	assert.True(t, strings.HasSuffix(entries[0], " 1"), entries[0])
	assert.Contains(t, entries[4], filepath.Join(dir, "rside", "y"))

	_, statErr := os.Stat(filepath.Join(dir, "out"))
	assert.True(t, os.IsNotExist(statErr), "plan must not write")
}

func TestPlan_StructuredFormats(t *testing.T) {
	dir := scanDir(t, []string{"a", "b", "c"}, []string{"x", "y"})

	decoders := map[string]func([]byte, interface{}) error{
		"json": json.Unmarshal,
		"yaml": yaml.Unmarshal,
		"toml": toml.Unmarshal,
	}
	for format, decode := range decoders {
		t.Run(format, func(t *testing.T) {
			out, err := execRoot(t, planArgs(dir, "--format", format)...)
			require.NoError(t, err, out)

			var got planReport
			require.NoError(t, decode([]byte(out), &got), out)
			if len(got.Front.Missing) == 0 {
				got.Front.Missing = []int{}
			}
			assert.Equal(t, expectedReport(), got)
		})
	}
}

func TestPlan_Inconsistent(t *testing.T) {
	dir := scanDir(t, []string{"a"}, []string{"x", "y"})

	_, err := execRoot(t, "plan", dir, "--front", "lside", "--back", "rside")
	require.Error(t, err)
	assert.Equal(t, exitcode.InconsistentSequence, exitcode.FromError(err))
	assert.Contains(t, err.Error(), "front=1 (1 files + 0 missing)")
}

func TestPlan_UnknownFormat(t *testing.T) {
	dir := scanDir(t, []string{"a"}, nil)

	_, err := execRoot(t, "plan", dir, "--front", "lside", "--back", "rside", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, exitcode.ConfigError, exitcode.FromError(err))
}

func TestPlan_IgnoresHiddenAndExcluded(t *testing.T) {
	dir := scanDir(t, []string{"a", ".DS_Store", "notes.txt"}, nil)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lside", ".scansortignore"), []byte("*.txt\n"), 0o644))

	out, err := execRoot(t, "plan", dir, "--front", "lside", "--back", "rside", "--format", "json")
	require.NoError(t, err, out)

	var got planReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 1, got.TotalPages)
	assert.Equal(t, []planPage{{Page: 1, File: "lside/a"}}, got.Pages)
}
