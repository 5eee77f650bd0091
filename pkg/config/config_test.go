package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFlags mirrors the flag set the sort command registers.
func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("front", "", "")
	fs.String("back", "", "")
	fs.String("missing", "", "")
	fs.String("action", "copy", "")
	fs.String("output-dir", "out", "")
	fs.String("template", "scan%04d.tif", "")
	fs.Bool("overwrite", false, "")
	fs.String("editor", "", "")
	fs.Bool("yes", false, "")
	fs.String("collation", "bytewise", "")
	fs.StringSlice("include", nil, "")
	fs.StringSlice("exclude", nil, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	config, err := Load(t.TempDir(), "", nil)
	require.NoError(t, err)

	assert.Equal(t, "copy", config.Action)
	assert.Equal(t, "out", config.Output.Dir)
	assert.Equal(t, "scan%04d.tif", config.Output.Template)
	assert.Equal(t, "bytewise", config.Collect.Collation)
	assert.Empty(t, config.Missing)
	assert.Empty(t, config.File)
	assert.False(t, config.Review.Yes)
}

func TestLoad_ProjectFile(t *testing.T) {
	dir := t.TempDir()
	content := `front: lside
back: rside
missing: [10, 12, "20-21"]
action: move
output:
  dir: pages
  overwrite: true
collect:
  collation: natural
  include: ["*.tif"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scansort.yaml"), []byte(content), 0o644))

	config, err := Load(dir, "", newFlags())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "scansort.yaml"), config.File)
	assert.Equal(t, "lside", config.Front)
	assert.Equal(t, "rside", config.Back)
	assert.Equal(t, "10,12,20-21", config.Missing)
	assert.Equal(t, "move", config.Action)
	assert.Equal(t, "pages", config.Output.Dir)
	assert.True(t, config.Output.Overwrite)
	assert.Equal(t, "scan%04d.tif", config.Output.Template)
	assert.Equal(t, "natural", config.Collect.Collation)
	assert.Equal(t, []string{"*.tif"}, config.Collect.Include)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".scansort.yml"), []byte("front: lside\nmissing: \"4\"\naction: move\n"), 0o644))

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--front", "odd", "--back", "even", "--missing", "8,10", "--include", "*.png,*.jpg"}))

	config, err := Load(dir, "", flags)
	require.NoError(t, err)

	assert.Equal(t, "odd", config.Front)
	assert.Equal(t, "even", config.Back)
	assert.Equal(t, "8,10", config.Missing)
	assert.Equal(t, "move", config.Action, "unchanged flags must not mask the file")
	assert.Equal(t, []string{"*.png", "*.jpg"}, config.Collect.Include)
}

func TestLoad_ExplicitTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("front = \"l\"\nback = \"r\"\n[output]\ntemplate = \"page-%03d.png\"\n"), 0o644))

	config, err := Load(t.TempDir(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "page-%03d.png", config.Output.Template)
	assert.Equal(t, path, config.File)
}

func TestLoad_InvalidProjectFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scansort.yaml"), []byte("action: shred\n"), 0o644))

	_, err := Load(dir, "", nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Error(), "scansort.yaml")
}

func TestFindProjectFile(t *testing.T) {
	dir := t.TempDir()
	_, ok := FindProjectFile(dir)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scansort.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scansort.yml"), []byte(""), 0o644))

	path, ok := FindProjectFile(dir)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "scansort.yml"), path)
}

func TestValidate(t *testing.T) {
	c := Defaults()
	err := c.Validate()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Problems, 2)
	assert.Contains(t, err.Error(), "--front")
	assert.Contains(t, err.Error(), "--back")

	c.Front, c.Back = "lside", "rside"
	assert.NoError(t, c.Validate())

	c.Output.Dir = " "
	assert.Error(t, c.Validate())
}

func TestInvalid(t *testing.T) {
	assert.NoError(t, Invalid(nil))

	err := Invalid(fmt.Errorf("unknown action %q", "shred"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "configuration failed validation:\n  unknown action \"shred\"", err.Error())
}

func TestMissingString(t *testing.T) {
	tests := []struct {
		in       interface{}
		expected string
	}{
		{nil, ""},
		{"10,12", "10,12"},
		{7, "7"},
		{int64(9), "9"},
		{[]string{"1", "3-5"}, "1,3-5"},
		{[]interface{}{10, "12"}, "10,12"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, missingString(tt.in))
	}
}
