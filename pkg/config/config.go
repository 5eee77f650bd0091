package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all settings for one scansort run
type Config struct {
	Front   string        `mapstructure:"front"`
	Back    string        `mapstructure:"back"`
	Action  string        `mapstructure:"action"`
	Output  OutputConfig  `mapstructure:"output"`
	Review  ReviewConfig  `mapstructure:"review"`
	Collect CollectConfig `mapstructure:"collect"`

	// Missing is the comma-separated missing page list ("10,12,20-22").
	// Config files may also give it as a YAML/TOML list.
	Missing string `mapstructure:"-"`
	// File is the project config file that was read, if any.
	File string `mapstructure:"-"`
}

// OutputConfig controls where reviewed files are placed
type OutputConfig struct {
	Dir       string `mapstructure:"dir"`
	Template  string `mapstructure:"template"`
	Overwrite bool   `mapstructure:"overwrite"`
}

// ReviewConfig controls the confirmation step
type ReviewConfig struct {
	Editor string `mapstructure:"editor"`
	Yes    bool   `mapstructure:"yes"`
}

// CollectConfig controls batch enumeration
type CollectConfig struct {
	Collation string   `mapstructure:"collation"`
	Include   []string `mapstructure:"include"`
	Exclude   []string `mapstructure:"exclude"`
}

var defaultConfig = Config{
	Action: "copy",
	Output: OutputConfig{
		Dir:      "out",
		Template: "scan%04d.tif",
	},
	Collect: CollectConfig{
		Collation: "bytewise",
		Include:   []string{},
		Exclude:   []string{},
	},
}

// Defaults returns a copy of the built-in defaults
func Defaults() Config {
	c := defaultConfig
	c.Collect.Include = []string{}
	c.Collect.Exclude = []string{}
	return c
}

// ProjectFiles are looked up, in order, in the working directory.
var ProjectFiles = []string{
	"scansort.yaml",
	"scansort.yml",
	".scansort.yaml",
	".scansort.yml",
	"scansort.toml",
	"scansort.json",
}

// FlagKeys maps config keys to the command-line flags that override them.
var FlagKeys = map[string]string{
	"front":             "front",
	"back":              "back",
	"missing":           "missing",
	"action":            "action",
	"output.dir":        "output-dir",
	"output.template":   "template",
	"output.overwrite":  "overwrite",
	"review.editor":     "editor",
	"review.yes":        "yes",
	"collect.collation": "collation",
	"collect.include":   "include",
	"collect.exclude":   "exclude",
}

// FindProjectFile returns the first project config file present in workdir.
func FindProjectFile(workdir string) (string, bool) {
	for _, name := range ProjectFiles {
		p := filepath.Join(workdir, name)
		if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// Load builds the run configuration: defaults, then the project file in
// workdir (or explicitFile when set), then any flags the user changed.
// Environment variables are not consulted.
func Load(workdir, explicitFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("action", defaultConfig.Action)
	v.SetDefault("missing", "")
	v.SetDefault("output.dir", defaultConfig.Output.Dir)
	v.SetDefault("output.template", defaultConfig.Output.Template)
	v.SetDefault("output.overwrite", defaultConfig.Output.Overwrite)
	v.SetDefault("review.editor", defaultConfig.Review.Editor)
	v.SetDefault("review.yes", defaultConfig.Review.Yes)
	v.SetDefault("collect.collation", defaultConfig.Collect.Collation)
	v.SetDefault("collect.include", []string{})
	v.SetDefault("collect.exclude", []string{})

	file := explicitFile
	if file == "" {
		file, _ = FindProjectFile(workdir)
	}
	if file != "" {
		if err := ValidateFile(file); err != nil {
			return nil, err
		}
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", file, err)
		}
	}

	if flags != nil {
		for key, name := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.Missing = missingString(v.Get("missing"))
	config.File = file

	return &config, nil
}

// Invalid reports a bad setting the same way a schema violation is reported.
func Invalid(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Problems: []string{err.Error()}}
}

// Validate checks settings every run needs.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Front) == "" {
		problems = append(problems, "front batch directory is required (--front)")
	}
	if strings.TrimSpace(c.Back) == "" {
		problems = append(problems, "back batch directory is required (--back)")
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		problems = append(problems, "output directory must not be empty")
	}
	if len(problems) > 0 {
		return &ValidationError{Path: c.File, Problems: problems}
	}
	return nil
}

// missingString normalizes the forms a missing page list can take in a
// config file or flag into the comma-separated flag syntax.
func missingString(raw interface{}) string {
	switch val := raw.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case []string:
		return strings.Join(val, ",")
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(val)
	}
}
