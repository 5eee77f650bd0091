package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/scansort-config-v1.0.0.json
var schemaV1 string

// CurrentSchemaVersion is the config schema version this build validates against.
const CurrentSchemaVersion = "1.0.0"

// SchemaVersion represents a configuration schema version
type SchemaVersion struct {
	Major int
	Minor int
	Patch int
}

// String returns the string representation of the version
func (v SchemaVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ParseSchemaVersion parses a version string into SchemaVersion
func ParseSchemaVersion(version string) (SchemaVersion, error) {
	version = strings.TrimPrefix(version, "v")
	if len(strings.Split(version, ".")) != 3 {
		return SchemaVersion{}, fmt.Errorf("invalid version format: %s", version)
	}

	var v SchemaVersion
	if _, err := fmt.Sscanf(version, "%d.%d.%d", &v.Major, &v.Minor, &v.Patch); err != nil {
		return SchemaVersion{}, fmt.Errorf("failed to parse version: %w", err)
	}
	return v, nil
}

// ValidationError lists every schema violation found in a config file.
type ValidationError struct {
	Path     string
	Problems []string
}

func (e *ValidationError) Error() string {
	where := e.Path
	if where == "" {
		where = "configuration"
	}
	return fmt.Sprintf("%s failed validation:\n  %s", where, strings.Join(e.Problems, "\n  "))
}

// ValidateConfig validates JSON config data against the schema of the given version
func ValidateConfig(configData []byte, schemaVersion string) error {
	schemaLoader, err := getSchemaLoader(schemaVersion)
	if err != nil {
		return fmt.Errorf("failed to load schema for version %s: %w", schemaVersion, err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(configData))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidateFile decodes a YAML, TOML or JSON config file and validates it.
func ValidateFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- operator-selected config file
	if err != nil {
		return err
	}

	doc, err := decodeConfig(path, data)
	if err != nil {
		return &ValidationError{Path: path, Problems: []string{err.Error()}}
	}
	if doc == nil {
		return nil
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("re-encoding %s: %w", path, err)
	}

	version, err := DetectSchemaVersion(jsonData)
	if err != nil {
		return &ValidationError{Path: path, Problems: []string{err.Error()}}
	}

	if err := ValidateConfig(jsonData, version); err != nil {
		if ve, ok := err.(*ValidationError); ok {
			ve.Path = path
			return ve
		}
		return err
	}
	return nil
}

func decodeConfig(path string, data []byte) (map[string]interface{}, error) {
	var doc map[string]interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config file type %q", filepath.Ext(path))
	}
	return doc, nil
}

// getSchemaLoader returns the appropriate schema loader for the given version
func getSchemaLoader(version string) (gojsonschema.JSONLoader, error) {
	switch strings.TrimPrefix(version, "v") {
	case "1.0.0":
		return gojsonschema.NewStringLoader(schemaV1), nil
	default:
		return nil, fmt.Errorf("unsupported schema version: %s", version)
	}
}

// DetectSchemaVersion detects the schema version from config data.
// Files without a $schema field are validated against CurrentSchemaVersion.
func DetectSchemaVersion(configData []byte) (string, error) {
	var config map[string]interface{}
	if err := json.Unmarshal(configData, &config); err != nil {
		return "", fmt.Errorf("failed to parse config as JSON: %w", err)
	}

	schema, ok := config["$schema"]
	if !ok {
		return CurrentSchemaVersion, nil
	}
	schemaStr, ok := schema.(string)
	if !ok {
		return "", fmt.Errorf("$schema must be a string")
	}
	if strings.Contains(schemaStr, "/v1.0.0") {
		return "1.0.0", nil
	}
	return "", fmt.Errorf("unknown config schema %q", schemaStr)
}
