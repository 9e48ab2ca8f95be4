package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/jvx/pkg/value"
)

// Format names an input encoding.
type Format string

const (
	FormatAuto  Format = ""
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
	FormatJWT   Format = "jwt"
	FormatJSONL Format = "ndjson"
)

// ErrEmptyInput is returned when the input holds nothing but whitespace.
var ErrEmptyInput = errors.New("empty input")

var (
	// TOML section headers: [server], [[items]], ["table name"], [database.credentials].
	// JSON arrays like [1, 2, 3] and indented flow sequences do not match.
	tomlSectionPattern = regexp.MustCompile(`^\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	// TOML key = value with bare, quoted or dotted keys.
	tomlKeyValuePattern = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// LoadData loads structured data from a string, auto-detecting format.
// Supports:
// - JWT tokens (3-part base64url-encoded tokens)
// - Single JSON object/array
// - Newline-delimited JSON (NDJSON): one JSON value per line
// - YAML: single document or multi-document (separated by ---)
// - TOML
//
// Every document becomes one element of the result. JSON and YAML keep the
// member order of the source.
func LoadData(input string) ([]value.Value, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	if IsJWT(input) {
		return loadJWT(input)
	}

	if strings.Contains(input, "\n---") || strings.HasPrefix(input, "---") {
		return loadMultiDocYAML(input)
	}

	lines := strings.Split(input, "\n")
	if len(lines) > 1 && isLikelyNDJSON(lines) {
		return loadNDJSON(input)
	}

	// TOML [section] headers look like JSON arrays, so check TOML first.
	if isLikelyTOML(input) {
		if docs, err := loadTOML(input); err == nil {
			return docs, nil
		}
	}

	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		docs, err := loadJSON(input)
		if err == nil {
			return docs, nil
		}
		// YAML flow collections look like JSON; keep the JSON error if YAML fails too.
		if yamlDocs, yamlErr := loadYAML(input); yamlErr == nil {
			return yamlDocs, nil
		}
		return nil, err
	}

	return loadYAML(input)
}

// LoadAs parses input in the given format. FormatAuto detects it.
func LoadAs(input string, format Format) ([]value.Value, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, ErrEmptyInput
	}
	switch format {
	case FormatAuto:
		return LoadData(input)
	case FormatJSON:
		return loadJSON(trimmed)
	case FormatYAML:
		return loadMultiDocYAML(trimmed)
	case FormatTOML:
		return loadTOML(trimmed)
	case FormatJWT:
		return loadJWT(trimmed)
	case FormatJSONL:
		return loadNDJSON(trimmed)
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}

// FormatForPath guesses the format from a file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".jwt":
		return FormatJWT
	default:
		return FormatAuto
	}
}

// LoadRoot parses input into a single root value. Multi-document inputs become
// an array of documents.
func LoadRoot(input string) (value.Value, error) {
	return root(LoadData(input))
}

// LoadRootBytes parses input bytes into a single root value.
func LoadRootBytes(data []byte) (value.Value, error) {
	return LoadRoot(string(data))
}

// LoadReader reads r to the end and parses it into a single root value.
func LoadReader(r io.Reader) (value.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return value.Value{}, fmt.Errorf("read input: %w", err)
	}
	return LoadRootBytes(data)
}

// LoadFile reads a file and parses it into a single root value. The file
// extension picks the parser; when that parser fails the content is
// auto-detected instead.
func LoadFile(path string) (value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return value.Value{}, err
	}
	if format := FormatForPath(path); format != FormatAuto {
		if v, err := root(LoadAs(string(data), format)); err == nil {
			return v, nil
		}
	}
	return LoadRootBytes(data)
}

func root(docs []value.Value, err error) (value.Value, error) {
	if err != nil {
		return value.Value{}, err
	}
	if len(docs) == 1 {
		return docs[0], nil
	}
	return value.Array(docs...), nil
}

// LoadObject accepts an already parsed object (maps, slices, structs, etc.).
// Strings and byte slices are parsed using the existing loaders for format
// detection. Structs go through their JSON encoding so field tags and field
// order are honored.
func LoadObject(x any) (value.Value, error) {
	if x == nil {
		return value.Value{}, fmt.Errorf("object input is nil")
	}

	rv := reflect.ValueOf(x)
	//exhaustive:ignore // only nil-able kinds need the check
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return value.Value{}, fmt.Errorf("object input is nil")
		}
	}

	switch t := x.(type) {
	case value.Value:
		return t, nil
	case string:
		return LoadRoot(t)
	case []byte:
		return LoadRootBytes(t)
	}

	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		data, err := json.Marshal(x)
		if err != nil {
			return value.Value{}, fmt.Errorf("cannot marshal custom type to JSON: %w", err)
		}
		return value.DecodeJSON(data)
	}
	return value.FromAny(x), nil
}

// loadJSON parses a single JSON value.
func loadJSON(input string) ([]value.Value, error) {
	v, err := value.DecodeJSON([]byte(input))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return []value.Value{v}, nil
}

// loadYAML parses a single YAML document.
func loadYAML(input string) ([]value.Value, error) {
	v, err := value.DecodeYAML([]byte(input))
	if err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return []value.Value{v}, nil
}

// loadMultiDocYAML parses YAML with one or more documents separated by ---.
// Empty documents are skipped.
func loadMultiDocYAML(input string) ([]value.Value, error) {
	var results []value.Value
	decoder := yaml.NewDecoder(strings.NewReader(input))

	for {
		var doc yaml.Node
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid multi-document YAML: %w", err)
		}
		v, err := value.FromYAMLNode(&doc)
		if err != nil {
			return nil, fmt.Errorf("invalid multi-document YAML: %w", err)
		}
		if v.Kind() != value.KindNull {
			results = append(results, v)
		}
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no documents found in multi-document YAML")
	}
	return results, nil
}

// loadNDJSON parses newline-delimited JSON. Lines that are not valid JSON
// are kept as plain strings. A bare carriage return also ends a line, as
// written by progress indicators.
func loadNDJSON(input string) ([]value.Value, error) {
	lines := strings.FieldsFunc(input, func(r rune) bool { return r == '\n' || r == '\r' })
	results := make([]value.Value, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := value.DecodeJSON([]byte(line))
		if err != nil {
			results = append(results, value.String(line))
			continue
		}
		results = append(results, v)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no data found in input")
	}
	return results, nil
}

// isLikelyNDJSON reports whether a majority of the non-empty lines start like
// a JSON object or array. YAML lists ("- name") never match.
func isLikelyNDJSON(lines []string) bool {
	jsonCount := 0
	nonEmptyCount := 0

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmptyCount++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonCount++
		}
	}

	return nonEmptyCount > 1 && jsonCount > nonEmptyCount/2
}

// isLikelyTOML reports whether input has TOML section headers or mostly
// key = value lines.
func isLikelyTOML(input string) bool {
	sectionCount := 0
	keyValueCount := 0
	nonEmptyCount := 0

	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmptyCount++

		if tomlSectionPattern.MatchString(line) {
			sectionCount++
		}
		if tomlKeyValuePattern.MatchString(line) {
			keyValueCount++
		}
	}

	if sectionCount > 0 {
		return true
	}
	return nonEmptyCount > 0 && keyValueCount > nonEmptyCount/2
}

// loadTOML parses a TOML document. TOML tables decode into Go maps, so their
// keys come out sorted.
func loadTOML(input string) ([]value.Value, error) {
	var data map[string]any
	if err := toml.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return []value.Value{value.FromAny(data)}, nil
}
