package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for target files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported target file format")

// Load reads, defaults and validates the target file at path.
func Load(path string) (*Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("target load failed (%s): %w", path, err)
	}

	var t Target
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, &t)
	case ".toml":
		err = decodeTOML(data, &t)
	case ".cue":
		err = decodeCUE(path, data, &t)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("target parse failed (%s): %w", path, err)
	}

	t.applyDefaults()
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid target (%s): %w", path, err)
	}
	return &t, nil
}

// decodeYAML rejects unknown fields so typos surface instead of being ignored.
func decodeYAML(data []byte, t *Target) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(t)
}

func decodeTOML(data []byte, t *Target) error {
	meta, err := toml.Decode(string(data), t)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// decodeCUE rejects unknown top-level fields; Value.Decode drops them.
func decodeCUE(path string, data []byte, t *Target) error {
	v := cuecontext.New().CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return err
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return err
	}

	iter, err := v.Fields()
	if err != nil {
		return err
	}
	var unknown []string
	for iter.Next() {
		if label := iter.Selector().String(); !targetKeys[label] {
			unknown = append(unknown, label)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown fields: %s", strings.Join(unknown, ", "))
	}
	return v.Decode(t)
}

// targetKeys holds the field names a target file may set, read from the
// json tags that CUE decoding uses.
var targetKeys = func() map[string]bool {
	keys := make(map[string]bool)
	rt := reflect.TypeOf(Target{})
	for i := 0; i < rt.NumField(); i++ {
		name, _, _ := strings.Cut(rt.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}()
