package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SchemaVersion is stamped on every record written through SaveJSON.
const SchemaVersion = "1.0.0"

// Records written by any 1.x release are readable.
var compatibleSchemas = mustConstraint("^1.0.0")

var ErrIncompatibleSchema = errors.New("incompatible record schema")

type envelope struct {
	Schema string          `json:"schema"`
	Data   json.RawMessage `json:"data"`
}

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// Encode wraps v in a versioned JSON envelope.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	return json.Marshal(envelope{Schema: SchemaVersion, Data: data})
}

// Decode unwraps a versioned envelope into v. Records without a schema stamp
// are treated as plain JSON.
func Decode(data []byte, v any) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Schema == "" {
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to decode record: %w", err)
		}
		return nil
	}

	version, err := semver.NewVersion(env.Schema)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrIncompatibleSchema, env.Schema)
	}
	if !compatibleSchemas.Check(version) {
		return fmt.Errorf("%w: %s", ErrIncompatibleSchema, version)
	}

	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("failed to decode record payload: %w", err)
	}
	return nil
}

// SaveJSON encodes v and writes it under key.
func SaveJSON(s Store, key string, v any) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}

	if err := s.Save(key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// LoadJSON reads key into v. It returns ErrNotFound when the key is absent.
func LoadJSON(s Store, key string, v any) error {
	data, err := s.Load(key)
	if err != nil {
		return err
	}

	return Decode(data, v)
}
