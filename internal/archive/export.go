// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/tapfetch/pkg/types"
)

// SchemaFile is the on-disk form of an archive's table schema, written by
// the tables command so a user can browse column names offline before
// composing a raw query.
type SchemaFile struct {
	AccessURL string              `yaml:"access_url"`
	Title     string              `yaml:"title,omitempty"`
	Retrieved time.Time           `yaml:"retrieved"`
	Tables    []types.TableSchema `yaml:"tables"`
}

// WriteSchema saves the tables of an initialized archive to a YAML file.
func WriteSchema(path string, a *Archive) error {
	if !a.Initialized() {
		return fmt.Errorf("archive %s is not initialized", a.AccessURL())
	}
	sf := SchemaFile{
		AccessURL: a.AccessURL(),
		Title:     a.Title,
		Retrieved: time.Now().UTC(),
		Tables:    a.Tables(),
	}
	data, err := yaml.Marshal(&sf)
	if err != nil {
		return fmt.Errorf("marshaling schema file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSchema loads a schema file written by WriteSchema.
func ReadSchema(path string) (*SchemaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	var sf SchemaFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing schema file: %w", err)
	}
	return &sf, nil
}
