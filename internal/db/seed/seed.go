// Package seed loads a YAML trivia dataset into a store.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gokatarajesh/trivia-api/internal/trivia"
)

// Dataset is the on-disk seed format.
type Dataset struct {
	Categories []trivia.Category    `yaml:"categories"`
	Questions  []trivia.NewQuestion `yaml:"questions"`
}

// Target receives seeded records.
type Target interface {
	trivia.CategoryWriter
	Insert(ctx context.Context, q trivia.NewQuestion) (int64, error)
}

// Result counts what Apply wrote.
type Result struct {
	Categories int
	Questions  int
}

// Load reads and strictly decodes a dataset file.
func Load(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a single YAML document, rejecting unknown fields.
func Parse(data []byte) (Dataset, error) {
	var ds Dataset
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&ds); err != nil {
		return Dataset{}, fmt.Errorf("parse seed yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Dataset{}, fmt.Errorf("parse seed yaml: multiple documents are not supported")
		}
		return Dataset{}, fmt.Errorf("parse seed yaml: %w", err)
	}
	for i, q := range ds.Questions {
		if err := q.Validate(); err != nil {
			return Dataset{}, fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return ds, nil
}

// Apply upserts categories first so questions can reference them.
func Apply(ctx context.Context, target Target, ds Dataset) (Result, error) {
	var res Result
	for _, c := range ds.Categories {
		if err := target.UpsertCategory(ctx, c); err != nil {
			return res, fmt.Errorf("category %d: %w", c.ID, err)
		}
		res.Categories++
	}
	for i, q := range ds.Questions {
		if _, err := target.Insert(ctx, q); err != nil {
			return res, fmt.Errorf("question %d: %w", i+1, err)
		}
		res.Questions++
	}
	return res, nil
}
