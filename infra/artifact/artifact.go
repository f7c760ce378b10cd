// Package artifact loads exported occupancy models from JSON or YAML files.
//
// A document names an estimator kind, optionally the feature columns it was
// trained on, and the kind specific parameters:
//
//	kind: forest
//	feature_names: [day_of_week, is_weekend, ...]
//	params:
//	  n_features: 16
//	  trees: [...]
//
// Loading rejects documents whose column order differs from the encoder's,
// since the model would otherwise silently read the wrong features.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/gymcrowd/core/estimator"
	"github.com/kilianp07/gymcrowd/core/factory"
	"github.com/kilianp07/gymcrowd/core/features"
	"github.com/kilianp07/gymcrowd/core/prediction"
)

// Document is the decoded artifact.
type Document struct {
	Kind         string         `json:"kind"`
	FeatureNames []string       `json:"feature_names"`
	Params       map[string]any `json:"params"`
}

// FileSource loads the artifact at Path. It implements prediction.Source.
type FileSource struct {
	Path string
}

// Load reads, decodes and validates the artifact.
func (s FileSource) Load(ctx context.Context) (prediction.Model, prediction.ModelInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, prediction.ModelInfo{}, loadErr(s.Path, err)
	}
	doc, err := ReadFile(s.Path)
	if err != nil {
		return nil, prediction.ModelInfo{}, loadErr(s.Path, err)
	}
	reg, err := Build(doc)
	if err != nil {
		return nil, prediction.ModelInfo{}, loadErr(s.Path, err)
	}
	info := prediction.ModelInfo{
		Kind:         doc.Kind,
		Source:       s.Path,
		FeatureNames: features.ColumnNames(),
		NumFeatures:  reg.NumFeatures(),
		LoadedAt:     time.Now(),
	}
	return reg, info, nil
}

func loadErr(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", prediction.ErrModelLoad, path, err)
}

// ReadFile parses the artifact with the parser matching its extension.
func ReadFile(path string) (Document, error) {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return Document{}, fmt.Errorf("unsupported artifact format %q", filepath.Ext(path))
	}
	if _, err := os.Stat(path); err != nil {
		return Document{}, err
	}
	k := koanf.New("/")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return Document{}, err
	}
	var doc Document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Build turns a document into an estimator and checks it fits the encoder.
func Build(doc Document) (estimator.Regressor, error) {
	if doc.Kind == "" {
		return nil, errors.New("kind is required")
	}
	if doc.FeatureNames != nil {
		if i := features.MatchColumns(doc.FeatureNames); i >= 0 {
			return nil, columnMismatch(doc.FeatureNames, i)
		}
	}
	reg, err := estimator.Kinds.Create(factory.ModuleConfig{Type: doc.Kind, Conf: doc.Params})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Kind, err)
	}
	if n := reg.NumFeatures(); n != features.Len {
		return nil, fmt.Errorf("%s expects %d features, encoder produces %d", doc.Kind, n, features.Len)
	}
	return reg, nil
}

func columnMismatch(names []string, i int) error {
	if i >= len(names) || i >= features.Len {
		return fmt.Errorf("feature_names has %d columns, want %d", len(names), features.Len)
	}
	return fmt.Errorf("feature_names[%d] = %q, want %q", i, names[i], features.Names[i])
}
