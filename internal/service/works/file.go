package works

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"portfolio/internal/model"
)

// FileSource reads work items from a YAML or JSON file. The file is either a
// bare list or a mapping with a "works" key.
type FileSource struct {
	path string
}

// NewFileSource creates a source backed by path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string { return "file:" + s.path }

// Path returns the file the source reads.
func (s *FileSource) Path() string { return s.path }

// Load parses the file. A missing file yields DefaultWorkItems.
func (s *FileSource) Load(ctx context.Context) ([]model.WorkItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultWorkItems(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read works file: %w", err)
	}

	items, err := parseWorks(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse works file %s: %w", s.path, err)
	}
	return clean(items), nil
}

// parseWorks accepts YAML or JSON (JSON is valid YAML).
func parseWorks(data []byte) ([]model.WorkItem, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var items []model.WorkItem
		if err := root.Decode(&items); err != nil {
			return nil, err
		}
		return items, nil
	case yaml.MappingNode:
		var doc struct {
			Works []model.WorkItem `yaml:"works"`
		}
		if err := root.Decode(&doc); err != nil {
			return nil, err
		}
		return doc.Works, nil
	default:
		return nil, fmt.Errorf("expected a list of works, got %s", root.Tag)
	}
}
