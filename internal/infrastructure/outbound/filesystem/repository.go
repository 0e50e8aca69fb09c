package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sophialabs/replayd/internal/domain/stub"
)

// YAMLRepository loads stub definitions from YAML files in a directory tree.
// It is read-only: stubs registered at runtime are never written back, so a
// restart always returns to the on-disk seed.
type YAMLRepository struct {
	rootDir string
}

// NewYAMLRepository creates a repository rooted at rootDir.
func NewYAMLRepository(rootDir string) (*YAMLRepository, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}
	return &YAMLRepository{rootDir: absRoot}, nil
}

// LoadAll walks the root directory for .yaml files and returns parsed
// definitions. A file may hold a single definition or a sequence of them.
func (r *YAMLRepository) LoadAll(_ context.Context) ([]*stub.Definition, error) {
	var defs []*stub.Definition

	err := filepath.WalkDir(r.rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAMLFile(path) {
			return nil
		}
		loaded, err := loadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		defs = append(defs, loaded...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk stub directory: %w", err)
	}
	return defs, nil
}

func loadFile(path string) ([]*stub.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var rootNode yaml.Node
	if err := yaml.Unmarshal(data, &rootNode); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if rootNode.Kind != yaml.DocumentNode || len(rootNode.Content) == 0 {
		return nil, fmt.Errorf("unexpected YAML structure in %s", path)
	}

	content := rootNode.Content[0]
	if content.Kind == yaml.SequenceNode {
		defs := make([]*stub.Definition, 0, len(content.Content))
		for _, item := range content.Content {
			def, err := decodeDefinitionNode(item)
			if err != nil {
				return nil, err
			}
			defs = append(defs, def)
		}
		return defs, nil
	}

	def, err := decodeDefinitionNode(content)
	if err != nil {
		return nil, err
	}
	return []*stub.Definition{def}, nil
}

func decodeDefinitionNode(node *yaml.Node) (*stub.Definition, error) {
	var def stub.Definition
	if err := node.Decode(&def); err != nil {
		return nil, fmt.Errorf("failed to decode stub definition: %w", err)
	}
	return &def, nil
}

func isYAMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
