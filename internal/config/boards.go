package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/quietbay/chesscourt/internal/domain"
)

// BoardsFile persists board definitions as YAML. A missing file means zero
// boards; any other read or decode failure is surfaced so callers can keep
// their previous state.
type BoardsFile struct {
	path string
}

func NewBoardsFile(path string) *BoardsFile {
	return &BoardsFile{path: path}
}

type boardsDocument struct {
	Boards []domain.BoardDefinition `yaml:"boards"`
}

func (f *BoardsFile) LoadDefinitions() ([]domain.BoardDefinition, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read boards file: %w", err)
	}

	var doc boardsDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode boards file: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Boards))
	for i := range doc.Boards {
		d := &doc.Boards[i]
		if d.Name == "" {
			return nil, fmt.Errorf("boards file entry %d: name is required", i)
		}
		if d.World == "" {
			return nil, fmt.Errorf("board %q: world is required", d.Name)
		}
		if _, dup := seen[d.Name]; dup {
			return nil, fmt.Errorf("board %q: duplicate name", d.Name)
		}
		seen[d.Name] = struct{}{}
		if d.Materials.Black == "" {
			d.Materials.Black = domain.DefaultMaterials().Black
		}
		if d.Materials.White == "" {
			d.Materials.White = domain.DefaultMaterials().White
		}
	}
	return doc.Boards, nil
}

// SaveDefinitions rewrites the file atomically: marshal to a temp file in the
// same directory, then rename over the target.
func (f *BoardsFile) SaveDefinitions(defs []domain.BoardDefinition) error {
	doc := boardsDocument{Boards: append([]domain.BoardDefinition(nil), defs...)}
	sort.Slice(doc.Boards, func(i, j int) bool { return doc.Boards[i].Name < doc.Boards[j].Name })

	raw, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encode boards file: %w", err)
	}

	dir := filepath.Dir(f.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create boards dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, ".boards-*.yml")
	if err != nil {
		return fmt.Errorf("create temp boards file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write boards file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close boards file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace boards file: %w", err)
	}
	return nil
}
