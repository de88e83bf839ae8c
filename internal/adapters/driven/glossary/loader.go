package glossary

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/custodia-labs/factsheets/internal/core/domain"
	"github.com/custodia-labs/factsheets/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.GlossaryLoader = (*Loader)(nil)

//go:embed glossary.json
var builtin []byte

// Loader reads a glossary from a JSON object of term to definition.
type Loader struct {
	path string
}

// NewLoader creates a loader for the file at path.
// An empty path loads the built-in glossary.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads and parses the glossary.
func (l *Loader) Load(_ context.Context) (domain.Glossary, error) {
	data := builtin
	source := "built-in glossary"
	if l.path != "" {
		b, err := os.ReadFile(l.path)
		if err != nil {
			return nil, fmt.Errorf("read glossary: %w", err)
		}
		data, source = b, l.path
	}
	return Parse(data, source)
}

// Parse decodes a glossary document. source names it in errors.
func Parse(data []byte, source string) (domain.Glossary, error) {
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	return domain.NewGlossary(entries), nil
}
