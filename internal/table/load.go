package table

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ameliorater/unit-converter/internal/unitgraph"
)

// Load reads the equivalence table at path and builds its unit graph.
func Load(path string, opts unitgraph.Options) (*unitgraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: open: %w", err)
	}
	defer f.Close()

	g, err := unitgraph.Build(f, opts)
	if err != nil {
		return nil, fmt.Errorf("table: %s: %w", path, err)
	}

	slog.Debug("table: loaded",
		"path", path,
		"units", g.Len(),
		"edges", g.EdgeCount(),
		"skipped", g.Skipped(),
	)
	return g, nil
}
