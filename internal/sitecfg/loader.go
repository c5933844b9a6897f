package sitecfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vaporshelf/edge/internal/locale"
	"github.com/vaporshelf/edge/internal/upstream/health"
	"github.com/vaporshelf/edge/internal/upstream/presence"
)

// Snapshot is the parsed, validated site data consumed at request time.
type Snapshot struct {
	Locales    locale.Set
	Developers []presence.Identity
	Targets    []health.Target
}

// Loader handles loading and parsing of site.yaml.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads, parses and validates the site data file.
func (l *Loader) Load() (Snapshot, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read site file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse site yaml: %w", err)
	}

	return mapFile(file)
}

// mapFile converts the raw file into the runtime snapshot.
// Invalid roster or target entries are skipped; locale problems are fatal
// because the resolver cannot run without a coherent set.
func mapFile(file File) (Snapshot, error) {
	if len(file.Locales.Supported) == 0 {
		return Snapshot{}, fmt.Errorf("site file declares no supported locales")
	}
	if file.Locales.Default == "" {
		return Snapshot{}, fmt.Errorf("site file declares no default locale")
	}

	set := locale.NewSet(file.Locales.Default, file.Locales.Supported, file.Locales.Countries)
	if !set.Supported(set.Default()) {
		return Snapshot{}, fmt.Errorf("default locale %q is not in the supported set", file.Locales.Default)
	}

	snap := Snapshot{Locales: set}

	for _, dev := range file.Developers {
		if dev.ID == "" || dev.Name == "" {
			continue
		}
		snap.Developers = append(snap.Developers, presence.Identity{ID: dev.ID, Name: dev.Name})
	}

	for _, target := range file.Health {
		if target.Name == "" || target.URL == "" {
			continue
		}
		snap.Targets = append(snap.Targets, health.Target{Name: target.Name, URL: target.URL})
	}

	return snap, nil
}
