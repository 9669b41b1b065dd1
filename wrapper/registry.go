package wrapper

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Registration is the persistent record of one wrapped IDE: where the
// original binary lived, where its unwrapped copy now lives, and where the
// generated wrapper is.
type Registration struct {
	IDE            string `yaml:"ide"`
	OriginalPath   string `yaml:"original_path"`
	RealBinaryPath string `yaml:"real_binary_path"`
	WrapperPath    string `yaml:"wrapper_path"`
}

// Registry stores registrations as a YAML file in the devbox state dir. At
// most one registration per canonical IDE id.
type Registry struct {
	path    string
	fileOps FileOps
}

// NewRegistry returns a Registry persisted under stateDir.
func NewRegistry(stateDir string, fileOps FileOps) *Registry {
	if fileOps == nil {
		fileOps = NewDefaultFileOps()
	}
	return &Registry{
		path:    filepath.Join(stateDir, "registrations.yaml"),
		fileOps: fileOps,
	}
}

// Load reads all registrations. A missing registry file is an empty registry.
func (r *Registry) Load() (map[string]Registration, error) {
	data, err := r.fileOps.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]Registration{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry %s: %w", r.path, err)
	}
	regs := map[string]Registration{}
	if err := yaml.Unmarshal(data, &regs); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", r.path, err)
	}
	return regs, nil
}

// Put inserts or replaces one registration and persists the registry.
func (r *Registry) Put(reg Registration) error {
	regs, err := r.Load()
	if err != nil {
		return err
	}
	regs[reg.IDE] = reg
	return r.save(regs)
}

// Delete removes one registration and persists the registry.
func (r *Registry) Delete(ide string) error {
	regs, err := r.Load()
	if err != nil {
		return err
	}
	delete(regs, ide)
	return r.save(regs)
}

// Get returns the registration for an IDE id, if any.
func (r *Registry) Get(ide string) (Registration, bool, error) {
	regs, err := r.Load()
	if err != nil {
		return Registration{}, false, err
	}
	reg, ok := regs[ide]
	return reg, ok, nil
}

// All returns every registration, sorted by IDE id for deterministic order.
func (r *Registry) All() ([]Registration, error) {
	regs, err := r.Load()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(regs))
	for id := range regs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Registration, 0, len(ids))
	for _, id := range ids {
		out = append(out, regs[id])
	}
	return out, nil
}

func (r *Registry) save(regs map[string]Registration) error {
	if err := r.fileOps.MkdirAll(filepath.Dir(r.path), 0o750); err != nil {
		return err
	}
	data, err := yaml.Marshal(regs)
	if err != nil {
		return err
	}
	return r.fileOps.WriteFile(r.path, data, 0o644)
}
