// Package agents manages per-agent directories: a JSON config dump plus a
// generated Go entry point referencing tool functions from the shared
// tools file.
package agents

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/soyeahso/toolforge/internal/domain"
	"github.com/soyeahso/toolforge/internal/logging"
)

var (
	// ErrNotFound means no agent directory with the addressed name exists.
	ErrNotFound = errors.New("agent not found")

	// ErrExists means an agent directory with the proposed name already exists.
	ErrExists = errors.New("agent already exists")

	// ErrNameMismatch means the addressed name and the config's name disagree.
	ErrNameMismatch = errors.New("agent name mismatch")

	// ErrInvalidName means the agent name cannot be turned into a valid identifier.
	ErrInvalidName = errors.New("invalid agent name")
)

const configFileName = "agent.json"

// ToolLister is the view of the function store the manager needs to warn
// about dangling tool references.
type ToolLister interface {
	List() ([]string, error)
}

// Manager owns the agents directory and generates each agent's files.
type Manager struct {
	dir          string
	toolsDir     string
	defaultModel string
	tools        ToolLister
	log          *logging.Logger
}

// NewManager creates an agent manager rooted at dir. toolsDir is where the
// shared tools file lives; tools may be nil to skip reference checks.
func NewManager(dir, toolsDir, defaultModel string, tools ToolLister, log *logging.Logger) *Manager {
	return &Manager{
		dir:          dir,
		toolsDir:     toolsDir,
		defaultModel: defaultModel,
		tools:        tools,
		log:          log.Sub("agents"),
	}
}

// agentDir validates a raw agent name and returns its directory path.
func (m *Manager) agentDir(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(m.dir, name), nil
}

// Create sanitizes the agent name, generates the agent directory and
// returns the stored config. A partially written directory is removed on
// failure.
func (m *Manager) Create(cfg domain.AgentConfig) (domain.AgentConfig, error) {
	name, err := Sanitize(cfg.Name)
	if err != nil {
		return domain.AgentConfig{}, err
	}
	cfg.Name = name
	if cfg.Model == "" {
		cfg.Model = m.defaultModel
	}

	dir, err := m.agentDir(cfg.Name)
	if err != nil {
		return domain.AgentConfig{}, err
	}
	if _, err := os.Stat(dir); err == nil {
		return domain.AgentConfig{}, fmt.Errorf("%w: %q", ErrExists, cfg.Name)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return domain.AgentConfig{}, fmt.Errorf("creating agent directory: %w", err)
	}
	if err := m.writeFiles(dir, cfg); err != nil {
		os.RemoveAll(dir)
		return domain.AgentConfig{}, err
	}

	m.warnUnknownTools(cfg)
	m.log.Info().Str("name", cfg.Name).Int("tools", len(cfg.Tools)).Msg("agent created")
	return cfg, nil
}

// List returns the names of all agent directories.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("listing agents: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Get reads an agent's stored config.
func (m *Manager) Get(name string) (domain.AgentConfig, error) {
	dir, err := m.agentDir(name)
	if err != nil {
		return domain.AgentConfig{}, err
	}

	data, err := os.ReadFile(filepath.Join(dir, configFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.AgentConfig{}, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return domain.AgentConfig{}, fmt.Errorf("reading agent config: %w", err)
	}

	var cfg domain.AgentConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domain.AgentConfig{}, fmt.Errorf("parsing agent config for %q: %w", name, err)
	}
	if cfg.Name != name {
		m.log.Warn().Str("dir", name).Str("config", cfg.Name).Msg("agent name drifted from directory name")
	}
	return cfg, nil
}

// Update regenerates an existing agent's files. The addressed name and the
// config's (sanitized) name must agree; renaming is delete + create.
func (m *Manager) Update(name string, cfg domain.AgentConfig) (domain.AgentConfig, error) {
	sanitized, err := Sanitize(cfg.Name)
	if err != nil {
		return domain.AgentConfig{}, err
	}
	if sanitized != name {
		return domain.AgentConfig{}, fmt.Errorf("%w: config declares %q, addressed as %q",
			ErrNameMismatch, sanitized, name)
	}
	cfg.Name = sanitized
	if cfg.Model == "" {
		cfg.Model = m.defaultModel
	}

	dir, err := m.agentDir(name)
	if err != nil {
		return domain.AgentConfig{}, err
	}
	if _, err := os.Stat(dir); err != nil {
		return domain.AgentConfig{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	if err := m.writeFiles(dir, cfg); err != nil {
		return domain.AgentConfig{}, err
	}

	m.warnUnknownTools(cfg)
	m.log.Info().Str("name", cfg.Name).Msg("agent updated")
	return cfg, nil
}

// Delete removes an agent directory and everything in it.
func (m *Manager) Delete(name string) error {
	dir, err := m.agentDir(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("deleting agent %q: %w", name, err)
	}
	m.log.Info().Str("name", name).Msg("agent deleted")
	return nil
}

// writeFiles generates agent.json, main.go and go.mod inside dir.
func (m *Manager) writeFiles(dir string, cfg domain.AgentConfig) error {
	if err := EnsureToolsModule(m.toolsDir); err != nil {
		return fmt.Errorf("ensuring tools module: %w", err)
	}

	configJSON, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding agent config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, configFileName), append(configJSON, '\n'), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configFileName, err)
	}

	mainSrc, err := renderMain(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "main.go"), mainSrc, 0o600); err != nil {
		return fmt.Errorf("writing main.go: %w", err)
	}

	modSrc, err := renderMod(cfg, m.toolsDir)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), modSrc, 0o600); err != nil {
		return fmt.Errorf("writing go.mod: %w", err)
	}
	return nil
}

// warnUnknownTools logs tool references that don't resolve to a stored
// function. The agent is still written; the reference may be created later.
func (m *Manager) warnUnknownTools(cfg domain.AgentConfig) {
	if m.tools == nil {
		return
	}
	names, err := m.tools.List()
	if err != nil {
		m.log.Warn().Err(err).Msg("could not check tool references")
		return
	}
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	for _, ref := range cfg.NormalizeTools() {
		if !known[ref] {
			m.log.Warn().Str("agent", cfg.Name).Str("tool", ref).Msg("agent references unknown tool")
		}
	}
}
