package agents

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/toolforge/internal/domain"
	"github.com/soyeahso/toolforge/internal/logging"
)

type fakeTools struct {
	names []string
}

func (f fakeTools) List() ([]string, error) { return f.names, nil }

func testManager(t *testing.T, tools ToolLister) *Manager {
	t.Helper()
	base := t.TempDir()
	toolsDir := filepath.Join(base, "tools")
	require.NoError(t, os.MkdirAll(toolsDir, 0o700))
	log := logging.New(nil, "silent")
	return NewManager(filepath.Join(base, "agents"), toolsDir, "gemini-2.0-flash", tools, log)
}

// --- Sanitize ---

func TestSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"my agent", "my_agent"},
		{"my-agent", "my_agent"},
		{"My Agent!", "My_Agent"},
		{"agent", "agent"},
		{"123agent", "_123agent"},
		{"_trimmed_", "trimmed"},
		{"a b-c", "a_b_c"},
		{"émile", "émile"},
	}
	for _, tc := range cases {
		got, err := Sanitize(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestSanitize_Invalid(t *testing.T) {
	for _, in := range []string{"", "!!!", "---", "   ", "func"} {
		_, err := Sanitize(in)
		assert.ErrorIs(t, err, ErrInvalidName, "input %q", in)
	}
}

// --- Create ---

func TestCreate_WritesAllFiles(t *testing.T) {
	m := testManager(t, fakeTools{names: []string{"add"}})

	cfg, err := m.Create(domain.AgentConfig{
		Name:        "calc agent",
		Instruction: "You add numbers.",
		Tools:       []string{"add"},
	})
	require.NoError(t, err)
	assert.Equal(t, "calc_agent", cfg.Name)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model)

	dir := filepath.Join(m.dir, "calc_agent")
	for _, f := range []string{"agent.json", "main.go", "go.mod"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, f)
	}

	data, err := os.ReadFile(filepath.Join(dir, "agent.json"))
	require.NoError(t, err)
	var stored domain.AgentConfig
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, cfg, stored)
}

func TestCreate_GeneratedMainReferencesTools(t *testing.T) {
	m := testManager(t, nil)

	_, err := m.Create(domain.AgentConfig{
		Name:        "calc",
		Instruction: "add things",
		Tools:       []string{"add", "greet", "add"},
	})
	require.NoError(t, err)

	src, err := os.ReadFile(filepath.Join(m.dir, "calc", "main.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), `_ "`+ToolsModulePath+`"`)
	assert.Contains(t, string(src), `"greet",`)
	// deduplicated
	assert.Equal(t, 1, strings.Count(string(src), `"add",`))

	mod, err := os.ReadFile(filepath.Join(m.dir, "calc", "go.mod"))
	require.NoError(t, err)
	assert.Contains(t, string(mod), "replace "+ToolsModulePath)
}

func TestCreate_NoTools_NoReplace(t *testing.T) {
	m := testManager(t, nil)

	_, err := m.Create(domain.AgentConfig{Name: "plain", Instruction: "chat"})
	require.NoError(t, err)

	mod, err := os.ReadFile(filepath.Join(m.dir, "plain", "go.mod"))
	require.NoError(t, err)
	assert.NotContains(t, string(mod), "replace")
	assert.NotContains(t, string(mod), "require")
}

func TestCreate_Duplicate(t *testing.T) {
	m := testManager(t, nil)

	_, err := m.Create(domain.AgentConfig{Name: "dup", Instruction: "x"})
	require.NoError(t, err)

	_, err = m.Create(domain.AgentConfig{Name: "dup", Instruction: "y"})
	assert.ErrorIs(t, err, ErrExists)
}

func TestCreate_SanitizedNameCollides(t *testing.T) {
	m := testManager(t, nil)

	_, err := m.Create(domain.AgentConfig{Name: "my agent", Instruction: "x"})
	require.NoError(t, err)

	// Different display name, same sanitized identity.
	_, err = m.Create(domain.AgentConfig{Name: "my-agent", Instruction: "y"})
	assert.ErrorIs(t, err, ErrExists)
}

func TestCreate_InvalidName(t *testing.T) {
	m := testManager(t, nil)

	_, err := m.Create(domain.AgentConfig{Name: "!!!", Instruction: "x"})
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestCreate_WritesToolsModule(t *testing.T) {
	m := testManager(t, nil)

	_, err := m.Create(domain.AgentConfig{Name: "a", Instruction: "x", Tools: []string{"add"}})
	require.NoError(t, err)

	mod, err := os.ReadFile(filepath.Join(m.toolsDir, "go.mod"))
	require.NoError(t, err)
	assert.Contains(t, string(mod), "module "+ToolsModulePath)
}

// --- List / Get ---

func TestList_EmptyAndPopulated(t *testing.T) {
	m := testManager(t, nil)

	names, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = m.Create(domain.AgentConfig{Name: "one", Instruction: "x"})
	require.NoError(t, err)
	_, err = m.Create(domain.AgentConfig{Name: "two", Instruction: "x"})
	require.NoError(t, err)

	names, err = m.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"one", "two"}, names)
}

func TestGet_RoundTrip(t *testing.T) {
	m := testManager(t, nil)

	created, err := m.Create(domain.AgentConfig{
		Name:        "helper",
		Description: "helps",
		Instruction: "be helpful",
		Tools:       []string{"greet"},
	})
	require.NoError(t, err)

	got, err := m.Get("helper")
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestGet_NotFound(t *testing.T) {
	m := testManager(t, nil)

	_, err := m.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_RejectsPathTraversal(t *testing.T) {
	m := testManager(t, nil)

	for _, name := range []string{"../escape", "a/b", `a\b`, ".", ""} {
		_, err := m.Get(name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

// --- Update ---

func TestUpdate_RegeneratesFiles(t *testing.T) {
	m := testManager(t, nil)

	_, err := m.Create(domain.AgentConfig{Name: "edit_me", Instruction: "v1"})
	require.NoError(t, err)

	updated, err := m.Update("edit_me", domain.AgentConfig{
		Name:        "edit_me",
		Instruction: "v2",
		Tools:       []string{"add"},
	})
	require.NoError(t, err)
	assert.Equal(t, "v2", updated.Instruction)

	got, err := m.Get("edit_me")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Instruction)

	src, err := os.ReadFile(filepath.Join(m.dir, "edit_me", "main.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), `"add",`)
}

func TestUpdate_NameMismatch(t *testing.T) {
	m := testManager(t, nil)

	_, err := m.Create(domain.AgentConfig{Name: "stable", Instruction: "x"})
	require.NoError(t, err)

	_, err = m.Update("stable", domain.AgentConfig{Name: "renamed", Instruction: "x"})
	assert.ErrorIs(t, err, ErrNameMismatch)
}

func TestUpdate_SanitizedNameMatches(t *testing.T) {
	m := testManager(t, nil)

	_, err := m.Create(domain.AgentConfig{Name: "my agent", Instruction: "x"})
	require.NoError(t, err)

	// The raw config name sanitizes to the addressed name.
	_, err = m.Update("my_agent", domain.AgentConfig{Name: "my agent", Instruction: "y"})
	assert.NoError(t, err)
}

func TestUpdate_NotFound(t *testing.T) {
	m := testManager(t, nil)

	_, err := m.Update("ghost", domain.AgentConfig{Name: "ghost", Instruction: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

// --- Delete ---

func TestDelete(t *testing.T) {
	m := testManager(t, nil)

	_, err := m.Create(domain.AgentConfig{Name: "doomed", Instruction: "x"})
	require.NoError(t, err)

	require.NoError(t, m.Delete("doomed"))

	_, err = os.Stat(filepath.Join(m.dir, "doomed"))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, m.Delete("doomed"), ErrNotFound)
}
