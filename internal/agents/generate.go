package agents

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/soyeahso/toolforge/internal/domain"
)

// ToolsModulePath is the import path generated agents use for the shared
// tools package. Each agent's go.mod carries a replace directive pointing
// it at the tools directory on disk.
const ToolsModulePath = "toolforge.local/tools"

// The tools module is blank-imported: tool functions keep whatever casing
// their author gave them, so the agent binary links the package without
// naming unexported identifiers across the module boundary.
var mainTemplate = template.Must(template.New("main").Parse(`// Code generated by toolforge. DO NOT EDIT.

package main

import (
	"fmt"
{{- if .Tools}}

	_ "{{.ModulePath}}"
{{- end}}
)

// Agent bundles the configuration and tool references for this agent.
type Agent struct {
	Name        string
	Model       string
	Description string
	Instruction string
	Tools       []string
}

var rootAgent = Agent{
	Name:        {{printf "%q" .Name}},
	Model:       {{printf "%q" .Model}},
	Description: {{printf "%q" .Description}},
	Instruction: {{printf "%q" .Instruction}},
{{- if .Tools}}
	Tools: []string{
{{- range .Tools}}
		{{printf "%q" .}},
{{- end}}
	},
{{- end}}
}

func main() {
	fmt.Printf("agent %s (%s) ready with %d tool(s)\n",
		rootAgent.Name, rootAgent.Model, len(rootAgent.Tools))
}
`))

var modTemplate = template.Must(template.New("mod").Parse(`module {{.Name}}

go 1.25
{{if .Tools}}
require {{.ModulePath}} v0.0.0

replace {{.ModulePath}} => {{.ToolsDir}}
{{end}}`))

type templateData struct {
	Name        string
	Model       string
	Description string
	Instruction string
	Tools       []string
	ModulePath  string
	ToolsDir    string
}

// renderMain produces the agent's main.go source.
func renderMain(cfg domain.AgentConfig) ([]byte, error) {
	var buf bytes.Buffer
	data := templateData{
		Name:        cfg.Name,
		Model:       cfg.Model,
		Description: cfg.Description,
		Instruction: cfg.Instruction,
		Tools:       cfg.NormalizeTools(),
		ModulePath:  ToolsModulePath,
	}
	if err := mainTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering agent main.go: %w", err)
	}
	return buf.Bytes(), nil
}

// renderMod produces the agent's go.mod, wiring the shared tools module
// through a replace directive when the agent references any tools.
func renderMod(cfg domain.AgentConfig, toolsDir string) ([]byte, error) {
	var buf bytes.Buffer
	data := templateData{
		Name:       cfg.Name,
		Tools:      cfg.NormalizeTools(),
		ModulePath: ToolsModulePath,
		ToolsDir:   toolsDir,
	}
	if err := modTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering agent go.mod: %w", err)
	}
	return buf.Bytes(), nil
}

// EnsureToolsModule writes a go.mod next to the backing tools file so
// generated agents can resolve the tools package. Existing files are left
// alone.
func EnsureToolsModule(toolsDir string) error {
	path := filepath.Join(toolsDir, "go.mod")
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	content := fmt.Sprintf("module %s\n\ngo 1.25\n", ToolsModulePath)
	return os.WriteFile(path, []byte(content), 0o600)
}
