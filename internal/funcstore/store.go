// Package funcstore manages named function definitions inside a single
// shared Go source file. Every operation re-parses the full file, mutates
// the declaration list, and rewrites the file in gofmt form; a failed
// operation leaves the file untouched.
package funcstore

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/printer"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/soyeahso/toolforge/internal/domain"
	"github.com/soyeahso/toolforge/internal/logging"
)

// preamble is written when the backing file does not exist yet. Everything
// in it (and any other non-function declaration added later) is preserved
// across edits.
const preamble = `// Package tools holds the tool function definitions managed by toolforge.
// The file is rewritten through the management API on every change; gofmt
// output is the canonical formatting.
package tools
`

const parseMode = parser.ParseComments | parser.SkipObjectResolution

// Store provides create/read/update/delete of named function definitions
// within one backing Go source file. A single mutex serializes every
// read-parse-write cycle, so concurrent callers queue rather than race.
type Store struct {
	path string
	mu   sync.Mutex
	log  *logging.Logger
}

// New creates a store for the tools file at path, initializing the file
// with the standard preamble if it does not exist.
func New(path string, log *logging.Logger) (*Store, error) {
	s := &Store{path: path, log: log.Sub("funcstore")}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) init() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking tools file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating tools directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(preamble), 0o600); err != nil {
		return fmt.Errorf("initializing tools file: %w", err)
	}
	s.log.Info().Str("path", s.path).Msg("initialized empty tools file")
	return nil
}

// Create validates and appends a new function definition.
func (s *Store) Create(name, code string) (domain.ToolFunction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load()
	if err != nil {
		return domain.ToolFunction{}, err
	}
	if findFunction(p.file, name) != nil {
		return domain.ToolFunction{}, fmt.Errorf("%w: %q", ErrAlreadyExists, name)
	}

	text, err := parseDefinition(name, code)
	if err != nil {
		return domain.ToolFunction{}, err
	}

	var out bytes.Buffer
	out.Write(p.src)
	if !bytes.HasSuffix(p.src, []byte("\n")) {
		out.WriteByte('\n')
	}
	out.WriteByte('\n')
	out.WriteString(text)
	out.WriteByte('\n')

	if err := s.write(out.Bytes()); err != nil {
		return domain.ToolFunction{}, err
	}

	s.log.Info().Str("name", name).Msg("function created")
	return domain.ToolFunction{Name: name, Code: text}, nil
}

// Get returns the definition with the given name, re-rendered from the
// parsed declaration rather than the original bytes.
func (s *Store) Get(name string) (domain.ToolFunction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load()
	if err != nil {
		return domain.ToolFunction{}, err
	}
	fn := findFunction(p.file, name)
	if fn == nil {
		return domain.ToolFunction{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	text, err := renderDecl(p.fset, fn, p.file.Comments)
	if err != nil {
		return domain.ToolFunction{}, err
	}
	return domain.ToolFunction{Name: name, Code: text}, nil
}

// List returns the names of all stored functions in file order.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(p.file.Decls))
	for _, decl := range p.file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && fn.Recv == nil {
			names = append(names, fn.Name.Name)
		}
	}
	return names, nil
}

// Update replaces an existing definition in place. The declaration keeps
// its original position in the file.
func (s *Store) Update(name, code string) (domain.ToolFunction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load()
	if err != nil {
		return domain.ToolFunction{}, err
	}
	fn := findFunction(p.file, name)
	if fn == nil {
		return domain.ToolFunction{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	text, err := parseDefinition(name, code)
	if err != nil {
		return domain.ToolFunction{}, err
	}

	start, end := p.span(fn)
	var out bytes.Buffer
	out.Write(p.src[:start])
	out.WriteString(text)
	out.Write(p.src[end:])

	if err := s.write(out.Bytes()); err != nil {
		return domain.ToolFunction{}, err
	}

	s.log.Info().Str("name", name).Msg("function updated")
	return domain.ToolFunction{Name: name, Code: text}, nil
}

// Delete removes a definition, doc comment included. All other
// declarations keep their relative order.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load()
	if err != nil {
		return err
	}
	fn := findFunction(p.file, name)
	if fn == nil {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	start, end := p.span(fn)
	var out bytes.Buffer
	out.Write(p.src[:start])
	out.Write(p.src[end:])

	if err := s.write(out.Bytes()); err != nil {
		return err
	}

	s.log.Info().Str("name", name).Msg("function deleted")
	return nil
}

// parsedFile bundles one full parse of the backing file.
type parsedFile struct {
	fset *token.FileSet
	file *ast.File
	src  []byte
}

// span returns the byte range of a declaration in the source, extended to
// cover its doc comment.
func (p *parsedFile) span(fn *ast.FuncDecl) (int, int) {
	start := fn.Pos()
	if fn.Doc != nil {
		start = fn.Doc.Pos()
	}
	return p.fset.Position(start).Offset, p.fset.Position(fn.End()).Offset
}

func (s *Store) load() (*parsedFile, error) {
	src, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading tools file: %w", err)
	}
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, s.path, src, parseMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageCorrupt, err)
	}
	return &parsedFile{fset: fset, file: file, src: src}, nil
}

// write reformats the assembled source, verifies it still parses (both
// happen inside format.Source) and replaces the backing file atomically.
// Nothing is written when formatting fails, so a bad assembly can never
// corrupt the file.
func (s *Store) write(src []byte) error {
	formatted, err := format.Source(src)
	if err != nil {
		return fmt.Errorf("rendering tools file: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, formatted, 0o600); err != nil {
		return fmt.Errorf("writing tools file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing tools file: %w", err)
	}
	return nil
}

// findFunction scans top-level declarations for a non-method function with
// the exact given name.
func findFunction(file *ast.File, name string) *ast.FuncDecl {
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv != nil {
			continue
		}
		if fn.Name.Name == name {
			return fn
		}
	}
	return nil
}

// parseDefinition parses submitted source as a standalone definition and
// returns its canonical rendering. The code must contain exactly one
// declaration, it must be a non-method function, and its name must match
// the addressed name.
func parseDefinition(name, code string) (string, error) {
	src := "package tools\n\n" + strings.TrimSpace(code) + "\n"
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "definition.go", src, parseMode)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if len(file.Decls) != 1 {
		return "", fmt.Errorf("%w: expected exactly one declaration, got %d",
			ErrInvalidDefinition, len(file.Decls))
	}
	fn, ok := file.Decls[0].(*ast.FuncDecl)
	if !ok || fn.Recv != nil {
		return "", fmt.Errorf("%w: declaration is not a top-level function", ErrInvalidDefinition)
	}
	if fn.Name.Name != name {
		return "", fmt.Errorf("%w: code declares %q, addressed as %q",
			ErrNameMismatch, fn.Name.Name, name)
	}
	return renderDecl(fset, fn, file.Comments)
}

// renderDecl prints a single declaration, doc comment included, in gofmt form.
func renderDecl(fset *token.FileSet, fn *ast.FuncDecl, comments []*ast.CommentGroup) (string, error) {
	var buf bytes.Buffer
	cfg := printer.Config{Mode: printer.UseSpaces | printer.TabIndent, Tabwidth: 8}
	node := &printer.CommentedNode{Node: fn, Comments: comments}
	if err := cfg.Fprint(&buf, fset, node); err != nil {
		return "", fmt.Errorf("rendering declaration: %w", err)
	}
	return buf.String(), nil
}
