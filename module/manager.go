// Package module resolves "import" statements against ORUSPATH, parses and
// links the referenced source files, and splices their exported
// declarations into the importing program's own AST before type-checking
// begins. It sits strictly upstream of types and compiler: it depends on
// lexer, parser and ast, and neither of those packages, nor types, nor
// compiler ever imports module back, so there is no import cycle to wire
// around, matching the teacher's strictly layered pipeline style.
package module

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"orus/ast"
)

// ExportKind classifies what a module export binds to, mirroring the
// {name, kind, register-or-function-index, type} export record.
type ExportKind int

const (
	ExportValue ExportKind = iota
	ExportFunction
	ExportType
)

func (k ExportKind) String() string {
	switch k {
	case ExportFunction:
		return "function"
	case ExportType:
		return "type"
	default:
		return "value"
	}
}

// ExportRecord describes one name a module makes available to importers.
// Binding is the export's own declared name, which Load leaves unqualified
// (only private names get the module qualifier), so compiler never needs
// to know the module's internal layout: by
// the time types/compiler see the merged program, the export is just
// another top-level declaration under that name.
type ExportRecord struct {
	Name     string
	Kind     ExportKind
	TypeName string
	Binding  string // the final identifier bound into the importer's scope
}

// Module is a fully resolved, self-contained unit: Program already has
// every import of its own spliced and qualified, so splicing Module.Program
// a second time into some importer's AST never needs to recurse into
// further imports.
type Module struct {
	Path      string // resolved absolute file path
	DottedName string // the "foo.bar" form used to import it
	Qualifier string // e.g. "$mod3", unique for the lifetime of the Manager
	Program   []ast.Stmt
	Exports   map[string]ExportRecord
}

// Manager resolves dotted module paths to files under ORUSPATH (plus a
// built-in directory next to the running executable and the current
// directory), and caches every
// module it loads by resolved path so a module imported from two different
// call sites is parsed and linked exactly once.
type Manager struct {
	SearchPath []string
	cache      map[string]*Module
	loading    map[string]bool
	nextID     int
}

// NewManager builds a Manager from the ORUSPATH environment convention:
// colon-separated directories, searched in order, plus a "lib" directory
// next to the executable for built-in modules, then the current directory.
// oruspath is passed in
// explicitly (rather than read here) so callers and tests can supply a
// value without mutating the process environment.
func NewManager(oruspath string) *Manager {
	var dirs []string
	if oruspath != "" {
		dirs = strings.Split(oruspath, ":")
	}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Join(filepath.Dir(exe), "lib"))
	}
	dirs = append(dirs, ".")
	return &Manager{
		SearchPath: dirs,
		cache:      make(map[string]*Module),
		loading:    make(map[string]bool),
	}
}

// Resolve turns a dotted module path such as "collections.list" into an
// absolute file path by joining its segments with ".orus" and searching
// SearchPath in order; the first existing file wins.
func (m *Manager) Resolve(dottedName string) (string, error) {
	rel := filepath.Join(strings.Split(dottedName, ".")...) + ".orus"
	for _, dir := range m.SearchPath {
		candidate := filepath.Join(dir, rel)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return candidate, nil
			}
			return abs, nil
		}
	}
	return "", fmt.Errorf("module %q not found on ORUSPATH (searched %s)", dottedName, strings.Join(m.SearchPath, ":"))
}

func localName(dottedName string) string {
	parts := strings.Split(dottedName, ".")
	return parts[len(parts)-1]
}

func (m *Manager) qualifier() string {
	m.nextID++
	return fmt.Sprintf("$mod%d", m.nextID)
}
