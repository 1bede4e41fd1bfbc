package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/panbanda/sweepstacx/pkg/imports"
)

// Language represents a supported programming language.
type Language string

const (
	LangPython     Language = "python"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangTSX        Language = "tsx"
	LangUnknown    Language = "unknown"
)

// String implements fmt.Stringer.
func (l Language) String() string {
	return string(l)
}

// Family groups languages by import syntax for the --lang switch.
type Family string

const (
	FamilyJS     Family = "js"
	FamilyTS     Family = "ts"
	FamilyPython Family = "py"
)

// Extensions lists the file extensions of each family.
var Extensions = map[Family][]string{
	FamilyJS:     {".js", ".jsx", ".mjs", ".cjs"},
	FamilyTS:     {".ts", ".tsx"},
	FamilyPython: {".py"},
}

// AllExtensions returns every scanned extension.
func AllExtensions() []string {
	var out []string
	for _, f := range []Family{FamilyJS, FamilyTS, FamilyPython} {
		out = append(out, Extensions[f]...)
	}
	return out
}

// DetectLanguage determines the language from a file path.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return LangPython
	case ".ts":
		return LangTypeScript
	case ".tsx":
		return LangTSX
	case ".js", ".mjs", ".cjs":
		return LangJavaScript
	case ".jsx":
		return LangTSX // Use TSX parser for JSX
	default:
		return LangUnknown
	}
}

// GrammarFor returns the import grammar used for lang.
func GrammarFor(lang Language) (imports.Grammar, bool) {
	switch lang {
	case LangPython:
		return imports.GrammarPython, true
	case LangJavaScript, LangTypeScript, LangTSX:
		return imports.GrammarES, true
	}
	return "", false
}

// GetTreeSitterLanguage returns the tree-sitter language for a Language enum.
func GetTreeSitterLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangPython:
		return python.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// Parser wraps tree-sitter for syntax verification of rewritten files.
type Parser struct {
	parser *sitter.Parser
}

// New creates a new parser instance.
func New() *Parser {
	return &Parser{
		parser: sitter.NewParser(),
	}
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// Parse parses source code with a specified language.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language) (*sitter.Tree, error) {
	tsLang, err := GetTreeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}
	return tree, nil
}

// CountErrors returns the number of ERROR and MISSING nodes in source.
func (p *Parser) CountErrors(ctx context.Context, source []byte, lang Language) (int, error) {
	tree, err := p.Parse(ctx, source, lang)
	if err != nil {
		return 0, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return 0, nil
	}
	n := 0
	Walk(root, func(node *sitter.Node) bool {
		if node.IsError() || node.IsMissing() {
			n++
		}
		return node.HasError()
	})
	return n, nil
}

// Regressed reports whether after has more syntax errors than before.
func (p *Parser) Regressed(ctx context.Context, before, after []byte, lang Language) (bool, error) {
	was, err := p.CountErrors(ctx, before, lang)
	if err != nil {
		return false, err
	}
	now, err := p.CountErrors(ctx, after, lang)
	if err != nil {
		return false, err
	}
	return now > was, nil
}

// NodeVisitor is a function that visits AST nodes. Returning false skips
// the node's children.
type NodeVisitor func(node *sitter.Node) bool

// Walk traverses the AST calling visitor for each node.
func Walk(node *sitter.Node, visitor NodeVisitor) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		Walk(node.Child(i), visitor)
	}
}
