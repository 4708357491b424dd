// Package parsers builds tree-sitter syntax trees for the supported
// languages and finds the type declarations that carry documentation
// comments.
//
// All languages share one traversal. What differs between them (declaration
// and comment node kinds, how the name is found, whether a doc prefix is
// required, whether adjacent comments are joined) lives in a capability
// table.
package parsers

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var (
	// ErrGrammarUnavailable indicates the tree-sitter grammar could not be
	// loaded. It is a build defect, not a property of the parsed file.
	ErrGrammarUnavailable = errors.New("grammar unavailable")

	// ErrUnsupportedLanguage indicates a parser was requested for a language
	// outside the capability table.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// Declaration is a documented type declaration found in a syntax tree.
// It holds copies of everything it needs and does not reference the tree.
type Declaration struct {
	Name    string
	Kind    string // tree-sitter node kind, e.g. "class_declaration"
	Line    int    // 1-based line of the declaration itself
	Comment CommentBlock
}

// Parser extracts documented declarations for one language.
// A Parser holds no tree-sitter state; each Parse call builds its own
// parser and grammar handle, so a Parser may be shared between goroutines.
type Parser struct {
	lang Language
	capability
}

// NewParser returns the parser for lang.
func NewParser(lang Language) (*Parser, error) {
	c, ok := capabilities[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedLanguage, lang)
	}
	return &Parser{lang: lang, capability: c}, nil
}

// Language returns the language this parser handles.
func (p *Parser) Language() Language {
	return p.lang
}

// Parse builds a syntax tree for source and returns every declaration, at
// any depth, that has an associated documentation comment, in pre-order.
// Malformed source still yields declarations from the error-tolerant tree.
func (p *Parser) Parse(ctx context.Context, source []byte) ([]Declaration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(sitter.NewLanguage(p.grammar(source))); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrGrammarUnavailable, p.name, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s source", p.name)
	}
	defer tree.Close()

	var decls []Declaration
	walkPreOrder(tree.RootNode(), func(n *sitter.Node) {
		if !p.declarationKinds[n.Kind()] {
			return
		}

		name := p.declarationName(n, source)
		if name == "" {
			return
		}

		block := p.associate(n, source)
		if block.IsZero() {
			return
		}

		decls = append(decls, Declaration{
			Name:    name,
			Kind:    n.Kind(),
			Line:    int(n.StartPosition().Row) + 1,
			Comment: block,
		})
	})

	return decls, nil
}

// declarationName reads the "name" field, falling back to the first direct
// child whose kind is one of the language's identifier kinds.
func (c capability) declarationName(decl *sitter.Node, source []byte) string {
	if nameNode := decl.ChildByFieldName("name"); nameNode != nil {
		return nameNode.Utf8Text(source)
	}

	for _, kind := range c.identifierKinds {
		if child := findChildByKind(decl, kind); child != nil {
			return child.Utf8Text(source)
		}
	}
	return ""
}

// walkPreOrder visits every node under root in pre-order using an explicit
// stack, so deeply nested trees cannot exhaust the goroutine stack.
func walkPreOrder(root *sitter.Node, visit func(*sitter.Node)) {
	if root == nil {
		return
	}

	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		visit(n)

		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			if child := n.Child(uint(i)); child != nil {
				stack = append(stack, child)
			}
		}
	}
}

// findChildByKind finds the first direct child with the given kind.
func findChildByKind(node *sitter.Node, kind string) *sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}
