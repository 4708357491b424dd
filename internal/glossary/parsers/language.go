package parsers

import (
	"bytes"
	"sort"
	"strings"
	"unsafe"

	kotlin "github.com/tree-sitter-grammars/tree-sitter-kotlin/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
)

// Language identifies a supported source language.
type Language int

const (
	Unsupported Language = iota
	PHP
	Java
	Kotlin
	Ruby
)

// String returns the lower-case language name.
func (l Language) String() string {
	if c, ok := capabilities[l]; ok {
		return c.name
	}
	return "unsupported"
}

// capability describes how declarations and their documentation comments
// look in one language's syntax tree. The generic parser is driven entirely
// by this table.
type capability struct {
	name       string
	extensions []string

	// grammar returns the raw tree-sitter language for a source; it is
	// wrapped per parse.
	grammar func(source []byte) unsafe.Pointer

	declarationKinds map[string]bool
	commentKinds     map[string]bool

	// identifierKinds are tried in order among direct children when the
	// declaration has no "name" field.
	identifierKinds []string

	// bodyKinds are wrapper nodes whose leading comments the grammar
	// attaches before the wrapper instead of inside it.
	bodyKinds map[string]bool

	// docPrefix, when set, is required at the start of a comment for it to
	// document a declaration. Empty means any comment qualifies.
	docPrefix string

	// concatenate joins the whole run of adjacent comments (Ruby "#" lines)
	// instead of picking a single doc block.
	concatenate bool
}

func fixed(language func() unsafe.Pointer) func([]byte) unsafe.Pointer {
	return func([]byte) unsafe.Pointer { return language() }
}

// phpGrammar picks the HTML-embedding grammar when the file has an opening
// tag and the PHP-only grammar otherwise, so bare class files still parse
// as code instead of inline text.
func phpGrammar(source []byte) unsafe.Pointer {
	if bytes.Contains(source, []byte("<?")) {
		return php.LanguagePHP()
	}
	return php.LanguagePHPOnly()
}

func set(kinds ...string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

// capabilities is read-only after package initialization.
var capabilities = map[Language]capability{
	PHP: {
		name:             "php",
		extensions:       []string{"php"},
		grammar:          phpGrammar,
		declarationKinds: set("class_declaration", "interface_declaration", "trait_declaration", "enum_declaration"),
		commentKinds:     set("comment"),
		identifierKinds:  []string{"name"},
		docPrefix:        "/**",
	},
	Java: {
		name:             "java",
		extensions:       []string{"java"},
		grammar:          fixed(java.Language),
		declarationKinds: set("class_declaration", "interface_declaration", "enum_declaration", "record_declaration"),
		commentKinds:     set("line_comment", "block_comment"),
		identifierKinds:  []string{"identifier"},
		docPrefix:        "/**",
	},
	Kotlin: {
		name:             "kotlin",
		extensions:       []string{"kt", "kts"},
		grammar:          fixed(kotlin.Language),
		declarationKinds: set("class_declaration", "object_declaration", "interface_declaration"),
		commentKinds:     set("line_comment", "block_comment", "multiline_comment", "comment"),
		identifierKinds:  []string{"type_identifier", "identifier", "simple_identifier"},
		docPrefix:        "/**",
	},
	Ruby: {
		name:             "ruby",
		extensions:       []string{"rb"},
		grammar:          fixed(ruby.Language),
		declarationKinds: set("class", "module"),
		commentKinds:     set("comment"),
		identifierKinds:  []string{"constant", "scope_resolution"},
		bodyKinds:        set("body_statement"),
		concatenate:      true,
	},
}

var extensionIndex = func() map[string]Language {
	idx := make(map[string]Language)
	for lang, c := range capabilities {
		for _, ext := range c.extensions {
			idx[ext] = lang
		}
	}
	return idx
}()

// Classify maps a file extension, with or without the leading dot, to a
// supported language. The second result is false for unsupported
// extensions, which is not an error.
func Classify(ext string) (Language, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	lang, ok := extensionIndex[ext]
	return lang, ok
}

// Extensions returns every supported extension with a leading dot, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(extensionIndex))
	for ext := range extensionIndex {
		exts = append(exts, "."+ext)
	}
	sort.Strings(exts)
	return exts
}

// Languages returns the supported languages in declaration order.
func Languages() []Language {
	return []Language{PHP, Java, Kotlin, Ruby}
}
