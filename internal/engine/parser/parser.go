package parser

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"codefacts/internal/core/errors"
)

// Parser resolves file paths to languages and turns source bytes into
// syntax trees. Parsing is pure: identical (language, source) input yields
// a structurally identical tree.
type Parser struct {
	loader       *GrammarLoader
	pools        map[string]*ParserPool
	extensions   map[string]string
	filenames    map[string]string
	interpreters map[string]string
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:       loader,
		pools:        make(map[string]*ParserPool),
		extensions:   make(map[string]string),
		filenames:    make(map[string]string),
		interpreters: make(map[string]string),
	}
	for lang, spec := range loader.LanguageRegistry() {
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = lang
		}
		for _, name := range spec.Filenames {
			p.filenames[strings.ToLower(name)] = lang
		}
		for _, interp := range spec.Interpreters {
			p.interpreters[interp] = lang
		}
		if grammar := loader.Language(lang); grammar != nil {
			p.pools[lang] = NewParserPool(grammar)
		}
	}
	return p
}

// Resolve maps a file path (and optionally its content, for shebang
// sniffing on extensionless files) to a language ID. Returns "" for
// unsupported files.
func (p *Parser) Resolve(path string, content []byte) string {
	base := strings.ToLower(filepath.Base(path))
	if lang, ok := p.filenames[base]; ok {
		return lang
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		return p.extensions[ext]
	}
	return p.resolveShebang(content)
}

func (p *Parser) resolveShebang(content []byte) string {
	if !bytes.HasPrefix(content, []byte("#!")) {
		return ""
	}
	line := content
	if idx := bytes.IndexByte(content, '\n'); idx >= 0 {
		line = content[:idx]
	}
	fields := strings.Fields(string(line[2:]))
	if len(fields) == 0 {
		return ""
	}
	interp := filepath.Base(fields[0])
	// "#!/usr/bin/env python3" names the interpreter in the second field.
	if interp == "env" && len(fields) > 1 {
		interp = filepath.Base(fields[1])
	}
	return p.interpreters[interp]
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.Resolve(path, nil) != ""
}

// Parse produces a syntax tree for the given language. The caller owns the
// returned tree and must Close it. A tree whose root contains syntax errors
// is reported as a parse failure: the engine treats such files as yielding
// zero facts rather than extracting from a broken tree.
func (p *Parser) Parse(lang string, content []byte) (*sitter.Tree, error) {
	pool, ok := p.pools[lang]
	if !ok {
		return nil, errors.New(errors.CodeNotSupported, fmt.Sprintf("no grammar loaded for language: %s", lang))
	}

	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeParseFailed, "parser returned no tree")
	}
	root := tree.RootNode()
	if root == nil || root.HasError() {
		tree.Close()
		return nil, errors.New(errors.CodeParseFailed, "source contains syntax errors")
	}
	return tree, nil
}

func (p *Parser) SupportedExtensions() []string {
	return p.loader.SupportedExtensions()
}
