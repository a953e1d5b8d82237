package facts

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"codefacts/internal/shared/util"
)

// Extractor walks a syntax tree depth-first and yields facts as declared
// by the language's capability table. The walker itself is language
// agnostic; it only consults the profile.
type Extractor struct {
	profiles map[string]*Profile
}

func NewExtractor() *Extractor {
	return &Extractor{profiles: Profiles()}
}

// Extract yields the ordered (pre-order) fact sequence for one file.
// Facts come back with qualified name, span, signature hash and
// complexity populated; identities are stamped downstream.
func (e *Extractor) Extract(root *sitter.Node, source []byte, filePath, language string) []Fact {
	profile, ok := e.profiles[language]
	if !ok || root == nil {
		return nil
	}

	w := &walker{
		source:   source,
		filePath: filePath,
		language: language,
		profile:  profile,
	}
	w.walk(root, nil, 0, []string{ModuleName(filePath, language)})
	return w.facts
}

// ModuleName derives the module segment of a qualified name from the
// repository-relative path: extension stripped, separators become dots,
// and a Python __init__.py collapses to its package directory.
func ModuleName(path, language string) string {
	p := util.NormalizePath(path)
	p = strings.TrimSuffix(p, filepath.Ext(p))
	if language == "python" {
		p = strings.TrimSuffix(p, "/__init__")
		p = strings.TrimSuffix(p, "__init__")
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return "_"
	}
	return strings.ReplaceAll(p, "/", ".")
}

type walker struct {
	source   []byte
	filePath string
	language string
	profile  *Profile
	facts    []Fact
}

func (w *walker) walk(node, parent *sitter.Node, childIdx uint, scope []string) {
	scopeName := ""
	for _, rule := range w.profile.Rules[node.Kind()] {
		if rule.ParentKind != "" && (parent == nil || parent.Kind() != rule.ParentKind) {
			continue
		}

		name := w.ruleName(node, rule)
		if rule.NameRE != nil {
			if name == "" || !rule.NameRE.MatchString(name) {
				continue
			}
		}
		if name == "" || rule.Anonymous {
			// Position-in-parent keeps synthesized names deterministic.
			name = fmt.Sprintf("%s@%d", rule.Kind, childIdx)
		}

		fact := Fact{
			Kind:          rule.Kind,
			QualifiedName: strings.Join(append(scope, name), "."),
			FilePath:      w.filePath,
			Language:      w.language,
			Span:          spanOf(node),
			SignatureHash: w.signatureHash(node),
		}
		if rule.Complexity {
			fact.Complexity = w.cyclomatic(node)
		}
		w.facts = append(w.facts, fact)

		if rule.Scope && scopeName == "" {
			scopeName = name
		}
	}

	childScope := scope
	if scopeName != "" {
		childScope = append(append([]string(nil), scope...), scopeName)
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		w.walk(node.Child(i), node, i, childScope)
	}
}

func (w *walker) ruleName(node *sitter.Node, rule NodeRule) string {
	var nameNode *sitter.Node
	if rule.NameField != "" {
		nameNode = childByFieldPath(node, rule.NameField)
	}
	if nameNode == nil && rule.NameChild != "" {
		nameNode = firstDescendant(node, rule.NameChild)
	}
	if nameNode == nil && rule.NameField == "" && rule.NameChild == "" && !rule.Anonymous {
		nameNode = node
	}
	if nameNode == nil {
		return ""
	}

	name := canonicalizeName(w.text(nameNode))
	name = strings.TrimPrefix(name, rule.TrimPrefix)
	if rule.StripQuotes {
		name = strings.Trim(name, "\"'`")
	}
	return name
}

// signatureHash fingerprints the node with nested scope-opening subtrees
// excluded, so renaming or editing a method never marks its class
// modified.
func (w *walker) signatureHash(node *sitter.Node) string {
	return HashNodeSkipping(node, w.source, w.opensScope)
}

func (w *walker) opensScope(node *sitter.Node) bool {
	for _, rule := range w.profile.Rules[node.Kind()] {
		if rule.Scope {
			return true
		}
	}
	return false
}

func (w *walker) text(node *sitter.Node) string {
	return string(w.source[node.StartByte():node.EndByte()])
}

// cyclomatic estimates complexity as 1 plus the number of branching
// constructs in the subtree, per the language's branching table.
func (w *walker) cyclomatic(node *sitter.Node) int {
	score := 1
	stack := []*sitter.Node{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if w.profile.Branching[n.Kind()] {
			score++
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			stack = append(stack, n.Child(i))
		}
	}
	return score
}

func childByFieldPath(node *sitter.Node, path string) *sitter.Node {
	current := node
	for _, field := range strings.Split(path, ".") {
		if current == nil {
			return nil
		}
		current = current.ChildByFieldName(field)
	}
	return current
}

func firstDescendant(node *sitter.Node, kind string) *sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == kind {
			return child
		}
		if found := firstDescendant(child, kind); found != nil {
			return found
		}
	}
	return nil
}

func spanOf(node *sitter.Node) Span {
	return Span{
		StartLine: int(node.StartPosition().Row) + 1,
		StartCol:  int(node.StartPosition().Column) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
		EndCol:    int(node.EndPosition().Column) + 1,
	}
}
