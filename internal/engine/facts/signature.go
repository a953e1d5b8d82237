package facts

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// HashNode fingerprints the semantically relevant text of a node: the
// pre-order stream of leaf token texts, with comment nodes skipped.
// Formatting-only edits (reindentation, comment changes, blank lines)
// therefore hash identically, while any token-level change does not.
func HashNode(node *sitter.Node, source []byte) string {
	return HashNodeSkipping(node, source, nil)
}

// HashNodeSkipping hashes like HashNode but excludes any descendant
// subtree for which skip returns true. The root itself is never skipped.
// Containers use this so nested definitions hash independently: a change
// inside a method touches the method's hash, not its class's.
func HashNodeSkipping(node *sitter.Node, source []byte, skip func(*sitter.Node) bool) string {
	h := sha256.New()
	if node != nil {
		if node.ChildCount() == 0 {
			appendTokens(h, node, source, skip)
		} else {
			for i := uint(0); i < node.ChildCount(); i++ {
				appendTokens(h, node.Child(i), source, skip)
			}
		}
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}

type byteWriter interface {
	Write(p []byte) (int, error)
}

func appendTokens(w byteWriter, node *sitter.Node, source []byte, skip func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	kind := node.Kind()
	if strings.Contains(kind, "comment") {
		return
	}
	if skip != nil && skip(node) {
		return
	}
	if node.ChildCount() == 0 {
		w.Write(source[node.StartByte():node.EndByte()])
		w.Write([]byte{0})
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		appendTokens(w, node.Child(i), source, skip)
	}
}

// HashKey fingerprints an arbitrary string the same way HashNode
// fingerprints a subtree. Used for raw identities.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

// canonicalizeName collapses internal whitespace so that a reference
// like "os.path.\n    join" names the same symbol as "os.path.join".
func canonicalizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return whitespaceRe.ReplaceAllString(s, "")
}
