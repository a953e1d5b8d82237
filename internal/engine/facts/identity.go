package facts

import (
	"fmt"
	"strings"
)

// Stamp fills each fact's identity: a hash of (file path, kind, qualified
// name) — never of source position, so identities survive formatting and
// reordering-insensitive edits but not renames or moves.
//
// Colliding raw identities (legitimate, e.g. overloaded methods) are
// disambiguated by declaration order: the first occurrence keeps the bare
// hash and each subsequent one gets a "#n" suffix (n >= 1). Adding an
// overload therefore never churns the identity of the first declaration.
func Stamp(in []Fact) []Fact {
	seen := make(map[string]int, len(in))
	out := make([]Fact, len(in))
	for i, fact := range in {
		raw := rawIdentity(fact)
		n := seen[raw]
		seen[raw]++
		if n == 0 {
			fact.Identity = raw
		} else {
			fact.Identity = fmt.Sprintf("%s#%d", raw, n)
		}
		out[i] = fact
	}
	return out
}

func rawIdentity(f Fact) string {
	key := strings.Join([]string{f.FilePath, string(f.Kind), f.QualifiedName}, "|")
	return HashKey(key)
}
