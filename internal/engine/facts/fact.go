package facts

// Kind tags one extracted unit of information. The set is closed per
// language profile; extending a language means extending its rule table.
type Kind string

const (
	KindDefinition Kind = "definition"
	KindReference  Kind = "reference"
	KindImport     Kind = "import"
	KindExport     Kind = "export"
	KindAnnotation Kind = "annotation"
	KindDecorator  Kind = "decorator"
	KindDocstring  Kind = "docstring"
	KindTest       Kind = "test"
)

// Span locates a fact in the source text. Lines and columns are 1-based.
// Spans are informational only: they participate neither in identity nor
// in the equality the delta computer uses.
type Span struct {
	StartLine int `json:"start_line"`
	StartCol  int `json:"start_col"`
	EndLine   int `json:"end_line"`
	EndCol    int `json:"end_col"`
}

// Fact is one extracted structural unit from a parsed file. Facts are
// immutable once stamped with an identity.
type Fact struct {
	Identity      string `json:"identity"`
	Kind          Kind   `json:"kind"`
	QualifiedName string `json:"qualified_name"`
	FilePath      string `json:"file_path"`
	Language      string `json:"language"`
	Span          Span   `json:"span"`
	SignatureHash string `json:"signature_hash"`
	// Complexity is a cyclomatic estimate, populated for definitions.
	Complexity int `json:"complexity,omitempty"`
}
