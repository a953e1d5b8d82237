package facts

import "regexp"

// NodeRule declares that a syntax node kind yields a fact. The walker is
// language-agnostic; everything language-specific lives in these tables.
type NodeRule struct {
	Kind Kind
	// NameField is a tree-sitter field path ("name", "declaration.name")
	// resolved against the node to find the naming child.
	NameField string
	// NameChild is a fallback: the kind of the first descendant whose
	// text names the fact.
	NameChild string
	// ParentKind restricts the rule to nodes with this direct parent.
	ParentKind string
	// TrimPrefix is stripped from the extracted name (e.g. "@").
	TrimPrefix  string
	StripQuotes bool
	// NameRE, when set, must match the extracted name or no fact is
	// emitted (e.g. test naming conventions).
	NameRE *regexp.Regexp
	// Scope marks definitions that open a new naming scope.
	Scope bool
	// Anonymous forces a synthesized position-derived name.
	Anonymous bool
	// Complexity enables the cyclomatic estimate for this fact.
	Complexity bool
}

// Profile is the capability table for one language.
type Profile struct {
	Language  string
	Rules     map[string][]NodeRule
	Branching map[string]bool
}

var (
	pyTestRE   = regexp.MustCompile(`^test_`)
	jsTestRE   = regexp.MustCompile(`^(it|test)$`)
	goTestRE   = regexp.MustCompile(`^Test`)
	profileSet = buildProfiles()
)

// Profiles returns the capability table for every supported language.
// The returned map is shared; callers must not mutate it.
func Profiles() map[string]*Profile {
	return profileSet
}

func buildProfiles() map[string]*Profile {
	jsRules := map[string][]NodeRule{
		"function_declaration": {
			{Kind: KindDefinition, NameField: "name", Scope: true, Complexity: true},
		},
		"generator_function_declaration": {
			{Kind: KindDefinition, NameField: "name", Scope: true, Complexity: true},
		},
		"class_declaration": {
			{Kind: KindDefinition, NameField: "name", Scope: true},
		},
		"method_definition": {
			{Kind: KindDefinition, NameField: "name", Scope: true, Complexity: true},
		},
		"arrow_function": {
			{Kind: KindDefinition, Anonymous: true, Scope: true, Complexity: true},
		},
		"function_expression": {
			{Kind: KindDefinition, Anonymous: true, Scope: true, Complexity: true},
		},
		"import_statement": {
			{Kind: KindImport, NameField: "source", StripQuotes: true},
		},
		"export_statement": {
			{Kind: KindExport, NameField: "declaration.name"},
		},
		"decorator": {
			{Kind: KindDecorator, TrimPrefix: "@"},
		},
		"call_expression": {
			{Kind: KindReference, NameField: "function"},
			{Kind: KindTest, NameField: "function", NameRE: jsTestRE},
		},
	}
	jsBranching := map[string]bool{
		"if_statement":     true,
		"for_statement":    true,
		"for_in_statement": true,
		"while_statement":  true,
		"do_statement":     true,
		"switch_statement": true,
	}

	tsRules := cloneRules(jsRules)
	tsRules["interface_declaration"] = []NodeRule{
		{Kind: KindDefinition, NameField: "name", Scope: true},
	}
	tsRules["enum_declaration"] = []NodeRule{
		{Kind: KindDefinition, NameField: "name", Scope: true},
	}
	tsRules["type_alias_declaration"] = []NodeRule{
		{Kind: KindDefinition, NameField: "name"},
	}
	tsRules["type_annotation"] = []NodeRule{
		{Kind: KindAnnotation, TrimPrefix: ":"},
	}

	return map[string]*Profile{
		"python": {
			Language: "python",
			Rules: map[string][]NodeRule{
				"function_definition": {
					{Kind: KindDefinition, NameField: "name", Scope: true, Complexity: true},
					{Kind: KindTest, NameField: "name", NameRE: pyTestRE},
				},
				"class_definition": {
					{Kind: KindDefinition, NameField: "name", Scope: true},
				},
				"lambda": {
					{Kind: KindDefinition, Anonymous: true, Scope: true, Complexity: true},
				},
				"import_statement": {
					{Kind: KindImport, NameChild: "dotted_name"},
				},
				"import_from_statement": {
					{Kind: KindImport, NameField: "module_name"},
				},
				"decorator": {
					{Kind: KindDecorator, TrimPrefix: "@"},
				},
				"call": {
					{Kind: KindReference, NameField: "function"},
				},
				"type": {
					{Kind: KindAnnotation},
				},
				"string": {
					{Kind: KindDocstring, ParentKind: "expression_statement", Anonymous: true},
				},
			},
			Branching: map[string]bool{
				"if_statement":    true,
				"for_statement":   true,
				"while_statement": true,
				"try_statement":   true,
				"with_statement":  true,
				"match_statement": true,
			},
		},
		"javascript": {
			Language:  "javascript",
			Rules:     jsRules,
			Branching: jsBranching,
		},
		"typescript": {
			Language:  "typescript",
			Rules:     tsRules,
			Branching: jsBranching,
		},
		"tsx": {
			Language:  "tsx",
			Rules:     cloneRules(tsRules),
			Branching: jsBranching,
		},
		"go": {
			Language: "go",
			Rules: map[string][]NodeRule{
				"function_declaration": {
					{Kind: KindDefinition, NameField: "name", Scope: true, Complexity: true},
					{Kind: KindTest, NameField: "name", NameRE: goTestRE},
				},
				"method_declaration": {
					{Kind: KindDefinition, NameField: "name", Scope: true, Complexity: true},
				},
				"func_literal": {
					{Kind: KindDefinition, Anonymous: true, Scope: true, Complexity: true},
				},
				"type_spec": {
					{Kind: KindDefinition, NameField: "name"},
					{Kind: KindAnnotation, NameField: "name"},
				},
				"import_spec": {
					{Kind: KindImport, NameField: "path", StripQuotes: true},
				},
				"call_expression": {
					{Kind: KindReference, NameField: "function"},
				},
			},
			Branching: map[string]bool{
				"if_statement":                true,
				"for_statement":               true,
				"expression_switch_statement": true,
				"type_switch_statement":       true,
				"select_statement":            true,
			},
		},
		"java": {
			Language: "java",
			Rules: map[string][]NodeRule{
				"class_declaration": {
					{Kind: KindDefinition, NameField: "name", Scope: true},
				},
				"interface_declaration": {
					{Kind: KindDefinition, NameField: "name", Scope: true},
				},
				"enum_declaration": {
					{Kind: KindDefinition, NameField: "name", Scope: true},
				},
				"method_declaration": {
					{Kind: KindDefinition, NameField: "name", Scope: true, Complexity: true},
				},
				"constructor_declaration": {
					{Kind: KindDefinition, NameField: "name", Scope: true, Complexity: true},
				},
				"lambda_expression": {
					{Kind: KindDefinition, Anonymous: true, Scope: true},
				},
				"import_declaration": {
					{Kind: KindImport, NameChild: "scoped_identifier"},
				},
				"method_invocation": {
					{Kind: KindReference, NameField: "name"},
				},
				"marker_annotation": {
					{Kind: KindDecorator, TrimPrefix: "@"},
				},
				"annotation": {
					{Kind: KindDecorator, TrimPrefix: "@"},
				},
			},
			Branching: map[string]bool{
				"if_statement":           true,
				"for_statement":          true,
				"enhanced_for_statement": true,
				"while_statement":        true,
				"do_statement":           true,
				"switch_expression":      true,
			},
		},
		"rust": {
			Language: "rust",
			Rules: map[string][]NodeRule{
				"function_item": {
					{Kind: KindDefinition, NameField: "name", Scope: true, Complexity: true},
				},
				"struct_item": {
					{Kind: KindDefinition, NameField: "name"},
				},
				"enum_item": {
					{Kind: KindDefinition, NameField: "name"},
				},
				"trait_item": {
					{Kind: KindDefinition, NameField: "name", Scope: true},
				},
				"impl_item": {
					{Kind: KindDefinition, NameField: "type", Scope: true},
				},
				"mod_item": {
					{Kind: KindDefinition, NameField: "name", Scope: true},
				},
				"closure_expression": {
					{Kind: KindDefinition, Anonymous: true, Scope: true},
				},
				"use_declaration": {
					{Kind: KindImport, NameField: "argument"},
				},
				"call_expression": {
					{Kind: KindReference, NameField: "function"},
				},
				"macro_invocation": {
					{Kind: KindReference, NameField: "macro"},
				},
				"attribute_item": {
					{Kind: KindDecorator, TrimPrefix: "#"},
				},
			},
			Branching: map[string]bool{
				"if_expression":    true,
				"match_expression": true,
				"while_expression": true,
				"loop_expression":  true,
				"for_expression":   true,
			},
		},
	}
}

func cloneRules(in map[string][]NodeRule) map[string][]NodeRule {
	out := make(map[string][]NodeRule, len(in))
	for kind, rules := range in {
		out[kind] = append([]NodeRule(nil), rules...)
	}
	return out
}
