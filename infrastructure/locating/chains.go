package locating

import (
	"github.com/helixml/linedit/domain/symbol"
	"github.com/helixml/linedit/infrastructure/parsing"
)

// Binding attaches a locator chain to file extensions.
type Binding struct {
	Language   string
	Extensions []string
	Chain      symbol.Chain
}

// DefaultBindings returns the structural-first chains for every supported
// language. Each chain falls back to a lexical scan.
func DefaultBindings() []Binding {
	return []Binding{
		{
			Language:   symbol.LanguagePython,
			Extensions: symbol.ExtensionsForLanguage(symbol.LanguagePython),
			Chain:      symbol.Chain{NewPythonTree(parsing.NewPython()), NewPythonScan()},
		},
		{
			Language:   symbol.LanguageJavaScript,
			Extensions: symbol.ExtensionsForLanguage(symbol.LanguageJavaScript),
			Chain:      symbol.Chain{NewScriptTree(parsing.NewJavaScript()), NewBraceScan()},
		},
		{
			Language:   symbol.LanguageTypeScript,
			Extensions: []string{"ts", "mts", "cts"},
			Chain:      symbol.Chain{NewScriptTree(parsing.NewTypeScript()), NewBraceScan()},
		},
		{
			Language:   symbol.LanguageTypeScript,
			Extensions: []string{"tsx"},
			Chain:      symbol.Chain{NewScriptTree(parsing.NewTSX()), NewBraceScan()},
		},
	}
}
