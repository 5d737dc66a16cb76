package validation

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/helixml/linedit/domain/edit"
)

// ErrUnknownBuiltin indicates a registry file names a builtin that does not
// exist.
var ErrUnknownBuiltin = errors.New("unknown builtin validator")

// Builtin validator names.
const (
	BuiltinPython     = "python"
	BuiltinJavaScript = "javascript"
	BuiltinTypeScript = "typescript"
	BuiltinTSX        = "tsx"
	BuiltinJSON       = "json"
	BuiltinYAML       = "yaml"
)

type builtin struct {
	extensions []string
	create     func() edit.SyntaxValidator
}

var builtins = map[string]builtin{
	BuiltinPython:     {[]string{".py", ".pyw", ".pyi"}, func() edit.SyntaxValidator { return NewPythonSyntax() }},
	BuiltinJavaScript: {[]string{".js", ".jsx", ".mjs", ".cjs"}, func() edit.SyntaxValidator { return NewJavaScriptSyntax() }},
	BuiltinTypeScript: {[]string{".ts", ".mts", ".cts"}, func() edit.SyntaxValidator { return NewTypeScriptSyntax() }},
	BuiltinTSX:        {[]string{".tsx"}, func() edit.SyntaxValidator { return NewTSXSyntax() }},
	BuiltinJSON:       {[]string{".json"}, func() edit.SyntaxValidator { return NewJSON() }},
	BuiltinYAML:       {[]string{".yaml", ".yml"}, func() edit.SyntaxValidator { return NewYAML() }},
}

// RegisterDefaults binds every builtin validator to its extensions.
func RegisterDefaults(registry *edit.ValidatorRegistry, strict bool) {
	for name, b := range builtins {
		registry.Register(edit.ValidatorEntry{Name: name, Validator: b.create(), Strict: strict}, b.extensions...)
	}
}

// FileEntry is one validator declared in a registry file.
//
//	validators:
//	  - name: gofmt
//	    extensions: [".go"]
//	    command: gofmt
//	    args: ["-e"]
//	    strict: true
//	  - builtin: python
//	    strict: false
type FileEntry struct {
	Name       string   `yaml:"name"`
	Builtin    string   `yaml:"builtin"`
	Extensions []string `yaml:"extensions"`
	Command    string   `yaml:"command"`
	Args       []string `yaml:"args"`
	Timeout    string   `yaml:"timeout"`
	Strict     *bool    `yaml:"strict"`
}

// File is the registry file layout.
type File struct {
	Validators []FileEntry `yaml:"validators"`
}

// ParseFile decodes a registry file.
func ParseFile(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("decode validators file: %w", err)
	}
	for i, e := range f.Validators {
		if e.Builtin == "" && e.Command == "" {
			return File{}, fmt.Errorf("validator %d: builtin or command is required", i)
		}
		if e.Command != "" && len(e.Extensions) == 0 {
			return File{}, fmt.Errorf("validator %d (%s): extensions are required", i, e.Command)
		}
		if e.Builtin != "" {
			if _, ok := builtins[e.Builtin]; !ok {
				return File{}, fmt.Errorf("validator %d: %w: %s", i, ErrUnknownBuiltin, e.Builtin)
			}
		}
		if e.Timeout != "" {
			if _, err := time.ParseDuration(e.Timeout); err != nil {
				return File{}, fmt.Errorf("validator %d: timeout: %w", i, err)
			}
		}
	}
	return f, nil
}

// Apply registers the file's validators over what registry already holds.
// strict is the default for entries that do not set it.
func (f File) Apply(registry *edit.ValidatorRegistry, strict bool) {
	for _, e := range f.Validators {
		entryStrict := strict
		if e.Strict != nil {
			entryStrict = *e.Strict
		}

		if e.Builtin != "" {
			b := builtins[e.Builtin]
			extensions := e.Extensions
			if len(extensions) == 0 {
				extensions = b.extensions
			}
			name := e.Name
			if name == "" {
				name = e.Builtin
			}
			registry.Register(edit.ValidatorEntry{Name: name, Validator: b.create(), Strict: entryStrict}, extensions...)
			continue
		}

		timeout, _ := time.ParseDuration(e.Timeout)
		name := e.Name
		if name == "" {
			name = e.Command
		}
		registry.Register(edit.ValidatorEntry{
			Name:      name,
			Validator: NewCommand(e.Command, e.Args, timeout),
			Strict:    entryStrict,
		}, e.Extensions...)
	}
}

// LoadFile reads a registry file and applies it to registry.
func LoadFile(path string, registry *edit.ValidatorRegistry, strict bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read validators file: %w", err)
	}
	f, err := ParseFile(data)
	if err != nil {
		return err
	}
	f.Apply(registry, strict)
	return nil
}

// NewRegistry builds a registry with the builtin validators and, when path
// is not empty, the validators declared in that file.
func NewRegistry(path string, strict bool) (*edit.ValidatorRegistry, error) {
	registry := edit.NewValidatorRegistry()
	RegisterDefaults(registry, strict)
	if path == "" {
		return registry, nil
	}
	if err := LoadFile(path, registry, strict); err != nil {
		return nil, err
	}
	return registry, nil
}
