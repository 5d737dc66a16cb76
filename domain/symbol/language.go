package symbol

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Language names with locator support.
const (
	LanguagePython     = "python"
	LanguageJavaScript = "javascript"
	LanguageTypeScript = "typescript"
)

// languageExtensions maps language names to their file extensions.
var languageExtensions = map[string][]string{
	LanguagePython:     {"py", "pyw", "pyi"},
	LanguageJavaScript: {"js", "jsx", "mjs", "cjs"},
	LanguageTypeScript: {"ts", "tsx", "mts", "cts"},
}

// ErrUnsupportedExtension indicates an unsupported file extension.
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// LanguageForExtension returns the language for a file extension.
func LanguageForExtension(extension string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(extension), ".")
	for language, extensions := range languageExtensions {
		if slices.Contains(extensions, ext) {
			return language, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedExtension, extension)
}

// ExtensionsForLanguage returns the file extensions for a language.
func ExtensionsForLanguage(language string) []string {
	extensions := languageExtensions[strings.ToLower(language)]
	result := make([]string, len(extensions))
	copy(result, extensions)
	return result
}
