package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Translator resolves user-facing message keys for one locale. Besides the
// message table it carries the chatbot system prompt, which is locale-bound
// text as well.
type Translator struct {
	translations map[string]string
	systemPrompt string
}

func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := path.Join("locales", fmt.Sprintf("%s.yaml", langCode))
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("read translation file %s: %w", filePath, err)
	}

	tr, err := newTranslatorFromBytes(data)
	if err != nil {
		return nil, err
	}

	promptPath := path.Join("locales", fmt.Sprintf("prompt-%s.txt", langCode))
	promptBytes, err := fs.ReadFile(fsys, promptPath)
	if err != nil {
		return nil, fmt.Errorf("read prompt file %s: %w", promptPath, err)
	}
	tr.systemPrompt = string(promptBytes)
	return tr, nil
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

// T translates a key, applying fmt args when given. Unknown keys come back
// verbatim so a missing translation is visible, not fatal.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// SystemPrompt returns the fixed instruction sent ahead of every
// conversational transcript.
func (t *Translator) SystemPrompt() string {
	return t.systemPrompt
}
