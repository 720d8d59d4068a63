// Package template rewrites an env file model into a reference-only
// template safe to commit: secret values become store references,
// everything else is carried over untouched.
package template

import (
	"github.com/systmms/envmigrate/internal/classify"
	"github.com/systmms/envmigrate/internal/envfile"
	"github.com/systmms/envmigrate/internal/identity"
	"github.com/systmms/envmigrate/internal/store"
)

// Generate produces a new file model from src. Assignments whose key
// classifies as secret get their value replaced with a store
// reference, always double-quoted; comments, blanks and non-secret
// assignments are copied verbatim in original order. src is not
// modified.
func Generate(src *envfile.File, cls *classify.Classifier, scheme string, key identity.Key) *envfile.File {
	out := &envfile.File{
		Path:            src.Path,
		Lines:           make([]envfile.Line, len(src.Lines)),
		TrailingNewline: src.TrailingNewline,
	}

	for i, line := range src.Lines {
		if line.Kind == envfile.KindAssignment && cls.IsSecret(line.Key) {
			line.Value = store.Reference(scheme, key.Vault, key.Item, classify.FieldName(line.Key))
			line.Quote = envfile.QuoteDouble
		}
		out.Lines[i] = line
	}

	return out
}

// SecretFields collects the field map to upsert: lowercased keys to
// plaintext values, last assignment winning for duplicate keys.
func SecretFields(src *envfile.File, cls *classify.Classifier) map[string]string {
	fields := make(map[string]string)
	for _, line := range src.Assignments() {
		if cls.IsSecret(line.Key) {
			fields[classify.FieldName(line.Key)] = line.Value
		}
	}
	return fields
}
