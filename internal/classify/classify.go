// Package classify decides which environment variables hold secrets.
// The policy is a best-effort keyword match on the variable name: a key
// whose value is sensitive but whose name carries no keyword (say
// CONN_STR holding a password) is treated as non-secret.
package classify

import "strings"

// baseKeywords is the fixed detection set. Configuration may add
// keywords but never removes these.
var baseKeywords = []string{
	"PASSWORD",
	"SECRET",
	"KEY",
	"TOKEN",
	"CREDENTIAL",
	"PRIVATE",
	"AUTH",
}

// Entry is a classified key/value pair.
type Entry struct {
	Key    string
	Value  string
	Secret bool
}

// Classifier matches variable names against its keyword set. It is
// stateless after construction; Classify is a pure function of its
// input, which keeps generated templates deterministic.
type Classifier struct {
	keywords []string
}

// New creates a classifier with the base keyword set plus any extra
// keywords from configuration. Extras are uppercased so matching stays
// case-insensitive.
func New(extra ...string) *Classifier {
	c := &Classifier{keywords: make([]string, 0, len(baseKeywords)+len(extra))}
	c.keywords = append(c.keywords, baseKeywords...)
	for _, kw := range extra {
		kw = strings.ToUpper(strings.TrimSpace(kw))
		if kw != "" {
			c.keywords = append(c.keywords, kw)
		}
	}
	return c
}

// IsSecret reports whether the uppercased key contains any keyword.
func (c *Classifier) IsSecret(key string) bool {
	upper := strings.ToUpper(key)
	for _, kw := range c.keywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// Classify maps key/value pairs to classified entries, preserving order.
func (c *Classifier) Classify(pairs []Pair) []Entry {
	entries := make([]Entry, 0, len(pairs))
	for _, p := range pairs {
		entries = append(entries, Entry{
			Key:    p.Key,
			Value:  p.Value,
			Secret: c.IsSecret(p.Key),
		})
	}
	return entries
}

// Pair is an unclassified key/value pair.
type Pair struct {
	Key   string
	Value string
}

// FieldName returns the secret-store field identifier for a variable
// name. Field identifiers are the lowercased key.
func FieldName(key string) string {
	return strings.ToLower(key)
}
