package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSecret(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key    string
		secret bool
	}{
		{"DB_PASSWORD", true},
		{"API_KEY", true},
		{"AUTH_TOKEN", true},
		{"CLIENT_SECRET", true},
		{"GCP_CREDENTIALS", true},
		{"PRIVATE_PEM", true},
		{"db_password", true}, // matching is case-insensitive
		{"DB_HOST", false},
		{"PORT", false},
		{"DEBUG_MODE", false},
		{"LOG_LEVEL", false},
		{"CONN_STR", false}, // documented false negative: no keyword in the name
	}

	c := New()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.secret, c.IsSecret(tt.key))
		})
	}
}

func TestClassify_StableAndOrderPreserving(t *testing.T) {
	t.Parallel()

	pairs := []Pair{
		{Key: "DB_PASSWORD", Value: "x"},
		{Key: "DB_HOST", Value: "localhost"},
		{Key: "API_KEY", Value: "y"},
	}

	c := New()
	first := c.Classify(pairs)
	second := c.Classify(pairs)

	assert.Equal(t, first, second, "same input must classify identically")
	assert.Equal(t, "DB_PASSWORD", first[0].Key)
	assert.True(t, first[0].Secret)
	assert.False(t, first[1].Secret)
	assert.True(t, first[2].Secret)
}

func TestNew_ExtraKeywords(t *testing.T) {
	t.Parallel()

	c := New("dsn", " webhook ")
	assert.True(t, c.IsSecret("DATABASE_DSN"))
	assert.True(t, c.IsSecret("SLACK_WEBHOOK"))
	assert.True(t, c.IsSecret("DB_PASSWORD"), "base keywords stay active")
	assert.False(t, c.IsSecret("DB_HOST"))
}

func TestFieldName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "db_password", FieldName("DB_PASSWORD"))
	assert.Equal(t, "api_key", FieldName("API_KEY"))
}
