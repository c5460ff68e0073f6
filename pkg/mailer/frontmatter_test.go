package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		body     string
		subject  string
		layout   string
		metadata map[string]any
	}{
		{
			name:    "with frontmatter",
			content: "---\nSubject: Hello {{name}}\nlayout: none\n---\nBody {{name}}\n",
			body:    "Body {{name}}\n",
			subject: "Hello {{name}}",
			layout:  LayoutNone,
		},
		{
			name:    "lowercase subject",
			content: "---\nsubject: hi\n---\nx",
			body:    "x",
			subject: "hi",
		},
		{
			name:    "no frontmatter",
			content: "<p>{{name}}</p>",
			body:    "<p>{{name}}</p>",
		},
		{
			name:    "dashes not on their own line",
			content: "--- not frontmatter\nbody",
			body:    "--- not frontmatter\nbody",
		},
		{
			name:     "empty frontmatter",
			content:  "---\n---\nbody",
			body:     "body",
			metadata: map[string]any{},
		},
		{
			name:    "windows line endings",
			content: "---\r\nSubject: Win\r\n---\r\nbody\r\n",
			body:    "body\r\n",
			subject: "Win",
		},
		{
			name:    "delimiter inside body",
			content: "---\nSubject: s\n---\nabove\n---\nbelow",
			body:    "above\n---\nbelow",
			subject: "s",
		},
		{
			name:     "nested metadata",
			content:  "---\nSubject: s\npreheader: Thanks\ncount: 3\n---\n",
			body:     "",
			subject:  "s",
			metadata: map[string]any{"Subject": "s", "preheader": "Thanks", "count": 3},
		},
		{
			name:    "empty content",
			content: "",
			body:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := ParseFrontmatter([]byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.body, doc.Body)
			assert.Equal(t, tt.subject, doc.Subject())
			assert.Equal(t, tt.layout, doc.Layout())
			assert.NotNil(t, doc.Metadata)
			if tt.metadata != nil {
				assert.Equal(t, tt.metadata, doc.Metadata)
			}
		})
	}
}

func TestParseFrontmatter_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"only opening delimiter", "---"},
		{"missing closing delimiter", "---\nSubject: x\nbody"},
		{"invalid yaml", "---\nSubject: [unclosed\n---\nbody"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseFrontmatter([]byte(tt.content))
			require.ErrorIs(t, err, ErrInvalidFrontmatter)
		})
	}
}
