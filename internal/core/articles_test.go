package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeSlug(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "How to train your gopher", "how-to-train-your-gopher"},
		{"punctuation stripped", "Hello, World!", "hello-world"},
		{"consecutive separators collapsed", "one -- two", "one-two"},
		{"surrounding whitespace", "  padded title  ", "padded-title"},
		{"trailing punctuation", "Really?", "really"},
		{"brackets and quotes", `A "quoted" [bracketed] (title)`, "a-quoted-bracketed-title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MakeSlug(tt.title))
		})
	}
}
