package system

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAffirmative(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y", true},
		{"Y\n", true},
		{"yes", true},
		{"  YES  \n", true},
		{"n", false},
		{"no", false},
		{"", false},
		{"yep", false},
		{"sure", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAffirmative(tt.input))
		})
	}
}

func TestLinePrompter(t *testing.T) {
	t.Run("reads one line", func(t *testing.T) {
		out := &bytes.Buffer{}
		p := &LinePrompter{In: strings.NewReader("yes\nno\n"), Out: out}
		assert.True(t, p.Confirm("Download? [y/N]: "))
		assert.Equal(t, "Download? [y/N]: ", out.String())
	})

	t.Run("EOF declines", func(t *testing.T) {
		p := &LinePrompter{In: strings.NewReader(""), Out: &bytes.Buffer{}}
		assert.False(t, p.Confirm("Download? "))
	})

	t.Run("answer without newline", func(t *testing.T) {
		p := &LinePrompter{In: strings.NewReader("y")}
		assert.True(t, p.Confirm("Download? "))
	})

	t.Run("assume yes never reads", func(t *testing.T) {
		out := &bytes.Buffer{}
		p := &LinePrompter{In: strings.NewReader("no\n"), Out: out, AssumeYes: true}
		assert.True(t, p.Confirm("Download? "))
		assert.Empty(t, out.String())
	})
}
