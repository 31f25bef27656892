package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_Handle(t *testing.T) {
	assert.Equal(t, "@ivan", Message{Username: "ivan", FullName: "Ivan P"}.Handle())
	assert.Equal(t, "Ivan P", Message{FullName: "Ivan P"}.Handle())
}

func TestKeyboards(t *testing.T) {
	kb := ReplyKeyboard([]string{"a", "b"}, []string{"c"})
	assert.Len(t, kb.Reply, 2)
	assert.False(t, kb.Remove)
	assert.True(t, RemoveKeyboard().Remove)

	out := WithKeyboard("hi", InlineKeyboard([]Button{{Text: "x", Data: "y"}}))
	assert.Equal(t, "y", out.Keyboard.Inline[0][0].Data)
}

func TestMessage_Command(t *testing.T) {
	tests := []struct {
		text, name, args string
		ok               bool
	}{
		{"/start take_B-001", "start", "take_B-001", true},
		{"/start", "start", "", true},
		{"/panel@beaton_admin_bot now", "panel", "now", true},
		{"hello", "", "", false},
		{"/", "", "", false},
	}
	for _, tt := range tests {
		name, args, ok := Message{Kind: KindText, Text: tt.text}.Command()
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.name, name, tt.text)
		assert.Equal(t, tt.args, args, tt.text)
	}

	_, _, ok := Message{Kind: KindPhoto, Text: "/start"}.Command()
	assert.False(t, ok)
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, "a\\_b \\*c\\* \\`d\\` \\[e]", EscapeMarkdown("a_b *c* `d` [e]"))
	assert.Equal(t, "plain", EscapeMarkdown("plain"))
}
