package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	f := New(nil)

	tests := []struct {
		name string
		text string
		safe bool
	}{
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"plain recipe", "paneer butter masala for four", true},
		{"blocked term", "recipe with human meat", false},
		{"case insensitive", "HUMAN MEAT", false},
		{"word boundary no false positive", "hummus and pita", true},
		{"exception superstring", "tiger prawn curry", true},
		{"exception mushroom", "lion's mane risotto", true},
		{"exception pastry", "monkey bread with cinnamon", true},
		{"blocked after exception stripped", "tiger prawn and tiger steak", false},
		{"pet term", "how to cook a dog", false},
		{"hot dog allowed", "hot dog with mustard", true},
		{"toxic substance", "soup with bleach", false},
		{"phrase whitespace tolerance", "rat   poison stew", false},
		{"humane phrasing", "humanely raised chicken curry", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := f.Evaluate(tt.text)
			assert.Equal(t, tt.safe, v.Safe)
		})
	}
}

func TestVerdictNeverExposesRule(t *testing.T) {
	f := New(nil)
	a := f.Evaluate("recipe with human meat")
	b := f.Evaluate("soup with bleach")

	// Different rules fired, but callers can only observe the boolean and
	// the one fixed public message.
	assert.False(t, a.Safe)
	assert.False(t, b.Safe)
	assert.NotEmpty(t, PublicMessage)
}
