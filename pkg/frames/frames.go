// Package frames holds the cat artwork for each activity level.
package frames

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/keycat/pkg/activity"
)

// Width is the column width of every art line.
const Width = 10

var art = map[activity.Level][]string{
	activity.Idle: {
		`   /\_/\  `,
		`  ( o.o ) `,
		`   > ^ <  `,
		` Sleeping `,
	},
	activity.Typing: {
		`   /\_/\  `,
		`  ( ^.^ ) `,
		`  _| - |_ `,
		` Typing!  `,
	},
	activity.Bursting: {
		`   /\_/\  `,
		`  ( >.< ) `,
		`  _|   |_ `,
		` Bongoing!`,
	},
}

var compact = map[activity.Level]string{
	activity.Idle:     "( o.o ) zzz",
	activity.Typing:   "( ^.^ )ノ tap",
	activity.Bursting: "( >.< )ノノ bongo!",
}

var colors = map[activity.Level]lipgloss.Color{
	activity.Idle:     lipgloss.Color("242"),
	activity.Typing:   lipgloss.Color("82"),
	activity.Bursting: lipgloss.Color("213"),
}

// ANSI foreground codes for the single-line status form.
var ansiColors = map[activity.Level]string{
	activity.Idle:     "\033[90m",
	activity.Typing:   "\033[32m",
	activity.Bursting: "\033[35m",
}

// Art returns the multi-line frame for level. Unknown levels get the idle frame.
func Art(level activity.Level) []string {
	lines, ok := art[level]
	if !ok {
		lines = art[activity.Idle]
	}
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}

// Text returns the multi-line frame joined with newlines.
func Text(level activity.Level) string {
	return strings.Join(Art(level), "\n")
}

// Compact returns the one-line frame for level.
func Compact(level activity.Level) string {
	if s, ok := compact[level]; ok {
		return s
	}
	return compact[activity.Idle]
}

// ANSI returns the one-line frame wrapped in a raw ANSI color, for writers
// that are not lipgloss renderers.
func ANSI(level activity.Level) string {
	color, ok := ansiColors[level]
	if !ok {
		color = ansiColors[activity.Idle]
	}
	return color + Compact(level) + "\033[0m"
}

// Style returns the lipgloss style for level.
func Style(level activity.Level) lipgloss.Style {
	color, ok := colors[level]
	if !ok {
		color = colors[activity.Idle]
	}
	return lipgloss.NewStyle().Foreground(color)
}

// Panel renders the full frame inside a rounded border colored for level.
func Panel(level activity.Level) string {
	color, ok := colors[level]
	if !ok {
		color = colors[activity.Idle]
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Render(Style(level).Render(Text(level)))
}
