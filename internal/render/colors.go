package render

import (
	"strings"
	"unicode"
	"unicode/utf16"
)

// EmptyDonutColor fills the donut when there is nothing to chart.
const EmptyDonutColor = "#e5e7eb"

var (
	donutPalette = []string{
		"#6366f1", "#22c55e", "#f59e0b", "#ef4444", "#06b6d4",
		"#a855f7", "#84cc16", "#f97316", "#14b8a6", "#64748b",
	}
	avatarPalette = []string{"#3b82f6", "#fbbf24", "#ef4444", "#10b981", "#8b5cf6", "#06b6d4"}
)

// DonutColor returns the colour of the i-th donut slice.
func DonutColor(i int) string {
	return donutPalette[i%len(donutPalette)]
}

// PickColor maps key to an avatar colour. The hash runs over UTF-16 code
// units so the same key always lands on the same colour.
func PickColor(key string) string {
	var h uint32
	for _, u := range utf16.Encode([]rune(key)) {
		h = h*31 + uint32(u)
	}
	return avatarPalette[h%uint32(len(avatarPalette))]
}

// Initials returns the upper-cased first letters of the first two words of
// name, or an em dash when name is blank.
func Initials(name string) string {
	words := strings.FieldsFunc(name, unicode.IsSpace)
	if len(words) == 0 {
		return "—"
	}
	if len(words) > 2 {
		words = words[:2]
	}
	var b strings.Builder
	for _, w := range words {
		r := []rune(w)[0]
		b.WriteString(strings.ToUpper(string(r)))
	}
	return b.String()
}
