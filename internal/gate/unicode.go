package gate

// Unicode smuggling check. Zero-width, bidi-control, and tag characters
// render as nothing at all and survive HTML sanitization inside visible
// text nodes, so they get their own scan.

func containsHiddenUnicode(s string) bool {
	for _, r := range s {
		if isZeroWidth(r) || isBidiControl(r) || isTagCharacter(r) {
			return true
		}
	}
	return false
}

func isZeroWidth(r rune) bool {
	switch r {
	case 0x200B, // zero width space
		0x200C, // zero width non-joiner
		0x200D, // zero width joiner
		0x2060, // word joiner
		0xFEFF: // zero width no-break space
		return true
	}
	return false
}

func isBidiControl(r rune) bool {
	switch r {
	case 0x202A, 0x202B, 0x202C, 0x202D, 0x202E, // embedding/override
		0x2066, 0x2067, 0x2068, 0x2069: // isolates
		return true
	}
	return false
}

// Tag characters (U+E0001–U+E007F) mirror ASCII invisibly.
func isTagCharacter(r rune) bool {
	return r >= 0xE0001 && r <= 0xE007F
}
