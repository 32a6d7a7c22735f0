package lookup

import "strings"

// Maximum reasonable length for a product name display.
const maxNameLength = 50

// CleanName tidies product names coming from external food databases:
// drops a duplicated brand prefix and truncates over-long names at a word
// boundary.
func CleanName(name, brand string) string {
	cleaned := strings.TrimSpace(name)

	if brand != "" && len(cleaned) >= len(brand) &&
		strings.EqualFold(cleaned[:len(brand)], brand) {
		cleaned = strings.TrimSpace(cleaned[len(brand):])
		if len(cleaned) > 0 && strings.ContainsRune("-,:", rune(cleaned[0])) {
			cleaned = strings.TrimSpace(cleaned[1:])
		}
	}

	if len(cleaned) > maxNameLength {
		truncated := cleaned[:maxNameLength]
		if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 30 {
			truncated = truncated[:lastSpace]
		}
		cleaned = truncated
	}

	return cleaned
}
