package extract

import (
	"strings"
	"unicode/utf8"
)

// extractPlain validates content is UTF-8. Invalid sequences are replaced
// with the replacement character.
func extractPlain(content string) (string, error) {
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "�")
	}
	return content, nil
}
