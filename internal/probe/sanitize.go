package probe

import "strings"

const maxNameLen = 50

// SanitizeName maps a display name to a portable file stem: every rune
// outside [A-Za-z0-9] becomes '_', and the result is cut at 50 characters.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if b.Len() >= maxNameLen {
			break
		}
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "channel"
	}
	return b.String()
}
