package exposition

// ValidMetricName reports whether name matches [A-Za-z_:][A-Za-z0-9_:]*.
func ValidMetricName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if isLetter(ch) || ch == '_' || ch == ':' {
			continue
		}
		if i > 0 && isDigit(ch) {
			continue
		}
		return false
	}
	return true
}

// ValidLabelName reports whether name matches [A-Za-z_][A-Za-z0-9_]*.
func ValidLabelName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if isLetter(ch) || ch == '_' {
			continue
		}
		if i > 0 && isDigit(ch) {
			continue
		}
		return false
	}
	return true
}

// isLetter is ASCII-only; the exposition grammar does not allow other letters in names
func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
