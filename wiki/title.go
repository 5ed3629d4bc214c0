package wiki

import "strings"

// CategoryTitle returns the namespaced title of the named category. The
// "Category:" prefix is optional in name and matched case-insensitively.
func CategoryTitle(name string) string {
	if rest, ok := StripNamespace(name, "Category"); ok {
		return "Category:" + rest
	}
	return "Category:" + strings.TrimSpace(name)
}

// FileTitle returns the canonical "File:" title for name. Both "File:" and
// the legacy "Image:" alias are recognized; a bare name gets "File:" added.
func FileTitle(name string) string {
	if rest, ok := StripNamespace(name, "File"); ok {
		return "File:" + rest
	}
	if rest, ok := StripNamespace(name, "Image"); ok {
		return "File:" + rest
	}
	return "File:" + strings.TrimSpace(name)
}

// StripNamespace removes a leading "<ns>:" from title, comparing the
// namespace case-insensitively. It reports whether the prefix was present.
func StripNamespace(title, ns string) (string, bool) {
	title = strings.TrimSpace(title)
	i := strings.IndexByte(title, ':')
	if i < 0 || !strings.EqualFold(strings.TrimSpace(title[:i]), ns) {
		return title, false
	}
	return strings.TrimSpace(title[i+1:]), true
}
