package download

import (
	"fmt"
	"path/filepath"
	"strings"
)

// reservedChars cannot appear in file names on at least one major host file
// system.
const reservedChars = `<>:"/\|?*`

// LocalName returns the file name under which the remote file with the given
// title is stored. A leading "File:" namespace (any case) is dropped, and
// reserved and control characters are replaced by their %XX encoding. All
// other characters, including the extension, are kept as they are.
func LocalName(title string) string {
	name := title
	if i := strings.IndexByte(title, ':'); i >= 0 && strings.EqualFold(title[:i], "File") {
		name = title[i+1:]
	}

	var sb strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x20 || c == 0x7f || strings.IndexByte(reservedChars, c) >= 0 {
			fmt.Fprintf(&sb, "%%%02X", c)
			continue
		}
		sb.WriteByte(c)
	}

	return sb.String()
}

// LocalPath returns the path of the local copy of title inside outDir.
func LocalPath(outDir, title string) string {
	return filepath.Join(outDir, LocalName(title))
}
