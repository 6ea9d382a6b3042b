package bitbucket

import "strings"

// AssembleReadme joins file-content lines back into a single text blob.
// Every line, including the last, is terminated by a newline. An empty
// line sequence yields an empty string.
func AssembleReadme(lines []ReadmeLine) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
