package proposal

import "strings"

const frontMatterDelim = "---"

// ExtractFrontMatter splits a markdown document into its front-matter block
// and body. A document has front matter iff it starts with a "---" line;
// the first "---" line found after it closes the block and everything past
// that line is body verbatim, later "---" regions included. Documents
// without a leading delimiter (including the upstream not-found sentinel)
// come back unchanged as body with an empty front matter.
func ExtractFrontMatter(doc string) (front, body string) {
	rest, ok := strings.CutPrefix(doc, frontMatterDelim+"\n")
	if !ok {
		return "", doc
	}
	if idx := strings.Index(rest, "\n"+frontMatterDelim+"\n"); idx >= 0 {
		return rest[:idx], rest[idx+len(frontMatterDelim)+2:]
	}
	// closing delimiter on the last line, no trailing newline
	if trimmed, ok := strings.CutSuffix(rest, "\n"+frontMatterDelim); ok {
		return trimmed, ""
	}
	return "", doc
}
