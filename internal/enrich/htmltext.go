package enrich

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Markers after which a job page's text is all sidebar/footer noise.
// Everything from the earliest marker on is dropped.
var noiseMarkers = []string{
	"\nSeniority level\n",
	"\nSimilar jobs\n",
	"\nPeople also viewed\n",
	"\nSimilar Searches\n",
	"\nReferrals increase your chances",
	"\nShow more jobs like this",
	"\nMore searches\n",
	"\nExplore collaborative articles",
}

var blockTags = map[string]struct{}{
	"p": {}, "div": {}, "li": {}, "br": {}, "tr": {}, "td": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"ul": {}, "ol": {}, "table": {}, "section": {}, "article": {},
	"header": {}, "footer": {}, "blockquote": {},
}

var skipTags = map[string]struct{}{
	"script": {}, "style": {}, "noscript": {}, "head": {}, "svg": {}, "iframe": {},
}

var (
	reSpaces     = regexp.MustCompile(`[ \t]+`)
	reBlankLines = regexp.MustCompile(`\n{2,}`)
)

// HTMLToText converts job-page HTML to plain text, keeping line breaks
// at block boundaries so section markers stay detectable.
func HTMLToText(htmlSrc string) string {
	root, err := html.Parse(strings.NewReader(htmlSrc))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, skip := skipTags[n.Data]; skip {
				return
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			if _, block := blockTags[n.Data]; block {
				b.WriteString("\n")
			}
		}
	}
	walk(root)

	return collapseWhitespace(b.String())
}

func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = reSpaces.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = reBlankLines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// TruncateNoise cuts the text at the earliest noise marker.
func TruncateNoise(text string) string {
	cut := len(text)
	for _, m := range noiseMarkers {
		if i := strings.Index(text, m); i != -1 && i < cut {
			cut = i
		}
	}
	return strings.TrimSpace(text[:cut])
}
