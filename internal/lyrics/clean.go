package lyrics

import (
	"html"
	"regexp"
	"strings"
)

var (
	brTagRe    = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTagRe  = regexp.MustCompile(`<[^>]+>`)
	multiBlank = regexp.MustCompile(`\n{3,}`)
)

// junk fragments some providers wrap around the actual lyrics text.
var (
	junkPrefixes = []string{"Lyrics:", "Lyrics"}
	junkSuffixes = []string{"More on Genius", "Embed"}
)

// CleanText strips HTML and provider boilerplate from scraped lyrics.
func CleanText(raw string) string {
	text := brTagRe.ReplaceAllString(raw, "\n")
	text = htmlTagRe.ReplaceAllString(text, "")
	text = html.UnescapeString(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = multiBlank.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	for _, prefix := range junkPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimSpace(strings.TrimPrefix(text, prefix))
			break
		}
	}
	for _, suffix := range junkSuffixes {
		if strings.HasSuffix(text, suffix) {
			text = strings.TrimSpace(strings.TrimSuffix(text, suffix))
			break
		}
	}

	return text
}

// Queries builds the ordered search variants tried against imprecise lyric
// databases: plain, dashed, and quoted exact-match.
func Queries(artist, title string) []string {
	variants := []string{
		artist + " " + title,
		artist + " - " + title,
		`"` + artist + `" "` + title + `"`,
	}

	var unique []string
	seen := make(map[string]bool)
	for _, v := range variants {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}
	return unique
}
