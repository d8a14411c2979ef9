package fuzzyindex

import "strings"

var htmlEscapes = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Highlight wraps contiguous runs of haystack that match successive
// characters of needle in <b>...</b>, HTML-entity-escaping the
// output.
func Highlight(haystack, needle string, caseSensitive bool) string {
	if needle == "" {
		return htmlEscapes.Replace(haystack)
	}

	hay := []rune(haystack)
	cmpHay := hay
	cmpNeedle := []rune(needle)
	if !caseSensitive {
		cmpHay = []rune(strings.ToLower(haystack))
		cmpNeedle = []rune(strings.ToLower(needle))
	}

	var out strings.Builder
	needleIdx := 0
	inRun := false

	flushTag := func(open bool) {
		if open && !inRun {
			out.WriteString("<b>")
			inRun = true
		} else if !open && inRun {
			out.WriteString("</b>")
			inRun = false
		}
	}

	for i, ch := range hay {
		matched := needleIdx < len(cmpNeedle) && cmpHay[i] == cmpNeedle[needleIdx]
		flushTag(matched)
		out.WriteString(htmlEscapes.Replace(string(ch)))
		if matched {
			needleIdx++
		}
	}
	flushTag(false)
	return out.String()
}
