package extracthtml

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// debugContext is how many bytes around the marker DebugPrintScripts shows.
const debugContext = 80

// DebugPrintScripts prints every <script> whose text contains marker (all
// scripts when marker is empty), with its index, size and a snippet around
// the marker. This is used by the command's "-scripts" debug mode.
func DebugPrintScripts(w io.Writer, html, marker string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script").Each(func(i int, s *goquery.Selection) {
		text := s.Text()
		at := 0
		if marker != "" {
			at = strings.Index(text, marker)
			if at < 0 {
				return
			}
		}

		src, _ := s.Attr("src")
		fmt.Fprintf(w, "script #%d bytes=%d src=%q\n", i, len(text), src)

		lo := max(at-debugContext, 0)
		hi := min(at+len(marker)+debugContext, len(text))
		fmt.Fprintln(w, strings.TrimSpace(text[lo:hi]))
		fmt.Fprintln(w)
	})
	return nil
}
