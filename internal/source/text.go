// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// stripHTML returns the text content of an HTML fragment with whitespace
// collapsed.
func stripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// firstImage returns the src of the first <img> in an HTML fragment.
func firstImage(fragment string) string {
	if !strings.Contains(fragment, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return src
}

var countRE = regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d+)?)\s*([km]?)\b`)

// parseCount reads counts like "17010", "1,234", "17.0k", or
// "522 comments". Unparseable text is 0.
func parseCount(s string) int {
	m := countRE.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0
	}
	switch strings.ToLower(m[2]) {
	case "k":
		f *= 1000
	case "m":
		f *= 1000000
	}
	return int(math.Round(f))
}

var imageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

func isImageURL(u string) bool {
	lower := strings.ToLower(u)
	for _, ext := range imageExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// hashID derives a stable identifier from a link.
func hashID(link string) string {
	sum := sha256.Sum256([]byte(link))
	return hex.EncodeToString(sum[:])[:16]
}

// subredditOf extracts the subreddit from a permalink such as
// "/r/science/comments/abc/title/".
func subredditOf(permalink string) string {
	parts := strings.Split(strings.TrimPrefix(permalink, "/"), "/")
	if len(parts) >= 2 && parts[0] == "r" && parts[1] != "" {
		return parts[1]
	}
	return ""
}

// redditSource is the display label of a subreddit.
func redditSource(sub string) string {
	return "Reddit r/" + sub
}
