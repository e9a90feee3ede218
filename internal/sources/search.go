package sources

import (
	"fmt"
	"net/url"
)

// Search-mode source labels. Entries from these endpoints arrive pre-filtered
// by the remote engine, so the matcher trusts them with a match count of 1.
const (
	GoogleNewsLabel = "Google News"
	BingNewsLabel   = "Bing News"
)

// GoogleNewsURL builds the Google News RSS search URL for a keyword,
// scoped to Chilean results the way the monitor has always searched.
func GoogleNewsURL(keyword string) string {
	q := url.QueryEscape(keyword + " Chile")
	return fmt.Sprintf("https://news.google.com/rss/search?q=%s&hl=es-CL&gl=CL&ceid=CL:es-419", q)
}

// BingNewsURL builds the Bing News RSS search URL for a keyword.
func BingNewsURL(keyword string) string {
	return fmt.Sprintf("https://www.bing.com/news/search?q=%s&format=rss", url.QueryEscape(keyword))
}
