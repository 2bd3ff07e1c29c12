package feed

import (
	"bytes"
	"encoding/xml"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// rssDocument covers RSS 2.0 and RSS 0.9x channels.
type rssDocument struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Date        string `xml:"date"` // dc:date, used by some RDF-flavored feeds
}

// atomDocument covers Atom 1.0 feeds.
type atomDocument struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	Summary   string     `xml:"summary"`
	Content   string     `xml:"content"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// Item is a single entry parsed out of a feed, before source attribution.
type Item struct {
	Title       string
	URL         string
	Summary     string
	PublishedAt time.Time
}

var timeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
}

func parseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

var whitespaceExpr = regexp.MustCompile(`\s+`)

// stripHTML flattens feed summaries that embed HTML markup into plain text.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	text := doc.Text()
	return strings.TrimSpace(whitespaceExpr.ReplaceAllString(text, " "))
}

// decodeXML decodes a feed body honoring its declared charset. Real-world
// RSS still ships as ISO-8859-1 or windows-125x often enough that a UTF-8
// only decoder drops whole sources.
func decodeXML(body []byte, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "feed: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}
	return dec.Decode(v)
}

// Parse decodes an RSS 2.0 or Atom feed body into items. Entries without a
// link are dropped; entries without a parsable date keep a zero PublishedAt
// so the caller can decide how to treat them.
func Parse(body []byte) ([]Item, error) {
	var rss rssDocument
	if err := decodeXML(body, &rss); err == nil && len(rss.Channel.Items) > 0 {
		items := make([]Item, 0, len(rss.Channel.Items))
		for _, it := range rss.Channel.Items {
			link := strings.TrimSpace(it.Link)
			if link == "" {
				continue
			}
			dateText := it.PubDate
			if dateText == "" {
				dateText = it.Date
			}
			published, _ := parseTime(dateText)
			items = append(items, Item{
				Title:       strings.TrimSpace(it.Title),
				URL:         link,
				Summary:     stripHTML(it.Description),
				PublishedAt: published,
			})
		}
		return items, nil
	}

	var atom atomDocument
	if err := decodeXML(body, &atom); err == nil && len(atom.Entries) > 0 {
		items := make([]Item, 0, len(atom.Entries))
		for _, entry := range atom.Entries {
			link := pickAtomLink(entry.Links)
			if link == "" {
				continue
			}
			summary := entry.Summary
			if summary == "" {
				summary = entry.Content
			}
			dateText := entry.Published
			if dateText == "" {
				dateText = entry.Updated
			}
			published, _ := parseTime(dateText)
			items = append(items, Item{
				Title:       strings.TrimSpace(entry.Title),
				URL:         link,
				Summary:     stripHTML(summary),
				PublishedAt: published,
			})
		}
		return items, nil
	}

	return nil, eris.New("feed: body is neither RSS nor Atom")
}

func pickAtomLink(links []atomLink) string {
	for _, l := range links {
		if l.Rel == "alternate" && l.Href != "" {
			return strings.TrimSpace(l.Href)
		}
	}
	for _, l := range links {
		if l.Rel == "" && l.Href != "" {
			return strings.TrimSpace(l.Href)
		}
	}
	return ""
}
