package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Security Wire</title>
    <item>
      <title>Acme Corp discloses data breach</title>
      <link>https://example.com/acme-breach</link>
      <description>&lt;p&gt;Acme Corp said &lt;b&gt;2.3 million&lt;/b&gt; records were exposed.&lt;/p&gt;</description>
      <pubDate>Mon, 24 Aug 2026 10:15:00 +0000</pubDate>
    </item>
    <item>
      <title>Entry without a link</title>
      <description>Skipped.</description>
      <pubDate>Mon, 24 Aug 2026 11:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Entry without a date</title>
      <link>https://example.com/undated</link>
      <description>Undated coverage.</description>
    </item>
  </channel>
</rss>`

const sampleAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Breach Tracker</title>
  <entry>
    <title>Globex hit by ransomware</title>
    <link rel="alternate" href="https://example.com/globex-ransomware"/>
    <summary>Production systems encrypted over the weekend.</summary>
    <published>2026-08-25T08:30:00Z</published>
  </entry>
</feed>`

func TestParse_RSS(t *testing.T) {
	items, err := Parse([]byte(sampleRSS))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Acme Corp discloses data breach", items[0].Title)
	assert.Equal(t, "https://example.com/acme-breach", items[0].URL)
	assert.Equal(t, "Acme Corp said 2.3 million records were exposed.", items[0].Summary)
	assert.Equal(t, time.Date(2026, 8, 24, 10, 15, 0, 0, time.UTC), items[0].PublishedAt)

	assert.Equal(t, "https://example.com/undated", items[1].URL)
	assert.True(t, items[1].PublishedAt.IsZero())
}

func TestParse_Atom(t *testing.T) {
	items, err := Parse([]byte(sampleAtom))
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "Globex hit by ransomware", items[0].Title)
	assert.Equal(t, "https://example.com/globex-ransomware", items[0].URL)
	assert.Equal(t, time.Date(2026, 8, 25, 8, 30, 0, 0, time.UTC), items[0].PublishedAt)
}

// Feeds declaring a legacy charset must decode, not fail wholesale.
func TestParse_NonUTF8Charset(t *testing.T) {
	// 0xe9 is "é" in ISO-8859-1 and an invalid byte sequence in UTF-8.
	body := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		"<rss version=\"2.0\"><channel><item>" +
		"<title>Caf\xe9 Chain Breach</title>" +
		"<link>https://example.com/cafe-breach</link>" +
		"<description>Caf\xe9 loyalty data exposed.</description>" +
		"<pubDate>Mon, 24 Aug 2026 10:15:00 +0000</pubDate>" +
		"</item></channel></rss>"

	items, err := Parse([]byte(body))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Café Chain Breach", items[0].Title)
	assert.Equal(t, "Café loyalty data exposed.", items[0].Summary)
}

func TestParse_Windows1252Charset(t *testing.T) {
	body := "<?xml version=\"1.0\" encoding=\"windows-1252\"?>" +
		"<rss version=\"2.0\"><channel><item>" +
		"<title>Acme \x93smart\x94 device leak</title>" +
		"<link>https://example.com/acme-iot</link>" +
		"</item></channel></rss>"

	items, err := Parse([]byte(body))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Acme “smart” device leak", items[0].Title)
}

func TestParse_NotAFeed(t *testing.T) {
	_, err := Parse([]byte(`<html><body>not a feed</body></html>`))
	require.Error(t, err)
}

func TestParseTime_CommonLayouts(t *testing.T) {
	for _, value := range []string{
		"Mon, 24 Aug 2026 10:15:00 +0000",
		"Mon, 24 Aug 2026 10:15:00 GMT",
		"2026-08-24T10:15:00Z",
		"2026-08-24T10:15:00+02:00",
	} {
		_, ok := parseTime(value)
		assert.True(t, ok, "expected %q to parse", value)
	}

	_, ok := parseTime("yesterday-ish")
	assert.False(t, ok)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "plain text", stripHTML("  plain text "))
	assert.Equal(t, "Two point three million records",
		stripHTML("<p>Two point <b>three</b> million\n records</p>"))
}
