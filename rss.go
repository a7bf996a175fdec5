package shopdesk

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/shopdesk/locale"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category"`
}

func buildFeed(base string, loc locale.Locale, title string, posts []BlogPost) rssXML {
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		tr := p.Translations[loc]
		pubDate := ""
		if p.PublishedAt != nil {
			pubDate = p.PublishedAt.Format(time.RFC1123Z)
		}
		postURL := BuildURL(base, string(loc), "blog", p.Slug)
		items = append(items, rssItem{
			Title:       tr.Title,
			Link:        postURL,
			Description: tr.Summary,
			PubDate:     pubDate,
			GUID:        postURL,
			Categories:  p.Tags,
		})
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       title,
			Link:        BuildURL(base, string(loc)),
			Description: title,
			Language:    loc.Tag().String(),
			Items:       items,
		},
	}
}

func (a *App) renderRSS(c echo.Context, loc locale.Locale, title string, posts []BlogPost) error {
	feed := buildFeed(a.Config.SiteURL, loc, title, posts)
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(feed)
}
