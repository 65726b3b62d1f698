package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"inkpost/internal/services"
	"inkpost/internal/utils"
)

const (
	sitemapLimit = 500
	feedLimit    = 20
)

type SEOHandler struct {
	siteURL string
}

func NewSEOHandler(siteURL string) *SEOHandler {
	return &SEOHandler{siteURL: strings.TrimSuffix(siteURL, "/")}
}

// RobotsTxt 返回robots.txt内容
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

# 禁止爬取账号和写作页面
Disallow: /login/
Disallow: /register/
Disallow: /create/
Disallow: /my-posts/
Disallow: /profile/
Disallow: /upload/

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapXML lists the home page and the most recent posts.
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	posts, err := services.RecentPosts(sitemapLimit)
	if err != nil {
		ServerError(c, err)
		return
	}

	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	set.URLs = append(set.URLs, sitemapURL{
		Loc:        h.siteURL + "/",
		LastMod:    time.Now().UTC().Format("2006-01-02"),
		ChangeFreq: "daily",
		Priority:   "1.0",
	})
	for _, post := range posts {
		// 根据文章新旧程度调整优先级
		priority, changefreq := "0.6", "weekly"
		if days := time.Since(post.CreatedAt).Hours() / 24; days < 7 {
			priority, changefreq = "0.8", "daily"
		} else if days < 30 {
			priority = "0.7"
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.siteURL + postURL(post.ID),
			LastMod:    post.UpdatedAt.Format("2006-01-02"),
			ChangeFreq: changefreq,
			Priority:   priority,
		})
	}
	writeXML(c, "application/xml; charset=utf-8", set)
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Author      string `xml:"author"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

// RSSFeed 生成RSS 2.0 feed
func (h *SEOHandler) RSSFeed(c *gin.Context) {
	posts, err := services.RecentPosts(feedLimit)
	if err != nil {
		ServerError(c, err)
		return
	}

	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:         "inkpost",
			Link:          h.siteURL + "/",
			Description:   "Latest posts",
			LastBuildDate: time.Now().UTC().Format(time.RFC1123Z),
		},
	}
	for _, post := range posts {
		link := h.siteURL + postURL(post.ID)
		feed.Channel.Items = append(feed.Channel.Items, rssItem{
			Title:       post.Title,
			Link:        link,
			Description: utils.Excerpt(post.Content, 300),
			Author:      post.User.Username,
			PubDate:     post.CreatedAt.Format(time.RFC1123Z),
			GUID:        link,
		})
	}
	writeXML(c, "application/rss+xml; charset=utf-8", feed)
}

func writeXML(c *gin.Context, contentType string, v interface{}) {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		ServerError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, append([]byte(xml.Header), out...))
}
