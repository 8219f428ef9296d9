// Package metadata extracts page metadata (title, description, favicon)
// from a URL, to prefill bookmark creation forms.
package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ysohn/markdrive/internal/utils"
)

// userAgent mimics a browser; some sites refuse obvious bots.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// PageMetadata is what could be extracted from a page.
type PageMetadata struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Favicon     string `json:"favicon,omitempty"`
	SiteName    string `json:"siteName,omitempty"`
}

// Fetcher downloads and parses pages with a bounded timeout.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewFetcher creates a fetcher. A non-positive timeout defaults to 5s.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Fetch downloads the page and extracts its metadata. On any failure it
// returns a minimal fallback derived from the URL's host, never an error
// visible as such to the caller's UI flow.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*PageMetadata, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid url %q", pageURL)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fallback(parsed), nil
	}
	defer utils.Close(resp.Body)

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return fallback(parsed), nil
	}

	meta := Extract(doc, parsed)
	meta.URL = pageURL
	if meta.Title == "" {
		meta.Title = parsed.Host
	}
	return meta, nil
}

func fallback(u *url.URL) *PageMetadata {
	return &PageMetadata{
		URL:     u.String(),
		Title:   u.Host,
		Favicon: u.Scheme + "://" + u.Host + "/favicon.ico",
	}
}

// Extract walks a parsed document and pulls out metadata. OpenGraph values
// win over plain meta tags, which win over the <title> element.
func Extract(doc *html.Node, base *url.URL) *PageMetadata {
	meta := &PageMetadata{}
	var titleTag, iconHref string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "title":
				if titleTag == "" {
					titleTag = strings.TrimSpace(textContent(n))
				}
			case "meta":
				name := strings.ToLower(attr(n, "property"))
				if name == "" {
					name = strings.ToLower(attr(n, "name"))
				}
				content := strings.TrimSpace(attr(n, "content"))
				if content == "" {
					break
				}
				switch name {
				case "og:title":
					meta.Title = content
				case "og:description":
					meta.Description = content
				case "description":
					if meta.Description == "" {
						meta.Description = content
					}
				case "og:site_name":
					meta.SiteName = content
				}
			case "link":
				rel := strings.ToLower(attr(n, "rel"))
				if strings.Contains(rel, "icon") && iconHref == "" {
					iconHref = attr(n, "href")
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if meta.Title == "" {
		meta.Title = titleTag
	}
	meta.Favicon = resolveFavicon(base, iconHref)
	return meta
}

// resolveFavicon resolves the icon href against the page URL, falling
// back to the conventional /favicon.ico.
func resolveFavicon(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	if href == "" {
		return base.Scheme + "://" + base.Host + "/favicon.ico"
	}
	ref, err := url.Parse(href)
	if err != nil {
		return base.Scheme + "://" + base.Host + "/favicon.ico"
	}
	return base.ResolveReference(ref).String()
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			sb.WriteString(child.Data)
		}
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
