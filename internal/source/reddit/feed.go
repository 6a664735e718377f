package reddit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"

	"github.com/timmy/asciime/internal/config"
	"github.com/timmy/asciime/internal/source"
)

// feedLister reads the public per-subreddit feeds. Each entry's content is
// an HTML fragment whose "[link]" anchor points at the submitted url.
type feedLister struct {
	client *resty.Client
	parser *gofeed.Parser
}

func newFeedLister(cfg *config.RedditProviderConfig, retry config.RetryConfig) *feedLister {
	return &feedLister{
		client: source.NewClient(source.ClientOptions{
			BaseURL:   cfg.FeedURL,
			Timeout:   cfg.SubredditTimeout,
			Retry:     retry,
			UserAgent: cfg.UserAgent,
		}),
		parser: gofeed.NewParser(),
	}
}

func (l *feedLister) mode() string { return "feed" }

func (l *feedLister) hot(ctx context.Context, subreddit string, limit int) ([]string, error) {
	httpResp, err := l.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/atom+xml, application/rss+xml, application/xml").
		SetPathParam("subreddit", subreddit).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get("/r/{subreddit}/hot/.rss")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch r/%s feed: %w", subreddit, err)
	}
	if httpResp.StatusCode() != http.StatusOK {
		return nil, source.NewStatusError("Reddit", httpResp)
	}

	feed, err := l.parser.ParseString(string(httpResp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse r/%s feed: %w", subreddit, err)
	}

	urls := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		if u := linkFromContent(item.Content); u != "" {
			urls = append(urls, u)
			continue
		}
		for _, enc := range item.Enclosures {
			if enc != nil && enc.URL != "" {
				urls = append(urls, enc.URL)
				break
			}
		}
	}
	return urls, nil
}

// linkFromContent returns the href of the "[link]" anchor in an entry body.
func linkFromContent(content string) string {
	if content == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}

	var found string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" && strings.TrimSpace(textOf(n)) == "[link]" {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					found = attr.Val
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

func textOf(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
