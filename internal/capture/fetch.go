package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

const (
	userAgent       = "Memoria/1.0 (ResearchTool)"
	maxContentChars = 3000 // cap text sent to the summarizer
	maxBodyBytes    = 4 << 20
)

var urlPattern = regexp.MustCompile(`^(http|https)://[^ "]+$`)

// isURL reports whether the capture input looks like a fetchable URL.
func isURL(input string) bool {
	return urlPattern.MatchString(input)
}

// fetchURLContent downloads a page and reduces it to a title plus plain
// text drawn from heading, paragraph, and list elements.
func fetchURLContent(ctx context.Context, client *http.Client, url string) (title, content string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	title, content = extractText(doc)
	if title == "" {
		title = url
	}
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}
	return title, content, nil
}

// skippedElements are interface chrome with no capture value.
var skippedElements = map[string]bool{
	"script": true, "style": true, "nav": true,
	"footer": true, "header": true, "noscript": true,
}

// textElements are the nodes whose text is worth keeping.
var textElements = map[string]bool{
	"h1": true, "h2": true, "h3": true, "p": true, "li": true,
}

func extractText(doc *html.Node) (title, content string) {
	var sb strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skippedElements[n.Data] {
				return
			}
			if n.Data == "title" && title == "" {
				title = strings.TrimSpace(nodeText(n))
				return
			}
			if textElements[n.Data] {
				if t := strings.TrimSpace(nodeText(n)); t != "" {
					sb.WriteString(t)
					sb.WriteString("\n")
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	content = strings.Join(strings.Fields(sb.String()), " ")
	return title, content
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
