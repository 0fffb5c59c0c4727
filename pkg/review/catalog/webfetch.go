package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

// webFetchMaxBytes bounds the raw HTTP response body read before extraction.
const webFetchMaxBytes = 1 << 20 // 1 MiB

var webFetchClient = &http.Client{Timeout: 30 * time.Second}

// webFetchHandles returns the single builtin web_fetch tool: it is modeled
// natively by some model adapters, but still carries a working Invoke for
// adapters without native support.
func webFetchHandles() []Handle {
	return []Handle{{
		Name:    "web_fetch",
		Builtin: true,
		Invoke: func(ctx context.Context, argv []string) (string, error) {
			if len(argv) < 1 {
				return "", fmt.Errorf("web_fetch: url argument required")
			}
			return fetchReadable(ctx, argv[0])
		},
	}}
}

func fetchReadable(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("web_fetch: invalid URL %q: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; ReviewFleetBot/1.0)")

	resp, err := webFetchClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("web_fetch: request to %q failed: %w. Check network access and the URL", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("web_fetch: HTTP %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, webFetchMaxBytes))
	if err != nil {
		return "", fmt.Errorf("web_fetch: reading response from %q: %w", rawURL, err)
	}
	html := string(body)

	parsedURL, _ := url.Parse(rawURL)
	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return strings.TrimSpace(article.TextContent), nil
	}
	return stripHTML(html), nil
}

var htmlTagPattern = regexp.MustCompile(`(?s)<[^>]*>`)

// stripHTML is the fallback used when readability extraction fails to find
// an article body (e.g. the page isn't prose, such as a raw JSON API
// response).
func stripHTML(html string) string {
	text := htmlTagPattern.ReplaceAllString(html, " ")
	return strings.TrimSpace(strings.Join(strings.Fields(text), " "))
}
