// Package fetcher downloads PDF documents over HTTP. A URL may point at a
// PDF directly or at an HTML page whose links to PDFs on the same host are
// followed once.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xhad/docqa/internal/models"
)

var pdfMagic = []byte("%PDF-")

type FetcherConfig struct {
	RateLimit    float64 // requests per second
	Timeout      time.Duration
	MaxBytes     int64
	MaxDocuments int
	Client       *http.Client
	Logger       *zap.Logger
	OnProgress   func(url string)
}

type Fetcher struct {
	config  FetcherConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewWithConfig(config FetcherConfig) *Fetcher {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2 // 2 requests per second by default
	}
	if config.MaxBytes == 0 {
		config.MaxBytes = 32 << 20
	}
	if config.MaxDocuments == 0 {
		config.MaxDocuments = 20
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	client := config.Client
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}

	return &Fetcher{
		config:  config,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		logger:  config.Logger,
	}
}

// IsURL reports whether s looks like an http(s) URL rather than a file path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch returns the documents reachable from rawURL, in link order.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]models.Document, error) {
	base, err := url.Parse(rawURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid URL %q", rawURL)
	}

	body, contentType, err := f.get(ctx, base.String())
	if err != nil {
		return nil, err
	}

	if isPDF(base, contentType, body) {
		return []models.Document{{Name: documentName(base), Data: body}}, nil
	}
	if !isHTML(contentType) {
		return nil, fmt.Errorf("unsupported content type %q for URL: %s", contentType, base)
	}

	links, err := f.pdfLinks(base, body)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("no PDF links found at %s", base)
	}

	docs := make([]models.Document, 0, len(links))
	taken := make(map[string]bool, len(links))
	for _, link := range links {
		data, _, err := f.get(ctx, link.String())
		if err != nil {
			return nil, err
		}
		name := uniqueName(link, taken)
		taken[name] = true
		docs = append(docs, models.Document{Name: name, Data: data})
	}
	return docs, nil
}

func (f *Fetcher) get(ctx context.Context, urlStr string) ([]byte, string, error) {
	if f.config.OnProgress != nil {
		f.config.OnProgress(urlStr)
	}

	// Apply rate limiting
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, urlStr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", urlStr, err)
	}
	if int64(len(body)) > f.config.MaxBytes {
		return nil, "", fmt.Errorf("%s exceeds %d bytes", urlStr, f.config.MaxBytes)
	}

	f.logger.Debug("fetched", zap.String("url", urlStr), zap.Int("bytes", len(body)))
	return body, resp.Header.Get("Content-Type"), nil
}

// pdfLinks collects same-host links ending in .pdf, without duplicates.
func (f *Fetcher) pdfLinks(base *url.URL, page []byte) ([]*url.URL, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", base, err)
	}

	seen := make(map[string]bool)
	var links []*url.URL
	doc.Find("a[href]").EachWithBreak(func(_ int, selection *goquery.Selection) bool {
		href, _ := selection.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}
		link := base.ResolveReference(ref)
		link.Fragment = ""

		if link.Host != base.Host || !strings.HasSuffix(strings.ToLower(link.Path), ".pdf") {
			return true
		}
		if seen[link.String()] {
			return true
		}
		seen[link.String()] = true
		links = append(links, link)
		return len(links) < f.config.MaxDocuments
	})
	return links, nil
}

func isPDF(u *url.URL, contentType string, body []byte) bool {
	if bytes.HasPrefix(body, pdfMagic) {
		return true
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "application/pdf" {
		return true
	}
	return mediaType == "" && strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

func isHTML(contentType string) bool {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

func documentName(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return u.Host
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

// uniqueName returns the base name of u, or when that is already taken, the
// shortest trailing path that is not, so /a/manual.pdf and /b/manual.pdf
// become manual.pdf and b/manual.pdf.
func uniqueName(u *url.URL, taken map[string]bool) string {
	name := documentName(u)
	if !taken[name] {
		return name
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 2; i >= 0; i-- {
		candidate := strings.Join(segments[i:], "/")
		if unescaped, err := url.PathUnescape(candidate); err == nil {
			candidate = unescaped
		}
		if !taken[candidate] {
			return candidate
		}
	}

	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		if !taken[candidate] {
			return candidate
		}
	}
}
