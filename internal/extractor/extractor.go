package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

const (
	// MaxTextChars is the truncation cap applied to extracted text before it
	// leaves this package. Raw character slice, no boundary awareness.
	MaxTextChars = 3000

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	htmlSniffLimit = 1024
)

var (
	// ErrFetch marks transport failures and non-2xx responses from the PDF
	// source.
	ErrFetch = errors.New("fetch PDF")

	// ErrDecode marks response bodies that are not a readable PDF or contain
	// zero pages.
	ErrDecode = errors.New("decode PDF")
)

// Extractor turns a PDF URL into extracted plain text.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// PDFExtractor downloads a PDF over HTTP and extracts its text page by page.
type PDFExtractor struct {
	client *http.Client
	log    *slog.Logger
}

func New(timeout time.Duration, log *slog.Logger) *PDFExtractor {
	return &PDFExtractor{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Extract performs one GET against url, decodes the body as a PDF, and returns
// the concatenated per-page text with one newline after every page, truncated
// to MaxTextChars. An empty string with a nil error is a valid outcome for a
// PDF with no extractable text; callers must treat it as "nothing to
// summarize", not as success.
func (e *PDFExtractor) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			e.log.WarnContext(ctx, "Failed to close response body",
				"error", closeErr,
				"url", url)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: unexpected status %s", ErrFetch, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}

	pages, err := e.decodePages(ctx, url, data)
	if err != nil {
		if title, ok := htmlTitle(data); ok {
			return "", fmt.Errorf(
				"%w: URL returned a web page titled %q, not a PDF", ErrDecode, title)
		}

		return "", err
	}

	text := truncate(joinPages(pages), MaxTextChars)

	e.log.InfoContext(ctx, "PDF text is extracted",
		"url", url,
		"pageCount", len(pages),
		"chars", len(text))

	return text, nil
}

// decodePages pulls the per-page plain text out of the downloaded bytes. The
// PDF library panics on some malformed documents, so the recover here folds
// those into a decode error instead of taking down the run.
func (e *PDFExtractor) decodePages(
	ctx context.Context,
	url string,
	data []byte,
) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", ErrDecode, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	pageCount := reader.NumPage()
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrDecode)
	}

	pages = make([]string, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")

			continue
		}

		content, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			e.log.WarnContext(ctx, "Failed to extract page text",
				"error", pageErr,
				"url", url,
				"page", i)
			pages = append(pages, "")

			continue
		}

		pages = append(pages, content)
	}

	return pages, nil
}

// joinPages appends one newline after every page, including the last.
func joinPages(pages []string) string {
	var b strings.Builder

	for _, page := range pages {
		b.WriteString(page)
		b.WriteString("\n")
	}

	return b.String()
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}

	return string(runes[:maxChars])
}

// htmlTitle recognizes the common mistake of submitting a paper's landing page
// instead of the PDF itself and pulls out its title for the error message.
func htmlTitle(data []byte) (string, bool) {
	sniff := data
	if len(sniff) > htmlSniffLimit {
		sniff = sniff[:htmlSniffLimit]
	}

	lower := strings.ToLower(string(sniff))
	if !strings.Contains(lower, "<html") && !strings.Contains(lower, "<!doctype html") {
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", false
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = "(untitled)"
	}

	return title, true
}
