package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"mvdan.cc/xurls/v2"

	"papersum/internal/domain"
	"papersum/internal/summarizer"
)

var urlRe = xurls.Strict()

type formValues struct {
	URL      string
	Audience string
	Length   int
}

type pageData struct {
	Audiences []domain.Audience
	MinLength int
	MaxLength int
	Form      formValues
	Warning   string
	Error     string
	Summary   string
	Recent    []domain.SummaryRecord
}

func (s *Server) newPageData(c echo.Context) pageData {
	data := pageData{
		Audiences: domain.Audiences,
		MinLength: domain.MinSummaryLength,
		MaxLength: domain.MaxSummaryLength,
		Form: formValues{
			Audience: string(domain.AudienceBeginnerFriendly),
			Length:   domain.DefaultSummaryLength,
		},
	}

	ctx := c.Request().Context()

	recent, err := s.history.Recent(ctx, s.historyLimit)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load recent summaries",
			"error", err,
			"limit", s.historyLimit)
	} else {
		data.Recent = recent
	}

	return data
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", s.newPageData(c))
}

// handleSummarize runs one pipeline pass: validate input, extract, summarize,
// render. Every failure past this point becomes text on the page; nothing is
// re-raised to the client as a non-200.
func (s *Server) handleSummarize(c echo.Context) error {
	data := s.newPageData(c)

	rawURL := strings.TrimSpace(c.FormValue("url"))
	data.Form.URL = rawURL
	if audience := c.FormValue("audience"); audience != "" {
		data.Form.Audience = audience
	}

	if rawURL == "" {
		data.Warning = "Please enter a PDF URL"

		return c.Render(http.StatusOK, "index.html", data)
	}

	pdfURL := urlRe.FindString(rawURL)
	if pdfURL == "" ||
		(!strings.HasPrefix(pdfURL, "http://") && !strings.HasPrefix(pdfURL, "https://")) {
		data.Warning = "That doesn't look like an HTTP(S) URL"

		return c.Render(http.StatusOK, "index.html", data)
	}

	audience, err := domain.ParseAudience(data.Form.Audience)
	if err != nil {
		data.Warning = "Please pick one of the offered summary types"

		return c.Render(http.StatusOK, "index.html", data)
	}

	length, err := strconv.Atoi(c.FormValue("length"))
	if err != nil || length < domain.MinSummaryLength || length > domain.MaxSummaryLength {
		data.Warning = "Summary length must be between 3 and 10 sentences"

		return c.Render(http.StatusOK, "index.html", data)
	}
	data.Form.Length = length

	if !s.runMu.TryLock() {
		data.Warning = "A summary is already being generated, please try again shortly"

		return c.Render(http.StatusOK, "index.html", data)
	}
	defer s.runMu.Unlock()

	ctx := c.Request().Context()

	text, err := s.extractText(ctx, pdfURL)
	if err != nil {
		data.Error = "Failed to process the PDF: " + err.Error()

		return c.Render(http.StatusOK, "index.html", data)
	}
	if text == "" {
		data.Error = "Failed to extract text from PDF"

		return c.Render(http.StatusOK, "index.html", data)
	}

	summaryCtx, cancel := context.WithTimeout(ctx, s.summaryTimeout)
	defer cancel()

	summary, err := s.summarizer.Summarize(summaryCtx, domain.SummaryRequest{
		Text:     text,
		Audience: audience,
		Length:   length,
	})

	// The page shows whichever text came back; success and the error text
	// share the result area, as the legacy UI did.
	data.Summary = summarizer.DisplayText(summary, err)

	if err == nil {
		if saveErr := s.history.Save(ctx, domain.SummaryRecord{
			URL:      pdfURL,
			Audience: audience,
			Length:   length,
			Summary:  summary,
		}); saveErr != nil {
			s.log.ErrorContext(ctx, "Failed to save summary",
				"error", saveErr,
				"url", pdfURL)
		} else if recent, recentErr := s.history.Recent(ctx, s.historyLimit); recentErr == nil {
			data.Recent = recent
		}
	}

	return c.Render(http.StatusOK, "index.html", data)
}

func (s *Server) extractText(ctx context.Context, pdfURL string) (string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	return s.extractor.Extract(fetchCtx, pdfURL)
}
