package server_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"papersum/internal/config"
	"papersum/internal/domain"
	"papersum/internal/server"
)

type stubExtractor struct {
	mu    sync.Mutex
	calls int
	text  string
	err   error
}

func (e *stubExtractor) Extract(_ context.Context, _ string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++

	return e.text, e.err
}

func (e *stubExtractor) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.calls
}

type blockingExtractor struct {
	startOnce sync.Once
	started   chan struct{}
	release   chan struct{}
}

func (e *blockingExtractor) Extract(_ context.Context, _ string) (string, error) {
	e.startOnce.Do(func() { close(e.started) })
	<-e.release

	return "extracted text", nil
}

type stubSummarizer struct {
	mu      sync.Mutex
	calls   int
	summary string
	err     error
}

func (s *stubSummarizer) Summarize(
	_ context.Context,
	_ domain.SummaryRequest,
) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	return s.summary, s.err
}

func (s *stubSummarizer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

type memHistory struct {
	mu      sync.Mutex
	records []domain.SummaryRecord
}

func (h *memHistory) Save(_ context.Context, rec domain.SummaryRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec.CreatedAt = time.Now().UTC()
	h.records = append([]domain.SummaryRecord{rec}, h.records...)

	return nil
}

func (h *memHistory) Recent(_ context.Context, limit int) ([]domain.SummaryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.records) < limit {
		limit = len(h.records)
	}

	return h.records[:limit], nil
}

func (h *memHistory) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.records)
}

func newTestServer(
	ext *stubExtractor,
	sum *stubSummarizer,
	hist *memHistory,
) http.Handler {
	cfg := config.Config{
		FetchTimeout:   time.Second,
		SummaryTimeout: time.Second,
		HistoryLimit:   10,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return server.New(cfg, ext, sum, hist, log).Handler()
}

func postForm(t *testing.T, h http.Handler, values url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/summarize", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func validForm() url.Values {
	return url.Values{
		"url":      {"https://example.org/paper.pdf"},
		"audience": {string(domain.AudienceTechnical)},
		"length":   {"5"},
	}
}

func TestIndexRendersForm(t *testing.T) {
	h := newTestServer(&stubExtractor{}, &stubSummarizer{}, &memHistory{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "Research Paper Summarizer") {
		t.Fatalf("expected page title in body")
	}
	for _, audience := range domain.Audiences {
		if !strings.Contains(body, string(audience)) {
			t.Fatalf("expected audience %q in body", audience)
		}
	}
}

func TestEmptyURLShowsWarningWithoutNetworkCalls(t *testing.T) {
	ext := &stubExtractor{text: "some text"}
	sum := &stubSummarizer{summary: "a summary"}
	h := newTestServer(ext, sum, &memHistory{})

	form := validForm()
	form.Set("url", "   ")

	rec := postForm(t, h, form)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), "Please enter a PDF URL") {
		t.Fatalf("expected warning in body")
	}
	if ext.callCount() != 0 {
		t.Fatalf("expected no extraction call, got %d", ext.callCount())
	}
	if sum.callCount() != 0 {
		t.Fatalf("expected no summarize call, got %d", sum.callCount())
	}
}

func TestNonURLInputShowsWarning(t *testing.T) {
	ext := &stubExtractor{text: "some text"}
	h := newTestServer(ext, &stubSummarizer{}, &memHistory{})

	form := validForm()
	form.Set("url", "not a url at all")

	rec := postForm(t, h, form)
	if !strings.Contains(rec.Body.String(), "look like an HTTP(S) URL") {
		t.Fatalf("expected URL warning in body")
	}
	if ext.callCount() != 0 {
		t.Fatalf("expected no extraction call, got %d", ext.callCount())
	}
}

func TestUnknownAudienceShowsWarning(t *testing.T) {
	ext := &stubExtractor{text: "some text"}
	h := newTestServer(ext, &stubSummarizer{}, &memHistory{})

	form := validForm()
	form.Set("audience", "Sarcastic")

	rec := postForm(t, h, form)
	if !strings.Contains(rec.Body.String(), "offered summary types") {
		t.Fatalf("expected audience warning in body")
	}
	if ext.callCount() != 0 {
		t.Fatalf("expected no extraction call, got %d", ext.callCount())
	}
}

func TestOutOfRangeLengthShowsWarning(t *testing.T) {
	ext := &stubExtractor{text: "some text"}
	h := newTestServer(ext, &stubSummarizer{}, &memHistory{})

	form := validForm()
	form.Set("length", "42")

	rec := postForm(t, h, form)
	if !strings.Contains(rec.Body.String(), "between 3 and 10 sentences") {
		t.Fatalf("expected length warning in body")
	}
	if ext.callCount() != 0 {
		t.Fatalf("expected no extraction call, got %d", ext.callCount())
	}
}

func TestExtractionFailureHaltsRun(t *testing.T) {
	ext := &stubExtractor{err: errors.New("connection refused")}
	sum := &stubSummarizer{summary: "a summary"}
	h := newTestServer(ext, sum, &memHistory{})

	rec := postForm(t, h, validForm())
	body := rec.Body.String()

	if !strings.Contains(body, "Failed to process the PDF") {
		t.Fatalf("expected extraction error in body")
	}
	if sum.callCount() != 0 {
		t.Fatalf("expected summarizer to be skipped, got %d calls", sum.callCount())
	}
}

func TestEmptyExtractionShowsError(t *testing.T) {
	ext := &stubExtractor{text: ""}
	sum := &stubSummarizer{summary: "a summary"}
	h := newTestServer(ext, sum, &memHistory{})

	rec := postForm(t, h, validForm())

	if !strings.Contains(rec.Body.String(), "Failed to extract text from PDF") {
		t.Fatalf("expected empty-extraction error in body")
	}
	if sum.callCount() != 0 {
		t.Fatalf("expected summarizer to be skipped, got %d calls", sum.callCount())
	}
}

func TestSuccessRendersSummaryAndSavesHistory(t *testing.T) {
	ext := &stubExtractor{text: "extracted text"}
	sum := &stubSummarizer{summary: "A fine summary."}
	hist := &memHistory{}
	h := newTestServer(ext, sum, hist)

	rec := postForm(t, h, validForm())
	body := rec.Body.String()

	if !strings.Contains(body, "A fine summary.") {
		t.Fatalf("expected summary in body")
	}
	if !strings.Contains(body, "Recent summaries") {
		t.Fatalf("expected history panel in body")
	}
	if hist.count() != 1 {
		t.Fatalf("expected 1 saved record, got %d", hist.count())
	}
}

func TestSummarizerFailureRendersErrorText(t *testing.T) {
	ext := &stubExtractor{text: "extracted text"}
	sum := &stubSummarizer{err: errors.New("api unavailable")}
	hist := &memHistory{}
	h := newTestServer(ext, sum, hist)

	rec := postForm(t, h, validForm())

	if !strings.Contains(rec.Body.String(), "❌ Error: ") {
		t.Fatalf("expected error text in body")
	}
	if hist.count() != 0 {
		t.Fatalf("expected no saved record, got %d", hist.count())
	}
}

func TestConcurrentRunGetsBusyNotice(t *testing.T) {
	ext := &blockingExtractor{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	sum := &stubSummarizer{summary: "a summary"}

	cfg := config.Config{
		FetchTimeout:   time.Second,
		SummaryTimeout: time.Second,
		HistoryLimit:   10,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := server.New(cfg, ext, sum, &memHistory{}, log).Handler()

	done := make(chan struct{})
	go func() {
		defer close(done)
		postForm(t, handler, validForm())
	}()

	<-ext.started

	rec := postForm(t, handler, validForm())
	if !strings.Contains(rec.Body.String(), "already being generated") {
		t.Fatalf("expected busy notice in body")
	}

	close(ext.release)
	<-done
}

func TestHealthz(t *testing.T) {
	h := newTestServer(&stubExtractor{}, &stubSummarizer{}, &memHistory{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}
