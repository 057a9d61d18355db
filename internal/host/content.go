package host

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// PageContent is what the extractor can read out of a live page for the
// LLM clustering prompts.
type PageContent struct {
	Title      string `json:"title"`
	Snippet    string `json:"snippet"`
	FavIconURL string `json:"favicon"`
}

const contentJS = `(function() {
	var icon = "";
	var link = document.querySelector('link[rel~="icon"]');
	if (link) { icon = link.href; }
	var text = document.body ? document.body.innerText : "";
	return {
		title: document.title || "",
		snippet: text.replace(/\s+/g, " ").slice(0, %d),
		favicon: icon
	};
})()`

// Extractor reads page text from live tabs through a chromedp session. It
// holds its own allocator so extraction never interferes with the control
// connection.
type Extractor struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
	maxSnippet  int
}

// NewExtractor builds an extractor against the same CDP endpoint as the
// client.
func NewExtractor(cdpURL string, timeout time.Duration, maxSnippet int) *Extractor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxSnippet <= 0 {
		maxSnippet = 500
	}
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), cdpURL)
	return &Extractor{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		timeout:     timeout,
		maxSnippet:  maxSnippet,
	}
}

// Extract attaches to the given target and reads title, a truncated body
// snippet, and the favicon URL. Callers degrade to title/URL-only on error;
// a single failing tab never aborts a clustering batch.
func (e *Extractor) Extract(ctx context.Context, targetID string) (PageContent, error) {
	tabCtx, tabCancel := chromedp.NewContext(e.allocCtx, chromedp.WithTargetID(target.ID(targetID)))
	defer tabCancel()

	runCtx, runCancel := context.WithTimeout(tabCtx, e.timeout)
	defer runCancel()

	var out PageContent
	js := fmt.Sprintf(contentJS, e.maxSnippet)
	if err := chromedp.Run(runCtx, chromedp.Evaluate(js, &out)); err != nil {
		return PageContent{}, err
	}
	return out, nil
}

// Close releases the allocator.
func (e *Extractor) Close() {
	e.allocCancel()
}
