package ingest

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
)

// FetchedPage is the text content of one fetched URL.
type FetchedPage struct {
	URL   string
	Title string
	Text  string
}

// FetchPage downloads a single page and extracts its readable text. Used by
// the URL import endpoint to pull brand pages into a tenant's corpus. The
// fetch is one-shot: no link following, no scheduling.
func FetchPage(url string) (*FetchedPage, error) {
	page := &FetchedPage{URL: url}

	collector := colly.NewCollector(
		colly.MaxDepth(1),
		colly.UserAgent("brandguard-importer/1.0"),
	)
	collector.SetRequestTimeout(30 * time.Second)

	var fetchErr error
	collector.OnResponse(func(r *colly.Response) {
		text, err := ExtractHTMLText(bytes.NewReader(r.Body))
		if err != nil {
			fetchErr = err
			return
		}
		page.Text = text
	})
	collector.OnHTML("title", func(e *colly.HTMLElement) {
		if page.Title == "" {
			page.Title = e.Text
		}
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := collector.Visit(url); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	collector.Wait()

	if fetchErr != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, fetchErr)
	}
	if page.Text == "" {
		return nil, fmt.Errorf("fetch %s: no extractable text", url)
	}
	return page, nil
}
