// Package pagecache fetches and holds the intrinsic dimensions of every page
// in a document.
//
// Dimensions are revealed all at once: Populate returns only after every
// page's metadata has resolved, so a consumer never observes a partially
// filled cache and never asks for the height of a page that is not there yet.
// A single failed fetch fails the whole batch.
//
// Heights stored in the cache already include the inter-page spacing passed
// to Populate. Scale is not applied here; callers multiply at query time so
// one cache serves every zoom level.
package pagecache

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// PageMetadata is what the decoding engine reports for a single page.
type PageMetadata struct {
	Width  float64
	Height float64
}

// Dimension is a cached page size. Height includes the inter-page spacing.
type Dimension struct {
	Width  float64
	Height float64
}

// FetchFunc loads the metadata of one page. Page numbers are 1-based.
type FetchFunc func(ctx context.Context, pageNumber int) (PageMetadata, error)

// FetchError reports which page made a batch fail.
type FetchError struct {
	Page int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch page %d metadata: %v", e.Page, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

var ErrInvalidPageCount = errors.New("page count must not be negative")

// Dimensions maps 1-based page numbers to their cached size. It is immutable
// once returned by Populate.
type Dimensions struct {
	pages     []Dimension
	spacing   float64
	maxWidth  float64
	sumHeight float64
}

// Populate fetches metadata for pages 1..pageCount concurrently and returns
// the complete cache, or the first error encountered.
func Populate(ctx context.Context, pageCount int, spacing float64, fetch FetchFunc) (Dimensions, error) {
	if pageCount < 0 {
		return Dimensions{}, fmt.Errorf("%w: %d", ErrInvalidPageCount, pageCount)
	}

	results := make([]PageMetadata, pageCount)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < pageCount; i++ {
		pageNumber := i + 1
		g.Go(func() error {
			meta, err := fetch(gctx, pageNumber)
			if err != nil {
				return &FetchError{Page: pageNumber, Err: err}
			}
			// Slots are disjoint per goroutine.
			results[pageNumber-1] = meta
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Dimensions{}, err
	}

	dims := Dimensions{
		pages:   make([]Dimension, pageCount),
		spacing: spacing,
	}
	for i, meta := range results {
		d := Dimension{Width: meta.Width, Height: meta.Height + spacing}
		dims.pages[i] = d
		dims.maxWidth = max(dims.maxWidth, d.Width)
		dims.sumHeight += d.Height
	}
	return dims, nil
}

// Len returns the number of cached pages.
func (d Dimensions) Len() int { return len(d.pages) }

// Spacing returns the inter-page spacing folded into every height.
func (d Dimensions) Spacing() float64 { return d.spacing }

// Page returns the cached size of a 1-based page number.
func (d Dimensions) Page(pageNumber int) (Dimension, bool) {
	if pageNumber < 1 || pageNumber > len(d.pages) {
		return Dimension{}, false
	}
	return d.pages[pageNumber-1], true
}

// MustPage is Page for callers that hold the invariant that the page exists.
// A miss is a layout bug and panics.
func (d Dimensions) MustPage(pageNumber int) Dimension {
	dim, ok := d.Page(pageNumber)
	if !ok {
		panic(fmt.Sprintf("pagecache: page %d not cached (have %d pages)", pageNumber, len(d.pages)))
	}
	return dim
}

// MaxWidth returns the widest page.
func (d Dimensions) MaxWidth() float64 { return d.maxWidth }

// MeanHeight returns the average cached height, or 0 for an empty document.
func (d Dimensions) MeanHeight() float64 {
	if len(d.pages) == 0 {
		return 0
	}
	return d.sumHeight / float64(len(d.pages))
}
