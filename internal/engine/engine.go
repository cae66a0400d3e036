// Package engine is the boundary to the document decoding library.
//
// The viewer only needs three things from a document: how many pages it has,
// the intrinsic size of each page, and a raster of a page at some scale. Page
// numbers are 1-based everywhere in this package.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/treykane/cli-pdf/internal/logging"
	"github.com/treykane/cli-pdf/internal/pagecache"
)

var engineLog = logging.New("engine")

var (
	ErrPageOutOfRange = errors.New("page out of range")
	ErrClosed         = errors.New("document closed")
)

// Engine opens documents.
type Engine interface {
	Load(ctx context.Context, source string) (Document, error)
}

// Document is an open, decoded document. Implementations must be safe for
// concurrent use; metadata for every page is fetched in parallel.
type Document interface {
	NumPages() int
	PageMetadata(ctx context.Context, pageNumber int) (pagecache.PageMetadata, error)
	RenderPage(ctx context.Context, pageNumber int, scale float64) (image.Image, error)
	Close() error
}

func checkPage(pageNumber, numPages int) error {
	if pageNumber < 1 || pageNumber > numPages {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrPageOutOfRange, pageNumber, numPages)
	}
	return nil
}
