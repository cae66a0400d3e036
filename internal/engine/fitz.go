package engine

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/gen2brain/go-fitz"

	"github.com/treykane/cli-pdf/internal/pagecache"
)

// pointsPerInch is the PDF user space resolution; fitz reports bounds in it.
const pointsPerInch = 72.0

// minDPI keeps tiny zoom levels from producing unreadable rasters.
const minDPI = 18.0

// Fitz opens documents with MuPDF.
type Fitz struct{}

// NewFitz returns the MuPDF engine.
func NewFitz() *Fitz { return &Fitz{} }

// Load opens source and reads its page count.
func (*Fitz) Load(ctx context.Context, source string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := fitz.New(source)
	if err != nil {
		return nil, fmt.Errorf("open document %q: %w", source, err)
	}
	d := &fitzDocument{doc: doc, source: source, numPages: doc.NumPage()}
	engineLog.Debug("document opened", "source", source, "pages", d.numPages)
	return d, nil
}

// fitzDocument serializes every call into MuPDF, whose document handle is
// not safe for concurrent use.
type fitzDocument struct {
	mu       sync.Mutex
	doc      *fitz.Document
	source   string
	numPages int
	closed   bool
}

func (d *fitzDocument) NumPages() int { return d.numPages }

func (d *fitzDocument) PageMetadata(ctx context.Context, pageNumber int) (pagecache.PageMetadata, error) {
	if err := checkPage(pageNumber, d.numPages); err != nil {
		return pagecache.PageMetadata{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(ctx); err != nil {
		return pagecache.PageMetadata{}, err
	}

	rect, err := d.doc.Bound(pageNumber - 1)
	if err != nil {
		return pagecache.PageMetadata{}, fmt.Errorf("bound page %d: %w", pageNumber, err)
	}
	return pagecache.PageMetadata{
		Width:  float64(rect.Dx()),
		Height: float64(rect.Dy()),
	}, nil
}

func (d *fitzDocument) RenderPage(ctx context.Context, pageNumber int, scale float64) (image.Image, error) {
	if err := checkPage(pageNumber, d.numPages); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(ctx); err != nil {
		return nil, err
	}

	img, err := d.doc.ImageDPI(pageNumber-1, dpiForScale(scale))
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", pageNumber, err)
	}
	return img, nil
}

func (d *fitzDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	engineLog.Debug("document closed", "source", d.source)
	return d.doc.Close()
}

// usable must be called with mu held.
func (d *fitzDocument) usable(ctx context.Context) error {
	if d.closed {
		return ErrClosed
	}
	return ctx.Err()
}

func dpiForScale(scale float64) float64 {
	return max(minDPI, pointsPerInch*scale)
}
