package docs

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	appsettlement "github.com/bartab/backend/internal/application/settlement"
	"github.com/bartab/backend/internal/domain/identity"
	"github.com/bartab/backend/internal/domain/settlement"
	"github.com/bartab/backend/internal/infrastructure/config"
)

const defaultRenderTimeout = 30 * time.Second

// A4 paper in inches.
const (
	paperWidthA4  = 210.0 / 25.4
	paperHeightA4 = 297.0 / 25.4
	marginA4      = 15.0 / 25.4
)

var _ appsettlement.InvoiceRenderer = (*ChromedpRenderer)(nil)

// ChromedpRenderer produces invoice PDFs through the Chrome DevTools
// protocol. With a ChromeURL configured it attaches to a remote browser,
// otherwise it launches a local headless instance.
type ChromedpRenderer struct {
	timeout     time.Duration
	locale      language.Tag
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates a renderer from the docs configuration.
func NewChromedpRenderer(cfg config.DocsConfig, logger *zap.Logger) *ChromedpRenderer {
	timeout := cfg.RenderTimeout
	if timeout == 0 {
		timeout = defaultRenderTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ChromedpRenderer{
		timeout: timeout,
		locale:  language.Dutch,
		logger:  logger,
	}

	if cfg.ChromeURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.ChromeURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-first-run", true),
			chromedp.Flag("disable-extensions", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("font-render-hinting", "none"),
		)
		r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}

	return r
}

// Render produces the invoice PDF.
func (r *ChromedpRenderer) Render(ctx context.Context, invoice *settlement.Invoice, debtor *identity.User) ([]byte, error) {
	html, err := buildInvoiceHTML(invoice, debtor, r.locale)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	start := time.Now()
	var pdfData []byte

	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidthA4).
				WithPaperHeight(paperHeightA4).
				WithMarginTop(marginA4).
				WithMarginRight(marginA4).
				WithMarginBottom(marginA4).
				WithMarginLeft(marginA4).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("invoice rendering timed out after %v: %w", r.timeout, err)
		}
		r.logger.Error("invoice rendering failed",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("rendering invoice pdf: %w", err)
	}
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("rendered invoice pdf is empty")
	}

	r.logger.Info("invoice rendered",
		zap.String("invoice_id", invoice.ID.String()),
		zap.Int("bytes", len(pdfData)),
		zap.Duration("duration", time.Since(start)))

	return pdfData, nil
}

// Close releases the browser allocator.
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}
