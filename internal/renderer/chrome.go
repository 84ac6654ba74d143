// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package renderer

import (
	"context"
	"fmt"
	"os"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"magazinecore/internal/models"
)

// ChromeAdapter renders a composed HTML document to PDF via headless
// Chrome's native "print to PDF" support, then validates the result with
// pdfcpu before handing it back — a malformed PDF is treated the same as
// a render failure so the caller falls through to the HTML adapter.
type ChromeAdapter struct {
	pool *pool
}

// NewChromeAdapter starts a pool of poolSize headless Chrome instances.
// binPath overrides the Chrome executable; leave empty to let chromedp
// locate one on $PATH.
func NewChromeAdapter(poolSize int, binPath string) (*ChromeAdapter, error) {
	p, err := newPool(poolSize, binPath)
	if err != nil {
		return nil, err
	}
	return &ChromeAdapter{pool: p}, nil
}

// Close releases every pooled Chrome instance.
func (c *ChromeAdapter) Close() {
	c.pool.close()
}

// Render implements Adapter.
func (c *ChromeAdapter) Render(ctx context.Context, doc Document) (Output, error) {
	validation := validateTemplate(doc)
	if !validation.OK {
		return Output{}, fmt.Errorf("chrome adapter: template validation failed: %v", validation.Errors)
	}

	browserCtx, release, err := c.pool.acquire(ctx)
	if err != nil {
		return Output{}, fmt.Errorf("chrome adapter: acquire instance: %w", err)
	}
	defer release()

	var pdfBuf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("data:text/html,"+doc.HTML),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return Output{}, fmt.Errorf("chrome adapter: print to pdf: %w", err)
	}

	if err := validatePDF(pdfBuf); err != nil {
		return Output{}, fmt.Errorf("chrome adapter: invalid pdf output: %w", err)
	}

	return Output{
		Format:   "pdf",
		Content:  pdfBuf,
		Renderer: models.RendererPagedPrimary,
	}, nil
}

// validatePDF runs pdfcpu's structural parser over the rendered bytes,
// catching truncated or corrupt output before it reaches the artifact
// store. pdfcpu's context reader works off a file path, so the bytes are
// staged to a scratch file first.
func validatePDF(content []byte) error {
	tmp, err := os.CreateTemp("", "magazinecore-render-*.pdf")
	if err != nil {
		return fmt.Errorf("stage temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if _, err := api.ReadContextFile(tmp.Name()); err != nil {
		return fmt.Errorf("parse pdf: %w", err)
	}
	return nil
}
