// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package renderer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chromedp/chromedp"
)

// pool holds a fixed set of headless-Chrome browser contexts, each backed
// by its own exec allocator. acquire blocks until a slot is free rather
// than spawning unbounded Chrome processes under load.
type pool struct {
	slots            chan int
	browsers         []context.Context
	browserCancels   []context.CancelFunc
	allocatorCancels []context.CancelFunc
}

// newPool starts size headless Chrome instances. binPath overrides the
// Chrome executable path; leave empty to let chromedp locate one on $PATH.
func newPool(size int, binPath string) (*pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("renderer: pool size must be > 0, got %d", size)
	}

	p := &pool{
		slots:            make(chan int, size),
		browsers:         make([]context.Context, size),
		browserCancels:   make([]context.CancelFunc, size),
		allocatorCancels: make([]context.CancelFunc, size),
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if binPath != "" {
		opts = append(opts, chromedp.ExecPath(binPath))
	}

	for i := 0; i < size; i++ {
		allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
		browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

		if err := chromedp.Run(browserCtx, chromedp.Navigate("about:blank")); err != nil {
			browserCancel()
			allocatorCancel()
			p.closePartial(i)
			return nil, fmt.Errorf("renderer: start chrome instance %d: %w", i, err)
		}

		p.browsers[i] = browserCtx
		p.browserCancels[i] = browserCancel
		p.allocatorCancels[i] = allocatorCancel
		p.slots <- i
	}

	slog.Info("chrome pool started", "size", size)
	return p, nil
}

// acquire waits for a free browser context, returning it along with a
// release function the caller must call exactly once.
func (p *pool) acquire(ctx context.Context) (context.Context, func(), error) {
	select {
	case idx := <-p.slots:
		released := false
		release := func() {
			if released {
				return
			}
			released = true
			p.slots <- idx
		}
		return p.browsers[idx], release, nil
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

// close releases every pooled Chrome instance.
func (p *pool) close() {
	p.closePartial(len(p.browsers))
}

// closePartial cancels the first n browser/allocator contexts, used both
// by close and by newPool's cleanup on partial-startup failure.
func (p *pool) closePartial(n int) {
	for i := 0; i < n; i++ {
		if p.browserCancels[i] != nil {
			p.browserCancels[i]()
		}
		if p.allocatorCancels[i] != nil {
			p.allocatorCancels[i]()
		}
	}
}
