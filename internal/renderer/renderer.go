// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package renderer turns a composed HTML document into a paged-media
// artifact. The primary path drives a pooled headless-Chrome instance to
// print a validated PDF; when Chrome is unavailable or printing fails,
// the adapter chain falls back to a standalone HTML document carrying the
// same master stylesheet plus a diagnostic banner.
package renderer

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"magazinecore/internal/layout"
	"magazinecore/internal/models"
)

// Document is what an Adapter renders: the composed document's full HTML
// (head, master stylesheet, body), the master CSS on its own (so the
// fallback emitter can re-inline it without re-parsing the head), and the
// per-article decisions (so the fallback emitter can report them).
type Document struct {
	HTML      string
	CSS       string
	Decisions []layout.LayoutDecision
}

// Output is one render attempt's result: either a PDF (Format "pdf") or
// the raw HTML document (Format "html") when falling back.
type Output struct {
	Format   string
	Content  []byte
	Renderer models.RendererSelector
}

// Adapter turns a composed document into a renderable artifact.
type Adapter interface {
	Render(ctx context.Context, doc Document) (Output, error)
}

// HTMLFallback emits a standalone HTML document that never depends on an
// external renderer process. It never fails — it is the adapter of last
// resort for hosts with no Chrome binary, or when the primary adapter's
// validation or PDF output fails.
type HTMLFallback struct{}

// Render implements Adapter. It inlines doc.CSS, prepends a diagnostic
// banner summarizing every article's layout decision, and splices
// doc.HTML's body content into a fresh document shell (the original
// <!DOCTYPE>/<html>/<head>/<body> wrappers are discarded along with the
// head's duplicate copy of the stylesheet).
func (HTMLFallback) Render(_ context.Context, doc Document) (Output, error) {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"de\">\n<head>\n<meta charset=\"utf-8\">\n<style>\n")
	b.WriteString(doc.CSS)
	b.WriteString("\n</style>\n</head>\n<body>\n")
	b.WriteString(diagnosticBanner(doc.Decisions))
	b.WriteString(stripDocumentWrapper(doc.HTML))
	b.WriteString("\n</body>\n</html>\n")

	return Output{
		Format:   "html",
		Content:  []byte(b.String()),
		Renderer: models.RendererHTMLFallback,
	}, nil
}

var (
	doctypeRe  = regexp.MustCompile(`(?is)<!DOCTYPE[^>]*>`)
	headRe     = regexp.MustCompile(`(?is)<head>.*?</head>`)
	htmlOpenRe = regexp.MustCompile(`(?is)<html[^>]*>`)
	htmlEndRe  = regexp.MustCompile(`(?is)</html>`)
	bodyOpenRe = regexp.MustCompile(`(?is)<body[^>]*>`)
	bodyEndRe  = regexp.MustCompile(`(?is)</body>`)
)

// stripDocumentWrapper removes the outer document scaffolding from a full
// HTML document, leaving just the body's inner content behind.
func stripDocumentWrapper(doc string) string {
	doc = doctypeRe.ReplaceAllString(doc, "")
	doc = headRe.ReplaceAllString(doc, "")
	doc = htmlOpenRe.ReplaceAllString(doc, "")
	doc = htmlEndRe.ReplaceAllString(doc, "")
	doc = bodyOpenRe.ReplaceAllString(doc, "")
	doc = bodyEndRe.ReplaceAllString(doc, "")
	return strings.TrimSpace(doc)
}

// diagnosticBanner lists every article's winning variant id, score, font
// size, column count, and any warnings, so a reader of the HTML preview
// can see at a glance what the paged-media renderer would have produced.
func diagnosticBanner(decisions []layout.LayoutDecision) string {
	var b strings.Builder
	b.WriteString("<div class=\"render-fallback-banner\" style=\"border:2px solid #b00;" +
		"background:#fee;padding:4mm;margin-bottom:6mm;font-family:sans-serif;font-size:10pt\">\n")
	b.WriteString("<p><strong>HTML preview</strong> &mdash; PDF rendering unavailable in this environment.</p>\n")
	b.WriteString("<ul>\n")
	for _, d := range decisions {
		fmt.Fprintf(&b, "<li>%s &mdash; score %.1f, %.1fpt, %d col(s)",
			html.EscapeString(d.VariantID), d.Score, d.FontSize, d.Columns)
		if len(d.Warnings) > 0 {
			fmt.Fprintf(&b, " (warnings: %s)", html.EscapeString(strings.Join(d.Warnings, "; ")))
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>\n</div>\n")
	return b.String()
}

// chain tries each adapter in order, returning the first successful
// output. Used to wire the primary adapter with the HTML fallback as its
// safety net without the supervisor needing to know about either directly.
type chain struct {
	adapters []Adapter
}

// Chain builds an Adapter that tries each of adapters in order, falling
// through to the next on error.
func Chain(adapters ...Adapter) Adapter {
	return chain{adapters: adapters}
}

// Render implements Adapter.
func (c chain) Render(ctx context.Context, doc Document) (Output, error) {
	var lastErr error
	for _, a := range c.adapters {
		out, err := a.Render(ctx, doc)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return Output{}, fmt.Errorf("renderer: all adapters failed: %w", lastErr)
}
