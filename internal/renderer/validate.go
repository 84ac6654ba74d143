// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package renderer

import (
	"fmt"
	"net/url"
	"regexp"
)

// templateValidation is the pre-render counterpart to validatePDF: it
// inspects the composed document itself — before any external renderer
// process touches it — for the two defects that would otherwise surface
// as a confusing post-render failure: an image reference the renderer
// can't resolve, or a stylesheet with unbalanced rule blocks.
type templateValidation struct {
	OK       bool
	Errors   []string
	Warnings []string
}

var (
	imgSrcRe    = regexp.MustCompile(`<img[^>]*\ssrc="([^"]*)"`)
	styleBlockRe = regexp.MustCompile(`(?s)<style>(.*?)</style>`)
)

// validateTemplate detects missing images and malformed CSS rule blocks
// without producing a PDF, per the renderer adapter's validate contract.
// There is no CSS/HTML parsing library in this project's dependency set,
// so both checks are deliberately shallow, regexp-based structural
// checks rather than a full parse.
func validateTemplate(doc Document) templateValidation {
	var errs []string

	for _, m := range imgSrcRe.FindAllStringSubmatch(doc.HTML, -1) {
		src := m[1]
		if src == "" {
			errs = append(errs, "image reference with empty src")
			continue
		}
		if _, err := url.Parse(src); err != nil {
			errs = append(errs, fmt.Sprintf("malformed image url %q: %v", src, err))
		}
	}

	for _, m := range styleBlockRe.FindAllStringSubmatch(doc.HTML, -1) {
		if depth := braceDepth(m[1]); depth != 0 {
			errs = append(errs, fmt.Sprintf("unbalanced rule blocks in embedded stylesheet (brace depth %d)", depth))
		}
	}

	return templateValidation{OK: len(errs) == 0, Errors: errs}
}

// braceDepth returns the net count of '{' minus '}' across css. A
// well-formed stylesheet returns to 0; anything else signals a rule
// block was left open or closed without being opened.
func braceDepth(css string) int {
	depth := 0
	for _, r := range css {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return depth
}
