// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package layout implements the Layout Decision & Template Composition
// core: measuring an article's shape (Analyze), scoring template
// variants against those measurements (Decide), and emitting the
// per-article CSS a chosen decision implies (EmitArticleCSS). All three
// are pure functions over their inputs — no I/O, no suspension — so the
// render job supervisor can call them inline between its own stages.
package layout

import (
	"math"
	"regexp"
	"strings"

	"magazinecore/internal/models"
)

// longParagraphWords is the word-count threshold above which a paragraph
// is flagged as "long" for readability scoring.
const longParagraphWords = 100

// ArticleMetrics is derived from one article's body and images; it is
// never persisted, only produced fresh for each decision.
type ArticleMetrics struct {
	WordCount         int
	ParagraphCount    int
	CharCount         int
	HeroImage         *models.Image
	InlineImages      []models.Image
	HasLongParagraphs bool
	EstimatedLines    int
}

var (
	anyTagRe     = regexp.MustCompile(`<[^>]*>`)
	closingPRe   = regexp.MustCompile(`(?i)</p>`)
	pBoundaryRe  = regexp.MustCompile(`(?i)</p>|<p[^>]*>`)
)

// Analyze strips body_html down to its plaintext shape and classifies
// the article's images. It never fails: malformed HTML only affects the
// quality of the lexical scan, not its ability to complete.
func Analyze(article *models.Article, images []models.Image) ArticleMetrics {
	plain := stripTags(article.BodyHTML)
	words := strings.Fields(plain)

	var heroImage *models.Image
	var inlineImages []models.Image
	for i := range images {
		img := images[i]
		switch img.Role {
		case models.ImageRoleHero:
			if heroImage == nil {
				heroImage = &images[i]
			}
		case models.ImageRoleInline:
			inlineImages = append(inlineImages, img)
		}
	}

	return ArticleMetrics{
		WordCount:         len(words),
		ParagraphCount:    len(closingPRe.FindAllString(article.BodyHTML, -1)),
		CharCount:         len(plain),
		HeroImage:         heroImage,
		InlineImages:      inlineImages,
		HasLongParagraphs: hasLongParagraph(article.BodyHTML),
		EstimatedLines:    int(math.Ceil(float64(len(words)) / 10.0)),
	}
}

// stripTags replaces any "<...>" run with a single space and collapses
// whitespace, via a linear lexical scan (regexp, not an HTML parser) —
// tolerant of malformed markup by design.
func stripTags(html string) string {
	replaced := anyTagRe.ReplaceAllString(html, " ")
	return strings.Join(strings.Fields(replaced), " ")
}

// hasLongParagraph partitions body_html on paragraph boundaries
// (</p> and <p ...> tags), strips each partition, and reports whether
// any partition has more than longParagraphWords words.
func hasLongParagraph(bodyHTML string) bool {
	for _, part := range pBoundaryRe.Split(bodyHTML, -1) {
		stripped := stripTags(part)
		if stripped == "" {
			continue
		}
		if len(strings.Fields(stripped)) > longParagraphWords {
			return true
		}
	}
	return false
}

// paragraphTexts returns the plaintext content of each non-empty
// paragraph partition, in document order. Used by the Composer for
// pullquote selection (§4.4), not by the analyzer itself.
func paragraphTexts(bodyHTML string) []string {
	var out []string
	for _, part := range pBoundaryRe.Split(bodyHTML, -1) {
		stripped := stripTags(part)
		if stripped == "" {
			continue
		}
		out = append(out, stripped)
	}
	return out
}

// ParagraphTexts exposes paragraphTexts to the compose package.
func ParagraphTexts(bodyHTML string) []string {
	return paragraphTexts(bodyHTML)
}
