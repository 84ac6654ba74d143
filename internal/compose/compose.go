// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package compose assembles one issue's analyzed, scored articles into a
// single self-contained paged-media HTML document: cover, table of
// contents, per-article sections, and a colophon, wrapped in one master
// stylesheet. Compose is pure — it takes values and returns values, the
// same way internal/layout does, so the render job supervisor can call it
// inline between I/O-bound stages.
package compose

import (
	"fmt"
	"html"
	"math"
	"regexp"
	"strings"

	"magazinecore/internal/layout"
	"magazinecore/internal/models"
)

// ArticleDecision bundles one article with everything the analyzer and
// decision engine produced for it, in the order it should be composed.
type ArticleDecision struct {
	Article  *models.Article
	Images   []models.Image
	Metrics  layout.ArticleMetrics
	Decision layout.LayoutDecision
}

// Metadata describes the composed document without re-parsing it.
type Metadata struct {
	PageCount int
	Decisions []layout.LayoutDecision
	Warnings  []string
}

// GeneratedTemplate is the composer's output: a full HTML document, the
// master CSS it embeds inline, and summary metadata about the run.
type GeneratedTemplate struct {
	HTML     string
	CSS      string
	Metadata Metadata
}

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
var closingPRe = regexp.MustCompile(`(?i)</p>`)

// Compose builds the full paged-media document for issue out of articles,
// styled per pack. articles is assumed to already be in the order the
// issue wants them composed (TOC and article sections both follow it).
func Compose(issue *models.Issue, articles []ArticleDecision, pack *models.TemplatePack) (GeneratedTemplate, error) {
	if issue == nil {
		return GeneratedTemplate{}, fmt.Errorf("compose: issue is nil")
	}
	if pack == nil {
		return GeneratedTemplate{}, fmt.Errorf("compose: template pack is nil")
	}

	css := masterCSS(issue, pack)

	var body strings.Builder
	body.WriteString(buildCover(issue, pack))
	toc, warnings := buildTOC(issue, articles)
	body.WriteString(toc)

	decisions := make([]layout.LayoutDecision, 0, len(articles))
	for _, a := range articles {
		body.WriteString(buildArticleSection(a))
		decisions = append(decisions, a.Decision)
		warnings = append(warnings, a.Decision.Warnings...)
	}

	body.WriteString(buildImprint(issue, pack))

	doc := fmt.Sprintf(
		"<!DOCTYPE html>\n<html lang=\"de\">\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n<style>\n%s\n</style>\n</head>\n<body>\n%s\n</body>\n</html>\n",
		html.EscapeString(issue.Title), css, body.String(),
	)

	pageCount := 2 + int(math.Ceil(float64(len(articles))/2.0)) + len(articles)

	return GeneratedTemplate{
		HTML: doc,
		CSS:  css,
		Metadata: Metadata{
			PageCount: pageCount,
			Decisions: decisions,
			Warnings:  warnings,
		},
	}, nil
}

// masterCSS is stable across template packs save for two values in the
// running page margins: the pack's display name in @top-center and the
// issue's publish date in @bottom-left.
func masterCSS(issue *models.Issue, pack *models.TemplatePack) string {
	buildDate := issue.PublishDate.Format("2006-01-02")
	var b strings.Builder

	b.WriteString("*{box-sizing:border-box;margin:0;padding:0}\n")
	b.WriteString("body{font-family:Georgia,'Times New Roman',serif;color:#111}\n")
	fmt.Fprintf(&b, "@page{size:A4;margin:15mm 15mm 20mm 15mm;marks:crop cross;bleed:3mm;"+
		"@top-center{content:\"%s\"}@bottom-center{content:counter(page)}@bottom-left{content:\"%s\"}}\n",
		html.EscapeString(pack.Name), buildDate)
	b.WriteString("@page :first{@top-center{content:none}}\n")

	b.WriteString(".cover{page-break-after:always;height:100vh;display:flex;flex-direction:column;" +
		"justify-content:flex-end;background:linear-gradient(160deg,#1c1c1c,#3a3a3a);color:#fff;padding:40mm 15mm}\n")
	b.WriteString(".cover .issue-title{font-size:48pt;line-height:1.05;font-weight:700}\n")
	b.WriteString(".cover .issue-meta{font-size:12pt;margin-top:8mm;letter-spacing:0.5px;text-transform:uppercase}\n")

	b.WriteString(".toc{page-break-before:always;page-break-after:always}\n")
	b.WriteString(".toc h2{font-size:20pt;margin-bottom:10mm}\n")
	b.WriteString(".toc table{width:100%;border-collapse:collapse}\n")
	b.WriteString(".toc td{padding:2mm 0;border-bottom:1px solid #ccc;font-size:11pt}\n")
	b.WriteString(".toc .toc-section{font-weight:700;text-transform:uppercase;padding-top:6mm}\n")

	b.WriteString("article{page-break-before:always}\n")
	b.WriteString("article .header{margin-bottom:6mm}\n")
	b.WriteString("article .byline{margin-bottom:4mm}\n")
	b.WriteString("figure{margin:4mm 0;break-inside:avoid}\n")
	b.WriteString("figure img{width:100%;object-fit:cover}\n")
	b.WriteString("figure figcaption{font-size:8pt}\n")

	b.WriteString(".imprint{page-break-before:always;font-size:9pt;line-height:1.6}\n")

	b.WriteString("@media screen{body{max-width:210mm;margin:0 auto;box-shadow:0 0 8px rgba(0,0,0,.2)}}\n")

	return b.String()
}

func buildCover(issue *models.Issue, pack *models.TemplatePack) string {
	_ = pack
	return fmt.Sprintf(
		"<section class=\"cover\">\n<div class=\"issue-title\">%s</div>\n<div class=\"issue-meta\">Ausgabe %s &middot; %s</div>\n</section>\n",
		html.EscapeString(issue.Title), html.EscapeString(issue.ID), html.EscapeString(issue.PublishDate.Format("2 January 2006")),
	)
}

// buildTOC groups articles by section in Issue.Sections order, articles
// within a section in insertion order, with a best-effort running page
// number starting at 3 and incrementing by 1 per article. Any article
// whose Section doesn't match a declared Issue.Sections entry is a
// SectionMismatch: it is still included, grouped under its own section
// label (its literal Section value) after the declared sections, and
// reported back as a warning rather than dropped.
func buildTOC(issue *models.Issue, articles []ArticleDecision) (string, []string) {
	var b strings.Builder
	b.WriteString("<section class=\"toc\">\n<h2>Contents</h2>\n<table>\n")

	declared := make(map[string]bool, len(issue.Sections))
	for _, section := range issue.Sections {
		declared[section] = true
	}

	page := 3
	var warnings []string
	writeSection := func(label string, section string) {
		wroteHeader := false
		for _, a := range articles {
			if a.Article.Section != section {
				continue
			}
			if !wroteHeader {
				fmt.Fprintf(&b, "<tr><td class=\"toc-section\" colspan=\"3\">%s</td></tr>\n", html.EscapeString(label))
				wroteHeader = true
			}
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%d</td></tr>\n",
				html.EscapeString(a.Article.Title), html.EscapeString(a.Article.Author), page)
			page++
		}
	}

	for _, section := range issue.Sections {
		writeSection(section, section)
	}

	orphanSeen := make(map[string]bool)
	for _, a := range articles {
		section := a.Article.Section
		if declared[section] || orphanSeen[section] {
			continue
		}
		orphanSeen[section] = true
		writeSection(section, section)
		warnings = append(warnings, fmt.Sprintf(
			"SectionMismatch: article %s declares section %q, not in issue sections; grouped under its own name",
			a.Article.ArticleID, section,
		))
	}

	b.WriteString("</table>\n</section>\n")
	return b.String(), warnings
}

func buildArticleSection(a ArticleDecision) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<article id=\"%s\">\n<style>\n%s</style>\n", html.EscapeString(a.Article.ArticleID), layout.EmitArticleCSS(a.Decision))

	if a.Metrics.HeroImage != nil {
		b.WriteString(renderFigure(*a.Metrics.HeroImage, "hero-image"))
	}

	b.WriteString("<div class=\"header\">\n")
	fmt.Fprintf(&b, "<h1 class=\"headline\">%s</h1>\n", html.EscapeString(a.Article.Title))
	if a.Article.Dek != nil {
		fmt.Fprintf(&b, "<p class=\"dek\">%s</p>\n", html.EscapeString(*a.Article.Dek))
	}
	fmt.Fprintf(&b, "<p class=\"byline\">%s</p>\n", html.EscapeString(a.Article.Author))
	b.WriteString("</div>\n")

	b.WriteString("<div class=\"body\">\n")
	b.WriteString(composeBody(a))
	b.WriteString("</div>\n")

	b.WriteString("</article>\n")
	return b.String()
}

// composeBody interleaves inline images and an optional pullquote into
// the article's raw body HTML, per §4.4's placement formulas. body_html
// content itself is emitted raw: only metadata strings (titles,
// captions, credits) are escaped.
func composeBody(a ArticleDecision) string {
	paragraphs := splitParagraphs(a.Article.BodyHTML)
	if len(paragraphs) == 0 {
		return a.Article.BodyHTML
	}

	inserts := make(map[int]string)

	n := len(a.Metrics.InlineImages)
	total := len(paragraphs)
	for i, img := range a.Metrics.InlineImages {
		pos := int(math.Floor(float64(total) * float64(i+1) / float64(n+1)))
		pos = clampIndex(pos, total)
		inserts[pos] += renderFigure(img, "")
	}

	if a.Decision.PullquoteAllowed {
		if quote := selectPullquote(a.Article.BodyHTML); quote != "" {
			idx := clampIndex(total/2, total)
			inserts[idx] += fmt.Sprintf("<blockquote class=\"pullquote\">%s</blockquote>\n", html.EscapeString(quote))
		}
	}

	var b strings.Builder
	for i, para := range paragraphs {
		b.WriteString(para)
		if extra, ok := inserts[i]; ok {
			b.WriteString(extra)
		}
	}
	return b.String()
}

// splitParagraphs breaks body HTML into chunks terminated by each
// closing </p>, preserving markup, plus any trailing remainder.
func splitParagraphs(bodyHTML string) []string {
	locs := closingPRe.FindAllStringIndex(bodyHTML, -1)
	if locs == nil {
		return nil
	}

	var out []string
	start := 0
	for _, loc := range locs {
		out = append(out, bodyHTML[start:loc[1]])
		start = loc[1]
	}
	if rest := strings.TrimSpace(bodyHTML[start:]); rest != "" {
		out = append(out, bodyHTML[start:])
	}
	return out
}

// selectPullquote scans the article's plaintext sentences and returns
// the first one whose length sits in [40,120] characters, or "" if none
// qualify.
func selectPullquote(bodyHTML string) string {
	plain := strings.Join(layout.ParagraphTexts(bodyHTML), " ")
	for _, sentence := range sentenceSplitRe.Split(plain, -1) {
		s := strings.TrimSpace(sentence)
		if len(s) >= 40 && len(s) <= 120 {
			return s
		}
	}
	return ""
}

func clampIndex(idx, total int) int {
	if total == 0 {
		return 0
	}
	if idx < 0 {
		return 0
	}
	if idx >= total {
		return total - 1
	}
	return idx
}

func renderFigure(img models.Image, extraClass string) string {
	class := "inline-image"
	if extraClass != "" {
		class = extraClass
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<figure class=\"%s\">\n<img src=\"%s\" alt=\"\">\n", class, html.EscapeString(img.SourceURL))
	if img.Caption != nil {
		fmt.Fprintf(&b, "<figcaption class=\"caption\">%s", html.EscapeString(*img.Caption))
		if img.Credit != nil {
			fmt.Fprintf(&b, " <span class=\"credit\">%s</span>", html.EscapeString(*img.Credit))
		}
		b.WriteString("</figcaption>\n")
	} else if img.Credit != nil {
		fmt.Fprintf(&b, "<figcaption class=\"credit\">%s</figcaption>\n", html.EscapeString(*img.Credit))
	}
	b.WriteString("</figure>\n")
	return b.String()
}

func buildImprint(issue *models.Issue, pack *models.TemplatePack) string {
	return fmt.Sprintf(
		"<section class=\"imprint\">\n<p>%s &mdash; %s</p>\n<p>Template: %s v%d</p>\n"+
			"<p>&copy; %d. All rights reserved.</p>\n</section>\n",
		html.EscapeString(issue.Title), html.EscapeString(issue.PublishDate.Format("2 January 2006")),
		html.EscapeString(pack.Name), pack.Version, issue.PublishDate.Year(),
	)
}
