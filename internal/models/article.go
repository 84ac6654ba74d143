// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// ArticleType classifies an article for layout and editorial purposes.
type ArticleType string

const (
	ArticleTypeFeature    ArticleType = "feature"
	ArticleTypeArticle    ArticleType = "article"
	ArticleTypeReportage  ArticleType = "reportage"
	ArticleTypeNews       ArticleType = "news"
	ArticleTypeEditorial  ArticleType = "editorial"
)

// BodyFormat tells the layout core whether Article.BodyHTML must be
// converted from Markdown before it is analyzed and composed. Intake
// normally supplies constrained HTML directly (BodyFormatHTML); some
// older import pipelines hand over Markdown source instead.
type BodyFormat string

const (
	BodyFormatHTML     BodyFormat = "html"
	BodyFormatMarkdown BodyFormat = "markdown"
)

// Article is one piece of content inside an Issue. Section MUST match one
// of the owning Issue's declared section names (violations are treated as
// a composition warning, not a load-time failure — see SectionMismatch).
type Article struct {
	ID         string
	IssueID    string
	ArticleID  string // human slug, unique within the issue
	Section    string
	Type       ArticleType
	Title      string
	Dek        *string
	Author     string
	BodyHTML   string
	BodyFormat BodyFormat
	CreatedAt  time.Time
}
