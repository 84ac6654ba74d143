// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package layout

import (
	"fmt"
	"math"

	"magazinecore/internal/models"
)

// LayoutDecision is the scored outcome of evaluating one article against
// a template pack's variants: the chosen variant plus every derived
// numeric parameter needed to compose and style the article.
type LayoutDecision struct {
	VariantID    string
	Columns      int
	FontSize     float64 // pt, 1 decimal
	LineHeight   float64 // unitless, 2 decimals
	HeroHeightVH *float64
	Score        float64
	Warnings     []string

	// PullquoteAllowed mirrors the winning variant's pullquote policy so
	// the composer and CSS emitter don't need the original Variant.
	PullquoteAllowed bool
}

const (
	fallbackVariantID = "fallback-single-column"
	fallbackScore      = 50
	fallbackColumns     = 1
	overflowHeightLimit = 1000.0
)

// Decide scores every variant against metrics and returns the
// highest-scoring candidate. Ties are broken by earlier position in
// variants. An empty variant list returns the documented fallback
// decision instead of scoring anything.
func Decide(metrics ArticleMetrics, variants []models.Variant, rules models.RuleSet) LayoutDecision {
	if len(variants) == 0 {
		return fallbackDecision(rules)
	}

	var best LayoutDecision
	var bestSet bool

	for _, v := range variants {
		candidate := scoreVariant(v, metrics, rules)
		if !bestSet || candidate.Score > best.Score {
			best = candidate
			bestSet = true
		}
	}

	return best
}

// scoreVariant evaluates one variant, starting from a base score of 100
// and applying the fixed additive adjustments in spec order.
func scoreVariant(v models.Variant, metrics ArticleMetrics, rules models.RuleSet) LayoutDecision {
	score := 100.0
	var warnings []string

	columns := v.Columns
	bounds := v.BodyBoundsOrDefault(rules)

	font := optimizeFont(bounds, metrics.WordCount, columns)
	leading := optimizeLeading(bounds, font)

	w := metrics.WordCount
	optimalCols := optimalColumns(w)

	// Column fit.
	if columns > optimalCols {
		score -= 15
		warnings = append(warnings, fmt.Sprintf("%d columns may be too many for %d words", columns, w))
	}

	heroRequired := rules.Images.HeroRequiredWords
	hasHero := v.Hero != nil
	hasHeroImage := metrics.HeroImage != nil

	switch {
	case hasHero && hasHeroImage && w >= heroRequired:
		// Hero present & long article.
		score += 10
	case hasHero && hasHeroImage && w < heroRequired:
		// Hero present & short article.
		score -= 5
	case hasHero && !hasHeroImage && w > heroRequired:
		// Hero missing on long article.
		score -= 20
		warnings = append(warnings, "Long article would benefit from hero image")
	}

	// Font at floor / ceiling.
	if font <= bounds.FontMin {
		score -= 25
		warnings = append(warnings, "Font size at minimum limit")
	} else if font >= bounds.FontMax {
		score -= 10
		warnings = append(warnings, "Font size at maximum limit")
	}

	// Overflow risk.
	linesPerColumn := math.Ceil(float64(metrics.EstimatedLines) / float64(columns))
	columnHeight := font * leading * 1.33 * linesPerColumn
	if columnHeight > overflowHeightLimit {
		score -= 30
		warnings = append(warnings, "Text may overflow page boundaries")
	}

	// Image density.
	if len(metrics.InlineImages) > columns*rules.Images.MaxImagesPerColumn {
		score -= 15
		warnings = append(warnings, "Too many images for column layout")
	}

	// Long paragraphs in narrow columns.
	if metrics.HasLongParagraphs && columns > 2 {
		score -= 10
		warnings = append(warnings, "Long paragraphs in narrow columns may affect readability")
	}

	// Pullquote eligible.
	if v.Pullquote != nil && v.Pullquote.Allow && metrics.ParagraphCount >= v.Pullquote.MinParagraph {
		score += 5
	}

	var heroHeight *float64
	if hasHero && hasHeroImage {
		h := v.Hero.MinVH
		if w >= heroRequired {
			h = v.Hero.MaxVH
		}
		heroHeight = &h
	}

	if score < 0 {
		score = 0
	}

	return LayoutDecision{
		VariantID:        v.ID,
		Columns:          columns,
		FontSize:         font,
		LineHeight:       leading,
		HeroHeightVH:     heroHeight,
		Score:            score,
		Warnings:         warnings,
		PullquoteAllowed: v.Pullquote != nil && v.Pullquote.Allow,
	}
}

// optimalColumns implements optimal_columns(metrics) from §4.2.
func optimalColumns(wordCount int) int {
	switch {
	case wordCount < 200:
		return 1
	case wordCount < 500:
		return 2
	default:
		return 3
	}
}

// optimizeFont computes the body font size for one variant candidate.
func optimizeFont(bounds models.BodyBounds, wordCount, columns int) float64 {
	lo, hi := bounds.FontMin, bounds.FontMax

	var font float64
	switch {
	case wordCount < 300:
		font = lo + 0.5
	case wordCount > 800:
		font = hi - 0.3
	default:
		font = lo + 0.2
	}

	if columns > 2 {
		font = math.Max(lo, font-0.2)
	}

	return round1(font)
}

// optimizeLeading interpolates line-height between the variant's leading
// bounds proportionally to where font sits between FontMin and FontMax.
func optimizeLeading(bounds models.BodyBounds, font float64) float64 {
	lo, hi := bounds.FontMin, bounds.FontMax
	var t float64
	if hi != lo {
		t = (font - lo) / (hi - lo)
	}
	leading := bounds.LeadingLo + t*(bounds.LeadingHi-bounds.LeadingLo)
	return round2(leading)
}

// fallbackDecision is returned when no variants are available to score.
func fallbackDecision(rules models.RuleSet) LayoutDecision {
	return LayoutDecision{
		VariantID:  fallbackVariantID,
		Columns:    min(fallbackColumns, 2),
		FontSize:   rules.Typography.FontMin,
		LineHeight: rules.Typography.LineHeightMin,
		Score:      fallbackScore,
		Warnings:   []string{"Using fallback layout decision"},
	}
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }
func round2(f float64) float64 { return math.Round(f*100) / 100 }

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
