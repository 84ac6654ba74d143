// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// TemplatePack and its Variant/RuleSet members are modeled as closed
// records with optional fields, rather than the free-form maps the
// original admin-route-mutated pack storage used. A pack is loaded once
// per job as an immutable value (see internal/packs) — is_active is a
// write to the repository, never a mutation of an in-memory pack.
package models

import (
	"encoding/json"
	"fmt"
)

// HeroBounds gives the vertical-percentage range a hero image may occupy.
type HeroBounds struct {
	MinVH float64 `json:"min_vh" yaml:"min_vh"`
	MaxVH float64 `json:"max_vh" yaml:"max_vh"`
}

// BodyBounds gives the font-size and leading range for body text. On the
// wire (YAML pack files, JSONB columns) leading is a 2-element [lo, hi]
// array rather than two named fields, hence the custom (un)marshalers.
type BodyBounds struct {
	FontMin   float64
	FontMax   float64
	LeadingLo float64
	LeadingHi float64
}

type bodyBoundsWire struct {
	FontMin float64    `json:"font_min" yaml:"font_min"`
	FontMax float64    `json:"font_max" yaml:"font_max"`
	Leading [2]float64 `json:"leading" yaml:"leading"`
}

func (b BodyBounds) MarshalJSON() ([]byte, error) {
	return json.Marshal(bodyBoundsWire{
		FontMin: b.FontMin, FontMax: b.FontMax,
		Leading: [2]float64{b.LeadingLo, b.LeadingHi},
	})
}

func (b *BodyBounds) UnmarshalJSON(data []byte) error {
	var w bodyBoundsWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("unmarshal body bounds: %w", err)
	}
	b.FontMin, b.FontMax = w.FontMin, w.FontMax
	b.LeadingLo, b.LeadingHi = w.Leading[0], w.Leading[1]
	return nil
}

func (b BodyBounds) MarshalYAML() (any, error) {
	return bodyBoundsWire{
		FontMin: b.FontMin, FontMax: b.FontMax,
		Leading: [2]float64{b.LeadingLo, b.LeadingHi},
	}, nil
}

func (b *BodyBounds) UnmarshalYAML(unmarshal func(any) error) error {
	var w bodyBoundsWire
	if err := unmarshal(&w); err != nil {
		return fmt.Errorf("unmarshal body bounds: %w", err)
	}
	b.FontMin, b.FontMax = w.FontMin, w.FontMax
	b.LeadingLo, b.LeadingHi = w.Leading[0], w.Leading[1]
	return nil
}

// PullquotePolicy controls whether a variant allows a lifted pullquote
// and the minimum paragraph count required to be eligible.
type PullquotePolicy struct {
	Allow        bool `json:"allow" yaml:"allow"`
	MinParagraph int  `json:"min_paragraph" yaml:"min_paragraph"`
}

// Variant is one named layout recipe within a TemplatePack. Hero, Body,
// and Pullquote are optional; omitted fields fall back to the pack's
// RuleSet clamps.
type Variant struct {
	ID        string           `json:"id" yaml:"id"`
	Columns   int              `json:"columns" yaml:"columns"`
	Hero      *HeroBounds      `json:"hero,omitempty" yaml:"hero,omitempty"`
	Body      *BodyBounds      `json:"body,omitempty" yaml:"body,omitempty"`
	Pullquote *PullquotePolicy `json:"pullquote,omitempty" yaml:"pullquote,omitempty"`
}

// TypographyRules are pack-wide clamps used whenever a variant omits a
// typography field.
type TypographyRules struct {
	FontMin       float64 `json:"font_min" yaml:"font_min"`
	FontMax       float64 `json:"font_max" yaml:"font_max"`
	LineHeightMin float64 `json:"line_height_min" yaml:"line_height_min"`
	LineHeightMax float64 `json:"line_height_max" yaml:"line_height_max"`
}

// LayoutRules are pack-wide clamps on column count and article length.
type LayoutRules struct {
	MaxColumns    int `json:"max_columns" yaml:"max_columns"`
	MinTextLength int `json:"min_text_length" yaml:"min_text_length"`
	MaxTextLength int `json:"max_text_length" yaml:"max_text_length"`
}

// ImageRules are pack-wide clamps on image usage.
type ImageRules struct {
	HeroRequiredWords  int `json:"hero_required_words" yaml:"hero_required_words"`
	MaxImagesPerColumn int `json:"max_images_per_column" yaml:"max_images_per_column"`
}

// RuleSet is the pack-wide fallback used whenever a Variant omits a field.
type RuleSet struct {
	Typography TypographyRules `json:"typography" yaml:"typography"`
	Layout     LayoutRules     `json:"layout" yaml:"layout"`
	Images     ImageRules      `json:"images" yaml:"images"`
}

// TemplatePack is the bundle of variants and rules that defines one
// visual identity. Variants and the rule set have no identity outside
// their owning pack.
type TemplatePack struct {
	ID       string
	Name     string
	Version  int
	IsActive bool
	Variants []Variant `json:"variants" yaml:"variants"`
	Rules    RuleSet   `json:"rules" yaml:"rules"`
}

// BodyBoundsOrDefault returns v.Body, or a BodyBounds built from the
// pack's typography rules when v.Body is nil.
func (v Variant) BodyBoundsOrDefault(rules RuleSet) BodyBounds {
	if v.Body != nil {
		return *v.Body
	}
	return BodyBounds{
		FontMin:   rules.Typography.FontMin,
		FontMax:   rules.Typography.FontMax,
		LeadingLo: rules.Typography.LineHeightMin,
		LeadingHi: rules.Typography.LineHeightMax,
	}
}
