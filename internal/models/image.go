// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// ImageRole determines how an image is placed in the composed document.
type ImageRole string

const (
	ImageRoleHero    ImageRole = "hero"
	ImageRoleInline  ImageRole = "inline"
	ImageRoleGallery ImageRole = "gallery"
)

// FocalPoint is a normalized (x, y) crop anchor in [0,1]x[0,1], parsed
// once at intake from a "x,y" string (see REDESIGN FLAGS).
type FocalPoint struct {
	X float64
	Y float64
}

// Image belongs to exactly one Article and is deleted transitively with it.
type Image struct {
	ID         string
	ArticleID  string
	SourceURL  string
	Role       ImageRole
	Caption    *string
	Credit     *string
	FocalPoint FocalPoint
	WidthPx    *int
	HeightPx   *int
	DPI        *float64
}
