// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package layout

import (
	"fmt"
	"math"
	"strings"
)

// EmitArticleCSS produces a standalone CSS fragment scoped to one
// <article> container, deriving every numeric value from decision.F
// (decision.FontSize). It is pure and deterministic: the same decision
// always yields byte-identical CSS.
func EmitArticleCSS(decision LayoutDecision) string {
	f := decision.FontSize

	var b strings.Builder

	fmt.Fprintf(&b, "article .headline{font-size:%dpt;line-height:1.2;column-span:all;break-after:avoid}\n", round0(f*2.8))
	fmt.Fprintf(&b, "article .dek{font-size:%dpt;line-height:1.4;column-span:all}\n", round0(f*1.2))
	fmt.Fprintf(&b, "article .byline{font-size:%dpt;text-transform:uppercase;letter-spacing:0.5px}\n", round0(f*0.9))

	fmt.Fprintf(&b, "article .body{font-size:%.1fpt;line-height:%.2f;column-count:%d;column-gap:24px;column-fill:balance;hyphens:auto;orphans:2;widows:2}\n",
		f, decision.LineHeight, decision.Columns)

	fmt.Fprintf(&b, "article .body p:first-of-type::first-letter{font-size:%dpt;float:left}\n", round0(f*3.5))
	fmt.Fprintf(&b, "article .body p{margin-bottom:%dpt;break-inside:avoid-column}\n", round0(f*0.8))

	if decision.HeroHeightVH != nil {
		fmt.Fprintf(&b, "article .hero-image{height:%.0fvh;column-span:all;break-after:avoid}\n", *decision.HeroHeightVH)
	}

	if decision.PullquoteAllowed {
		span := "all"
		if decision.Columns > 2 {
			span = "2"
		}
		fmt.Fprintf(&b, "article .pullquote{font-size:%dpt;column-span:%s;break-inside:avoid}\n", round0(f*1.4), span)
	}

	fmt.Fprintf(&b, "article .caption{font-size:%dpt;font-style:italic}\n", round0(f*0.85))
	fmt.Fprintf(&b, "article .credit{font-size:%dpt;text-transform:uppercase}\n", round0(f*0.75))

	return b.String()
}

func round0(f float64) int {
	return int(math.Round(f))
}
