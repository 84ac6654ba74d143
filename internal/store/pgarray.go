// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// pgTextArray and pgTextArrayScan bridge Go []string to Postgres TEXT[]
// columns over database/sql. pgx's stdlib driver does not auto-convert
// []string the way lib/pq's pq.Array does, so sections and warnings are
// encoded/decoded through the standard {a,b,c} array literal format here.

type textArrayValue []string

func (a textArrayValue) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	quoted := make([]string, len(a))
	for i, s := range a {
		quoted[i] = quoteArrayElement(s)
	}
	return "{" + strings.Join(quoted, ",") + "}", nil
}

func pgTextArray(s []string) driver.Valuer {
	return textArrayValue(s)
}

type textArrayScanner struct {
	dst *[]string
}

func pgTextArrayScan(dst *[]string) *textArrayScanner {
	return &textArrayScanner{dst: dst}
}

func (s *textArrayScanner) Scan(src any) error {
	if src == nil {
		*s.dst = nil
		return nil
	}
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("pgarray: unsupported scan source %T", src)
	}
	*s.dst = parseArrayLiteral(raw)
	return nil
}

func quoteArrayElement(s string) string {
	if s == "" || strings.ContainsAny(s, `,"{}\ `) {
		escaped := strings.ReplaceAll(s, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `"`, `\"`)
		return `"` + escaped + `"`
	}
	return s
}

// parseArrayLiteral decodes a Postgres {a,"b,c",d} array literal. It handles
// quoted elements with backslash escapes but not nested arrays.
func parseArrayLiteral(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "{")
	raw = strings.TrimSuffix(raw, "}")
	if raw == "" {
		return []string{}
	}

	var result []string
	var current strings.Builder
	inQuotes := false
	escaped := false

	for _, r := range raw {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			result = append(result, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	result = append(result, current.String())
	return result
}
