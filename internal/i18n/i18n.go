// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package i18n provides the Slovak and English UI strings, locale
// negotiation and price formatting.
package i18n

import (
	"fmt"
	"regexp"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale is a supported UI language.
type Locale string

const (
	SK Locale = "sk"
	EN Locale = "en"
)

// CookieName is the cookie that stores the visitor's chosen locale.
const CookieName = "lang"

var (
	supported = []language.Tag{language.Slovak, language.English}
	matcher   = language.NewMatcher(supported)
)

// Parse returns the locale for s, or false when s is not supported.
func Parse(s string) (Locale, bool) {
	switch Locale(s) {
	case SK, EN:
		return Locale(s), true
	}
	return "", false
}

// Negotiate picks the locale for a request: the cookie value when valid,
// else the best Accept-Language match, else fallback.
func Negotiate(cookie, acceptLanguage string, fallback Locale) Locale {
	if loc, ok := Parse(cookie); ok {
		return loc
	}
	if acceptLanguage == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return localeOf(supported[idx])
}

func localeOf(tag language.Tag) Locale {
	if tag == language.English {
		return EN
	}
	return SK
}

func (l Locale) tag() language.Tag {
	if l == EN {
		return language.English
	}
	return language.Slovak
}

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// T looks up key in the locale's messages and fills {name} placeholders
// from params. Unknown keys are returned as is; unknown placeholders are
// left in place.
func T(loc Locale, key string, params map[string]any) string {
	msgs, ok := catalogs[loc]
	if !ok {
		msgs = catalogs[SK]
	}
	text, ok := msgs[key]
	if !ok {
		return key
	}
	if len(params) == 0 {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := params[name]; ok {
			return fmt.Sprint(v)
		}
		return m
	})
}

// Translator returns a T bound to loc, taking alternating name/value
// params, for use from templates.
func Translator(loc Locale) func(key string, kv ...any) string {
	return func(key string, kv ...any) string {
		var params map[string]any
		if len(kv) > 1 {
			params = make(map[string]any, len(kv)/2)
			for i := 0; i+1 < len(kv); i += 2 {
				if name, ok := kv[i].(string); ok {
					params[name] = kv[i+1]
				}
			}
		}
		return T(loc, key, params)
	}
}

// FormatPrice renders a price in euro cents the way the locale writes it:
// "€12.50" in English, "12,50 €" in Slovak.
func FormatPrice(loc Locale, cents int) string {
	p := message.NewPrinter(loc.tag())
	amount := float64(cents) / 100
	if loc == EN {
		return p.Sprintf("€%.2f", amount)
	}
	return p.Sprintf("%.2f €", amount)
}
