// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"

	"storefront/internal/i18n"
)

// Locale resolves the UI language from the lang cookie and the
// Accept-Language header and stores it in the request context.
func Locale(fallback i18n.Locale) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var cookie string
			if c, err := r.Cookie(i18n.CookieName); err == nil {
				cookie = c.Value
			}
			loc := i18n.Negotiate(cookie, r.Header.Get("Accept-Language"), fallback)
			w.Header().Set("Content-Language", string(loc))
			w.Header().Add("Vary", "Accept-Language")
			next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), loc)))
		})
	}
}

// WithLocale returns ctx carrying loc.
func WithLocale(ctx context.Context, loc i18n.Locale) context.Context {
	return context.WithValue(ctx, localeKey, loc)
}

// LocaleFromCtx returns the request locale, Slovak when none was set.
func LocaleFromCtx(ctx context.Context) i18n.Locale {
	if loc, ok := ctx.Value(localeKey).(i18n.Locale); ok {
		return loc
	}
	return i18n.SK
}
