// Package router sets up all HTTP routes and middleware chains for the
// storefront. It organizes routes into public, JSON API and admin groups
// with appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/handlers"
	"storefront/internal/i18n"
	"storefront/internal/middleware"
	"storefront/internal/session"
	"storefront/web"
)

// Options carries the handler groups and settings the routes are built from.
type Options struct {
	Sessions *session.Store
	Admin    *handlers.Admin
	Auth     *handlers.Auth
	Public   *handlers.Public
	API      *handlers.API

	// Uploads serves /uploads/*. Nil when files live in an S3 bucket.
	Uploads http.Handler

	OrderLimiter *middleware.RateLimiter
	LoginLimiter *middleware.RateLimiter

	DefaultLocale i18n.Locale
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(o Options) chi.Router {
	r := chi.NewRouter()
	csrf := middleware.NewCSRF(o.SecureCookies)

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(o.SecureCookies))
	r.Use(middleware.Locale(o.DefaultLocale))
	r.Use(middleware.LoadSession(o.Sessions))

	// Health check, no auth, no CSRF.
	r.Get("/health", healthHandler)

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic(err) // the embed directive guarantees the directory
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	if o.Uploads != nil {
		r.Get("/uploads/*", o.Uploads.ServeHTTP)
	}

	// JSON API. Session gates run before CSRF so anonymous callers get a
	// 401 rather than a token error.
	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", o.API.ListCategories)
		r.Get("/categories/{id}/products", o.API.CategoryProducts)
		r.With(o.OrderLimiter.Middleware).Post("/orders", o.API.CreateOrder)

		// Admins and authors.
		r.Group(func(r chi.Router) {
			r.Use(middleware.APIUser)
			r.Use(csrf)
			r.Get("/posts", o.API.ListPosts)
			r.Post("/posts", o.API.CreatePost)
			r.Put("/posts/{id}", o.API.UpdatePost)
			r.Delete("/posts/{id}", o.API.DeletePost)
			r.Post("/upload", o.API.Upload)
		})

		// Admins only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.APIAdmin)
			r.Use(csrf)

			r.Get("/categories/picker", o.API.CategoryPicker)
			r.Post("/categories", o.API.CreateCategory)
			r.Put("/categories/{id}", o.API.UpdateCategory)
			r.Delete("/categories/{id}", o.API.DeleteCategory)
			r.Put("/categories/{id}/products", o.API.ReorderCategoryProducts)

			r.Get("/products", o.API.ListProducts)
			r.Post("/products", o.API.CreateProduct)
			r.Get("/products/{id}", o.API.GetProduct)
			r.Put("/products/{id}", o.API.UpdateProduct)
			r.Delete("/products/{id}", o.API.DeleteProduct)
			r.Post("/products/{id}/images", o.API.AddImage)
			r.Put("/products/{id}/images/{imageID}/thumbnail", o.API.SetThumbnail)
			r.Delete("/products/{id}/images/{imageID}", o.API.DeleteImage)

			r.Get("/orders", o.API.ListOrders)
			r.Put("/orders/{id}/seen", o.API.SetOrderSeen)
		})
	})

	// Admin pages, CSRF protected throughout.
	r.Route("/admin", func(r chi.Router) {
		r.Use(csrf)

		// Auth pages, reachable without a session.
		r.Get("/login", o.Auth.LoginPage)
		r.With(o.LoginLimiter.Middleware).Post("/login", o.Auth.LoginSubmit)
		r.Post("/logout", o.Auth.Logout)

		// 2FA requires a session but not a completed second factor.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa", o.Auth.TwoFAPage)
			r.With(o.LoginLimiter.Middleware).Post("/2fa", o.Auth.TwoFASubmit)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/", o.Admin.Dashboard)

			// Posts, for admins and authors.
			r.Route("/posts", func(r chi.Router) {
				r.Get("/", o.Admin.PostsList)
				r.Get("/new", o.Admin.PostNew)
				r.Post("/", o.Admin.PostCreate)
				r.Get("/{id}/edit", o.Admin.PostEdit)
				r.Post("/{id}", o.Admin.PostUpdate)
				r.Post("/{id}/delete", o.Admin.PostDelete)
			})

			// Catalog and orders, admin only.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Route("/categories", func(r chi.Router) {
					r.Get("/", o.Admin.CategoriesList)
					r.Get("/new", o.Admin.CategoryNew)
					r.Post("/", o.Admin.CategoryCreate)
					r.Get("/{id}/edit", o.Admin.CategoryEdit)
					r.Get("/{id}/reorder", o.Admin.CategoryReorder)
					r.Post("/{id}", o.Admin.CategoryUpdate)
					r.Post("/{id}/delete", o.Admin.CategoryDelete)
				})

				r.Route("/products", func(r chi.Router) {
					r.Get("/", o.Admin.ProductsList)
					r.Get("/new", o.Admin.ProductNew)
					r.Post("/", o.Admin.ProductCreate)
					r.Get("/{id}/edit", o.Admin.ProductEdit)
					r.Post("/{id}", o.Admin.ProductUpdate)
					r.Post("/{id}/delete", o.Admin.ProductDelete)
				})

				r.Get("/orders", o.Admin.OrdersList)
				r.Post("/orders/{id}/seen", o.Admin.OrderSeen)
			})
		})
	})

	// Storefront. Pages are cached, so none of these see the CSRF token.
	r.Get("/", o.Public.Home)
	r.Get("/category/{slug}", o.Public.Category)
	r.Get("/products/{slug}", o.Public.Product)
	r.Get("/sold", o.Public.Sold)
	r.Get("/blog/{slug}", o.Public.Post)
	r.Post("/lang", o.Public.SetLang)
	r.NotFound(o.Public.NotFound)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
