// internal/platform/di/register.go
package di

import (
	"log"
	"net/http"

	"remarket/internal/adapters/in/http/handler"
	"remarket/internal/adapters/in/http/middleware"
	"remarket/internal/adapters/in/http/webhook"
)

// Register mounts every route onto mux.
//
// The /products tree is split by method: reads stay public, writes go
// through bearer auth plus the admin claim. Order and checkout routes
// require bearer auth for every method.
func Register(mux *http.ServeMux, cont *Container) {
	if mux == nil || cont == nil {
		return
	}

	authMW := &middleware.AuthMiddleware{Auth: cont.Infra.FirebaseAuth}
	if cont.Infra.FirebaseAuth == nil {
		log.Printf("[di] WARN: Firebase Auth is nil (protected endpoints will return 503)")
	}

	adminChain := func(h http.Handler) http.Handler {
		return authMW.Handler(middleware.RequireAdmin(h))
	}

	// Catalog: public GET, admin writes.
	productH := handler.NewProductHandler(cont.CatalogQ, cont.ProductUC, cont.BestSellerUC)
	catalogH := splitByMethod(productH, adminChain(productH))
	mux.Handle("/products", catalogH)
	mux.Handle("/products/", catalogH)

	// Cart re-quote: public.
	cartH := handler.NewCartHandler(cont.CartQ)
	mux.Handle("/cart/quote", cartH)

	// Orders: bearer auth; the deliver route additionally checks the
	// admin claim inside the handler.
	orderH := authMW.Handler(handler.NewOrderHandler(cont.OrderUC))
	mux.Handle("/orders", orderH)
	mux.Handle("/orders/", orderH)

	// Checkout: bearer auth.
	checkoutH := authMW.Handler(handler.NewCheckoutHandler(cont.PaymentFlow))
	mux.Handle("/checkout/session", checkoutH)
	mux.Handle("/checkout/session/", checkoutH)

	// Payment webhook: signature-authenticated, no bearer.
	whH := webhook.NewPaymentWebhookHandler(cont.PaymentFlow, cont.Infra.PaymentWebhookSecret)
	mux.Handle("/webhooks/payment", whH)

	log.Printf("[boot] routes registered")
}

// splitByMethod sends safe methods to pub and everything else to adm.
func splitByMethod(pub, adm http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			pub.ServeHTTP(w, r)
		default:
			adm.ServeHTTP(w, r)
		}
	})
}
