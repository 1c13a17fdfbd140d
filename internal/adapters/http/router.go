package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func NewRouter(handler *Handler, logger *slog.Logger, ready func() bool) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(logger))
	r.Use(loggingMiddleware(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if ready != nil && !ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Route("/ledger", func(r chi.Router) {
			r.Post("/deposits", handler.deposit)
			r.Post("/withdrawals", handler.withdraw)
			r.Get("/balances/{account}", handler.getBalance)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", handler.createPayment)
			r.Get("/{paymentID}", handler.getPayment)
		})

		r.Route("/escrows", func(r chi.Router) {
			r.Post("/", handler.createEscrow)
			r.Post("/{paymentID}/release", handler.releaseEscrow)
			r.Post("/{paymentID}/refund", handler.refundEscrow)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Post("/", handler.createSubscription)
			r.Get("/{subscriptionID}", handler.getSubscription)
			r.Post("/{subscriptionID}/charge", handler.chargeSubscription)
			r.Post("/{subscriptionID}/cancel", handler.cancelSubscription)
		})

		r.Route("/platform", func(r chi.Router) {
			r.Get("/stats", handler.platformStats)
			r.Get("/fee", handler.quoteFee)
			r.Get("/time", handler.currentTime)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Put("/fee-rate", handler.setFeeRate)
			r.Put("/min-payment", handler.setMinPayment)
			r.Post("/clock/advance", handler.advanceClock)
		})
	})

	return r
}
