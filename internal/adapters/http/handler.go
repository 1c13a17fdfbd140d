package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/application"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/contracts"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
)

type Handler struct {
	svc *application.Service
}

func NewHandler(svc *application.Service) *Handler {
	return &Handler{svc: svc}
}

func decode(r *http.Request, dst any) bool {
	return json.NewDecoder(r.Body).Decode(dst) == nil
}

func pathID(r *http.Request, name string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

func toBalanceResponse(b domain.Balance) contracts.BalanceResponse {
	return contracts.BalanceResponse{
		Account:       b.Account,
		Available:     b.Available,
		Locked:        b.Locked,
		TotalSent:     b.TotalSent,
		TotalReceived: b.TotalReceived,
	}
}

func toPaymentResponse(p domain.Payment, escrow *domain.Escrow) contracts.PaymentResponse {
	resp := contracts.PaymentResponse{
		PaymentID: p.PaymentID,
		Sender:    p.Sender,
		Recipient: p.Recipient,
		Amount:    p.Amount,
		Fee:       p.Fee,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		ExpiresAt: p.ExpiresAt,
		Memo:      p.Memo,
	}
	if escrow != nil {
		resp.Escrow = &contracts.EscrowResponse{
			Arbiter:         escrow.Arbiter,
			Released:        escrow.Released,
			DisputeDeadline: escrow.DisputeDeadline,
		}
	}
	return resp
}

func toSubscriptionResponse(s domain.Subscription) contracts.SubscriptionResponse {
	return contracts.SubscriptionResponse{
		SubscriptionID: s.SubscriptionID,
		Payer:          s.Payer,
		Payee:          s.Payee,
		Amount:         s.Amount,
		Interval:       s.Interval,
		LastPayment:    s.LastPayment,
		Active:         s.Active,
		PaymentsMade:   s.PaymentsMade,
	}
}

func toPlatformStatsResponse(p domain.Platform) contracts.PlatformStatsResponse {
	return contracts.PlatformStatsResponse{
		FeeRateBps:       p.FeeRateBps,
		MinPaymentAmount: p.MinPaymentAmount,
		TotalVolume:      p.TotalVolume,
		PaymentCounter:   p.PaymentCounter,
		LogicalClock:     p.LogicalClock,
	}
}

func (h *Handler) deposit(w http.ResponseWriter, r *http.Request) {
	var req contracts.DepositRequest
	if !decode(r, &req) {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return
	}
	balance, err := h.svc.Deposit(r.Context(), actorFrom(r.Context()), application.DepositInput{Amount: req.Amount})
	if err != nil {
		mapDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toBalanceResponse(balance))
}

func (h *Handler) withdraw(w http.ResponseWriter, r *http.Request) {
	var req contracts.WithdrawRequest
	if !decode(r, &req) {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return
	}
	balance, err := h.svc.Withdraw(r.Context(), actorFrom(r.Context()), application.WithdrawInput{Amount: req.Amount})
	if err != nil {
		mapDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toBalanceResponse(balance))
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	balance, err := h.svc.GetBalance(r.Context(), actorFrom(r.Context()), account)
	if err != nil {
		mapDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toBalanceResponse(balance))
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var req contracts.CreatePaymentRequest
	if !decode(r, &req) {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return
	}
	payment, err := h.svc.CreatePayment(r.Context(), actorFrom(r.Context()), application.CreatePaymentInput{
		Recipient: req.Recipient,
		Amount:    req.Amount,
		Memo:      req.Memo,
	})
	if err != nil {
		mapDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toPaymentResponse(payment, nil))
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "paymentID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "INVALID_ID", "payment id must be numeric")
		return
	}
	detail, err := h.svc.GetPayment(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		mapDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toPaymentResponse(detail.Payment, detail.Escrow))
}

func (h *Handler) createEscrow(w http.ResponseWriter, r *http.Request) {
	var req contracts.CreateEscrowRequest
	if !decode(r, &req) {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return
	}
	payment, err := h.svc.CreateEscrowPayment(r.Context(), actorFrom(r.Context()), application.CreateEscrowInput{
		Recipient: req.Recipient,
		Arbiter:   req.Arbiter,
		Amount:    req.Amount,
		Deadline:  req.Deadline,
		Memo:      req.Memo,
	})
	if err != nil {
		mapDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toPaymentResponse(payment, nil))
}

func (h *Handler) releaseEscrow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "paymentID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "INVALID_ID", "payment id must be numeric")
		return
	}
	payment, err := h.svc.ReleaseEscrow(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		mapDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toPaymentResponse(payment, nil))
}

func (h *Handler) refundEscrow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "paymentID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "INVALID_ID", "payment id must be numeric")
		return
	}
	payment, err := h.svc.EmergencyRefund(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		mapDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toPaymentResponse(payment, nil))
}

func (h *Handler) createSubscription(w http.ResponseWriter, r *http.Request) {
	var req contracts.CreateSubscriptionRequest
	if !decode(r, &req) {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return
	}
	sub, err := h.svc.CreateSubscription(r.Context(), actorFrom(r.Context()), application.CreateSubscriptionInput{
		Payee:    req.Payee,
		Amount:   req.Amount,
		Interval: req.Interval,
	})
	if err != nil {
		mapDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toSubscriptionResponse(sub))
}

func (h *Handler) getSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "subscriptionID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "INVALID_ID", "subscription id must be numeric")
		return
	}
	sub, err := h.svc.GetSubscription(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		mapDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toSubscriptionResponse(sub))
}

func (h *Handler) chargeSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "subscriptionID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "INVALID_ID", "subscription id must be numeric")
		return
	}
	sub, err := h.svc.ProcessSubscription(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		mapDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toSubscriptionResponse(sub))
}

func (h *Handler) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "subscriptionID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "INVALID_ID", "subscription id must be numeric")
		return
	}
	sub, err := h.svc.CancelSubscription(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		mapDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toSubscriptionResponse(sub))
}

func (h *Handler) platformStats(w http.ResponseWriter, r *http.Request) {
	platform, err := h.svc.GetPlatformStats(r.Context(), actorFrom(r.Context()))
	if err != nil {
		mapDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toPlatformStatsResponse(platform))
}

func (h *Handler) quoteFee(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseUint(r.URL.Query().Get("amount"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_AMOUNT", "amount must be numeric")
		return
	}
	fee, err := h.svc.QuoteFee(r.Context(), actorFrom(r.Context()), amount)
	if err != nil {
		mapDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, contracts.FeeQuoteResponse{Amount: amount, Fee: fee})
}

func (h *Handler) currentTime(w http.ResponseWriter, r *http.Request) {
	clock, err := h.svc.CurrentTime(r.Context(), actorFrom(r.Context()))
	if err != nil {
		mapDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, contracts.ClockResponse{LogicalClock: clock})
}

func (h *Handler) setFeeRate(w http.ResponseWriter, r *http.Request) {
	var req contracts.SetFeeRateRequest
	if !decode(r, &req) {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return
	}
	platform, err := h.svc.SetFeeRate(r.Context(), actorFrom(r.Context()), req.RateBps)
	if err != nil {
		mapDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toPlatformStatsResponse(platform))
}

func (h *Handler) setMinPayment(w http.ResponseWriter, r *http.Request) {
	var req contracts.SetMinPaymentRequest
	if !decode(r, &req) {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return
	}
	platform, err := h.svc.SetMinPayment(r.Context(), actorFrom(r.Context()), req.MinAmount)
	if err != nil {
		mapDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toPlatformStatsResponse(platform))
}

func (h *Handler) advanceClock(w http.ResponseWriter, r *http.Request) {
	var req contracts.AdvanceClockRequest
	if !decode(r, &req) {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return
	}
	clock, err := h.svc.AdvanceClock(r.Context(), actorFrom(r.Context()), req.Delta)
	if err != nil {
		mapDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, contracts.ClockResponse{LogicalClock: clock})
}
