package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"log/slog"

	"rewards-ledger/internal/core/port"
)

// Handler contains dependencies and routes. It is the inbound HTTP adapter:
// it decodes requests, delegates to the ledger usecases and maps the ledger
// error taxonomy onto status codes. Routes are registered on a chi.Router.
type Handler struct {
	campaigns  port.CampaignUseCase
	activities port.ActivityUseCase
	accounts   port.AccountUseCase
	logger     *slog.Logger
	router     chi.Router
}

// NewHandler creates a handler with all routes configured. The mint faucet
// route is only registered when faucet is true.
func NewHandler(campaigns port.CampaignUseCase, activities port.ActivityUseCase, accounts port.AccountUseCase, logger *slog.Logger, faucet bool) *Handler {
	h := &Handler{campaigns: campaigns, activities: activities, accounts: accounts, logger: logger}
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", h.handleCreateCampaign)
			r.Post("/claim", h.handleClaimReward)
			r.Post("/withdraw", h.handleCampaignWithdraw)
			r.Get("/{owner}/{id}", h.handleGetCampaign)
			r.Get("/{owner}/{id}/slots/{slot}", h.handleSlotStatus)
		})
		r.Route("/activities", func(r chi.Router) {
			r.Post("/", h.handleCreateActivity)
			r.Post("/complete", h.handleCompleteActivity)
			r.Post("/claim", h.handleClaimActivity)
			r.Post("/deactivate", h.handleDeactivateActivity)
			r.Post("/withdraw", h.handleActivityWithdraw)
			r.Get("/{creator}/{id}", h.handleGetActivity)
			r.Get("/{creator}/{id}/claims/{participant}", h.handleParticipantStatus)
		})
		r.Route("/accounts", func(r chi.Router) {
			if faucet {
				r.Post("/{address}/mint", h.handleMint)
			}
			r.Get("/{address}/balance", h.handleBalance)
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}
