package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the HTTP surface. Everything except health and the
// provider callback is tenant-scoped.
func NewRouter(campaigns *CampaignHandler, lists *ListHandler, members *MemberHandler, callbacks *CallbackHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// The provider does not carry tenant identity; ledger rows are looked
	// up by provider message id alone.
	r.Post("/callbacks/email", callbacks.Receive)

	r.Group(func(r chi.Router) {
		r.Use(RequireAssociation)

		r.Post("/campaigns", campaigns.Create)
		r.Get("/campaigns", campaigns.List)
		r.Get("/campaigns/{id}", campaigns.Get)
		r.Get("/campaigns/{id}/ledger", campaigns.Ledger)
		r.Get("/campaigns/{id}/stats", campaigns.Stats)
		r.Post("/campaigns/{id}/send", campaigns.Send)
		r.Delete("/campaigns/{id}", campaigns.Delete)

		r.Post("/members", members.Create)

		r.Post("/lists", lists.Create)
		r.Get("/lists", lists.List)
		r.Get("/lists/{id}", lists.Get)
		r.Put("/lists/{id}", lists.Update)
		r.Delete("/lists/{id}", lists.Delete)
		r.Post("/lists/{id}/subscribe", lists.Subscribe)
		r.Post("/lists/{id}/unsubscribe", lists.Unsubscribe)
		r.Get("/lists/{id}/subscribers", lists.Subscribers)
		r.Get("/lists/{id}/subscribers/export", lists.ExportSubscribers)
	})

	return r
}
