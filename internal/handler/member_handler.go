package handler

import (
	"encoding/json"
	"net/http"

	"github.com/assohub/assohub-backend/internal/model"
	"github.com/assohub/assohub-backend/internal/repository"
	"github.com/assohub/assohub-backend/internal/service"
)

type MemberHandler struct {
	Members       repository.MemberRepositoryInterface
	Subscriptions *service.SubscriptionService
}

type memberInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Status    string `json:"status"`
}

// Create registers a member and then runs the auto-subscribe hook. The
// hook is best-effort: list trouble never undoes the member.
func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in memberInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if in.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email is required"})
		return
	}

	member := &model.Member{
		AssociationID: associationID(r),
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		Status:        model.MemberStatus(in.Status),
	}
	if err := h.Members.Create(member); err != nil {
		writeError(w, err)
		return
	}

	h.Subscriptions.AutoSubscribeOnMemberCreate(member)

	writeJSON(w, http.StatusCreated, member)
}
