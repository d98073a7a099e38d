package handler

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/assohub/assohub-backend/internal/model"
	"github.com/assohub/assohub-backend/internal/repository"
	"github.com/assohub/assohub-backend/internal/service"
)

type ListHandler struct {
	Lists         repository.ListRepositoryInterface
	Subscriptions *service.SubscriptionService
}

type listInput struct {
	Name          string `json:"name"`
	ListType      string `json:"list_type"`
	AutoSubscribe bool   `json:"auto_subscribe"`
	Status        string `json:"status"`
}

func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in listInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if in.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	list := &model.MailingList{
		AssociationID: associationID(r),
		Name:          in.Name,
		ListType:      in.ListType,
		AutoSubscribe: in.AutoSubscribe,
		Status:        in.Status,
	}
	if err := h.Lists.Create(list); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	lists, err := h.Lists.List(associationID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": lists})
}

func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	list, err := h.Lists.GetForAssociation(associationID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	var in listInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	list := &model.MailingList{
		ID:            id,
		AssociationID: associationID(r),
		Name:          in.Name,
		ListType:      in.ListType,
		AutoSubscribe: in.AutoSubscribe,
		Status:        in.Status,
	}
	if err := h.Lists.Update(list); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	if err := h.Lists.Delete(associationID(r), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type subscribeInput struct {
	MemberID int `json:"member_id"`
}

func (h *ListHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	listID, _ := strconv.Atoi(chi.URLParam(r, "id"))

	var in subscribeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.MemberID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "member_id is required"})
		return
	}

	if err := h.Subscriptions.Subscribe(associationID(r), listID, in.MemberID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "subscribed"})
}

func (h *ListHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	listID, _ := strconv.Atoi(chi.URLParam(r, "id"))

	var in subscribeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.MemberID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "member_id is required"})
		return
	}

	if err := h.Subscriptions.Unsubscribe(associationID(r), listID, in.MemberID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
}

func (h *ListHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	listID, _ := strconv.Atoi(chi.URLParam(r, "id"))

	subscribers, err := h.Subscriptions.Subscribers(associationID(r), listID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": subscribers})
}

// ExportSubscribers streams the subscriber list as CSV.
func (h *ListHandler) ExportSubscribers(w http.ResponseWriter, r *http.Request) {
	listID, _ := strconv.Atoi(chi.URLParam(r, "id"))

	subscribers, err := h.Subscriptions.Subscribers(associationID(r), listID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="subscribers.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"member_id", "first_name", "last_name", "email", "is_active", "subscribed_at"})
	for _, s := range subscribers {
		cw.Write([]string{
			strconv.Itoa(s.MemberID),
			s.FirstName,
			s.LastName,
			s.Email,
			strconv.FormatBool(s.IsActive),
			s.SubscribedAt.Format(time.RFC3339),
		})
	}
	cw.Flush()
}
