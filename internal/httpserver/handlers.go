package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"inbox/internal/domain"
	"inbox/internal/observability"
)

type MessageLister interface {
	ListMessages(ctx context.Context, req domain.ListMessagesRequest) (domain.MessagePage, error)
}

type API struct {
	Svc         MessageLister
	MaxPageSize int
}

func (a *API) Register(mux *mux.Router) {
	mux.HandleFunc("/v1/messages/{recipient}", a.handleListMessages).Methods(http.MethodGet)
}

const listEndpoint = "/v1/messages/{recipient}"

func (a *API) handleListMessages(w http.ResponseWriter, r *http.Request) {
	recipient := mux.Vars(r)["recipient"]
	if recipient == "" {
		a.fail(w, ErrMissingRecipient, http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	req := domain.ListMessagesRequest{
		Recipient: recipient,
		MaximumID: q.Get("maxId"),
		MinimumID: q.Get("minId"),
	}

	if raw := q.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || (a.MaxPageSize > 0 && n > a.MaxPageSize) {
			a.fail(w, ErrInvalidPageSize, http.StatusBadRequest)
			return
		}
		req.PageSize = n
	}
	if raw := q.Get("enrich"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			a.fail(w, ErrInvalidFlag, http.StatusBadRequest)
			return
		}
		req.Enrich = b
	}
	if raw := q.Get("archived"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			a.fail(w, ErrInvalidFlag, http.StatusBadRequest)
			return
		}
		req.Archived = b
	}

	page, err := a.Svc.ListMessages(r.Context(), req)
	if err != nil {
		// The service already logged the one descriptive line for this
		// failure; here we only map the kind to a response.
		var qe *domain.QueryError
		if errors.As(err, &qe) {
			a.fail(w, ErrQuery, http.StatusInternalServerError)
			return
		}
		a.fail(w, ErrInternal, http.StatusInternalServerError)
		return
	}

	observability.HTTPRequests.WithLabelValues(listEndpoint, strconv.Itoa(http.StatusOK)).Inc()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(page)
}

func (a *API) fail(w http.ResponseWriter, msg string, status int) {
	observability.HTTPRequests.WithLabelValues(listEndpoint, strconv.Itoa(status)).Inc()
	http.Error(w, msg, status)
}
