package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"decks/internal/domain/entity"
	"decks/internal/handler/http/respond"
	feedgenUC "decks/internal/usecase/feedgen"
)

// FeedGenerator derives and registers a news feed for a tracked target.
type FeedGenerator interface {
	Generate(ctx context.Context, orgID int64, target entity.TargetType, targetID int64) (*entity.Feed, error)
}

// feedDTO is the JSON shape of a feed in API responses.
type feedDTO struct {
	ID        int64  `json:"id"`
	OrgID     int64  `json:"org_id"`
	Kind      string `json:"kind"`
	URL       string `json:"url"`
	CompanyID *int64 `json:"company_id"`
	TopicID   *int64 `json:"topic_id"`
	Active    bool   `json:"active"`
}

// AutogenerateFeedHandler creates a news feed for a company or topic.
type AutogenerateFeedHandler struct{ Svc FeedGenerator }

func (h AutogenerateFeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrgID      int64  `json:"org_id"`
		TargetType string `json:"target_type"`
		TargetID   int64  `json:"target_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if req.OrgID == 0 || req.TargetType == "" || req.TargetID == 0 {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("org_id, target_type and target_id are required"))
		return
	}

	feed, err := h.Svc.Generate(r.Context(), req.OrgID, entity.TargetType(req.TargetType), req.TargetID)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidInput):
			respond.SafeError(w, http.StatusBadRequest, err)
		case errors.Is(err, entity.ErrNotFound):
			respond.SafeError(w, http.StatusNotFound, err)
		case errors.Is(err, feedgenUC.ErrFeedExists):
			respond.Error(w, http.StatusConflict, err)
		default:
			respond.SafeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"feeds": []feedDTO{{
			ID:        feed.ID,
			OrgID:     feed.OrgID,
			Kind:      feed.Kind,
			URL:       feed.URL,
			CompanyID: feed.CompanyID,
			TopicID:   feed.TopicID,
			Active:    feed.Active,
		}},
	})
}
