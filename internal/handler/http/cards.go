package http

import (
	"context"
	"net/http"

	"decks/internal/handler/http/respond"
	cardsUC "decks/internal/usecase/cards"
)

// CardRefresher triggers one card refresh pass.
type CardRefresher interface {
	RefreshAll(ctx context.Context) (*cardsUC.Result, error)
}

// RefreshCardsHandler rebuilds dashboard cards from the latest items.
type RefreshCardsHandler struct{ Svc CardRefresher }

func (h RefreshCardsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	result, err := h.Svc.RefreshAll(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"message":       "Card refresh completed",
		"cards_updated": result.CardsUpdated,
		"errors":        errorList(result.Errors),
	})
}
