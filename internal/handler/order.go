package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-orders/internal/domain/order"
)

type orderLine struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var lines []orderLine
	if err := decodeBody(r, &lines); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]order.Item, len(lines))
	for i, line := range lines {
		items[i] = order.Item{ProductID: line.ID, Quantity: line.Quantity}
	}

	o, err := h.orders.PlaceOrder(r.Context(), id.UserID, items)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message":  "Order placed successfully",
		"order_id": o.ID,
	})
}

type historyItemResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type historyOrderResponse struct {
	ID    string                `json:"id"`
	Date  string                `json:"date"`
	Items []historyItemResponse `json:"items"`
	Total decimal.Decimal       `json:"total"`
}

func (h *Handler) orderHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summaries, err := h.orders.History(r.Context(), id.UserID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	out := make([]historyOrderResponse, len(summaries))
	for i, s := range summaries {
		items := make([]historyItemResponse, len(s.Items))
		for j, item := range s.Items {
			items[j] = historyItemResponse{
				ID:       item.ProductID,
				Name:     item.Name,
				Quantity: item.Quantity,
				Price:    item.UnitPrice,
			}
		}
		out[i] = historyOrderResponse{
			ID:    s.ID,
			Date:  s.CreatedAt.UTC().Format(time.RFC3339),
			Items: items,
			Total: s.Total,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type orderStatusResponse struct {
	OrderID   string `json:"order_id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (h *Handler) orderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	info, err := h.orders.Status(r.Context(), id.UserID, chi.URLParam(r, "orderID"))
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, orderStatusResponse{
		OrderID:   info.OrderID,
		Status:    string(info.Status),
		Timestamp: info.CreatedAt.UTC().Format(time.RFC3339),
	})
}
