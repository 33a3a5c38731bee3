package httpx

import (
	"context"
	"net/http"
	"strings"
	"time"

	mdb "Stratus/internal/mongo"
	"go.mongodb.org/mongo-driver/bson"
)

type ObservationsResponse struct {
	Items []bson.M `json:"items"`
	Meta  PageMeta `json:"meta"`
}

// GET /observations?type=&city=&page=&limit=
func observationsListHandler(obs *mdb.Observations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		page := getPage(r)
		limit := getLimit(r, 20, 200)

		items, total, err := obs.List(ctx, mdb.ListQuery{
			StixType: strings.TrimSpace(r.URL.Query().Get("type")),
			City:     strings.TrimSpace(r.URL.Query().Get("city")),
			Page:     page,
			Limit:    limit,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if items == nil {
			items = []bson.M{}
		}

		writeJSON(w, ObservationsResponse{
			Items: items,
			Meta:  PageMeta{Page: page, Limit: limit, Total: total},
		})
	}
}
