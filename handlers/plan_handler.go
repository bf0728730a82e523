package handlers

import (
	"net/http"

	"subscriptionAPI/internal/plan"
)

type PlanHandler struct {
	catalog *plan.Catalog
}

func NewPlanHandler(catalog *plan.Catalog) *PlanHandler {
	return &PlanHandler{catalog: catalog}
}

type plansResponse struct {
	Plans       []plan.Plan `json:"plans"`
	DefaultPlan string      `json:"defaultPlan"`
}

// GetPlans lists the catalog so clients render prices from the server's table.
func (h *PlanHandler) GetPlans(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, plansResponse{
		Plans:       h.catalog.Plans(),
		DefaultPlan: h.catalog.DefaultID(),
	})
}
