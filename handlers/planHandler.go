package handlers

import (
	"encoding/json"
	"net/http"

	"mentor/services"

	"github.com/gorilla/mux"
)

type PlanHandler struct {
	planner *services.PlannerService
}

func NewPlanHandler(planner *services.PlannerService) *PlanHandler {
	return &PlanHandler{planner: planner}
}

func (h *PlanHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/plan/{userID}", h.GetPlan).Methods("GET")
}

func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"plan": h.planner.GetPlan(userID)})
}
