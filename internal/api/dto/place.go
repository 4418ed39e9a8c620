package dto

import "tripmate-route-service/internal/domain"

type PlaceSearchRequest struct {
	Query    string              `json:"query"`
	Location *domain.Coordinates `json:"location"`
	Radius   int                 `json:"radius"`
	Type     string              `json:"type"`
}

type TravelEstimateResponse struct {
	VisitDurationMinutes int      `json:"visit_duration_minutes"`
	BestVisitTimes       []string `json:"best_visit_times"`
}
