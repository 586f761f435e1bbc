package dto

import "itinerary-planner-service/internal/services"

type NextStopsResponse struct {
	Suggestions []services.NextStopSuggestion `json:"suggestions"`
}

type SpotInfoResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type NearbyFoodResponse struct {
	Name string                        `json:"name"`
	Food []services.FoodRecommendation `json:"food"`
}

type SpotGuideResponse struct {
	Name        string                        `json:"name"`
	Description string                        `json:"description"`
	Food        []services.FoodRecommendation `json:"food"`
}
