package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/medirota/coverage-platform/internal/repository"
	"github.com/medirota/coverage-platform/internal/territory"
)

// Cost policy constants, in pounds.
const (
	freeTravelRadiusMiles = 30.0 // no bonus inside this radius
	travelBonusPerMile    = 2.0  // per mile beyond the radius
	roomBoardFlatRate     = 85.0 // overnight allowance
	roomBoardThresholdMin = 90   // minutes of travel that trigger the allowance
	vatMultiplier         = 1.20
	denyCostShare         = 0.50 // deny when cheapest option exceeds this share of shift value
)

// Recommendations returned by Evaluate.
const (
	RecommendInTerritory = "in_territory"
	RecommendTravelBonus = "travel_bonus"
	RecommendRoomBoard   = "room_board"
	RecommendDeny        = "deny"
)

// ErrTravelCalculation wraps failures of the travel time collaborator.
// Unlike scorer failures in bulk triage there is no per-item fallback
// here, so the error propagates and fails the whole request.
var ErrTravelCalculation = errors.New("travel calculation failed")

// CostEvaluation is the optimizer's verdict for covering one booking
// with one medic.
type CostEvaluation struct {
	InTerritory           bool    `json:"in_territory"`
	TravelTimeMinutes     int     `json:"travel_time_minutes"`
	DistanceMiles         float64 `json:"distance_miles"`
	TravelBonus           float64 `json:"travel_bonus"`
	RoomBoard             float64 `json:"room_board"`
	Recommendation        string  `json:"recommendation"`
	RecommendedCost       float64 `json:"recommended_cost"`
	ShiftValue            float64 `json:"shift_value"`
	CostPercentage        float64 `json:"cost_percentage"`
	RequiresAdminApproval bool    `json:"requires_admin_approval"`
}

// CostOptimizer decides the most cost-effective way to cover a
// booking with a medic who is not the territory's primary: pay a
// per-mile travel bonus, pay a flat overnight allowance, or recommend
// denying the assignment outright.  Every out-of-territory result
// requires admin approval, including deny recommendations.
type CostOptimizer struct {
	medics      MedicStore
	territories TerritoryStore
	travel      TravelEstimator
}

// NewCostOptimizer wires the optimizer's dependencies.
func NewCostOptimizer(medics MedicStore, territories TerritoryStore, travel TravelEstimator) *CostOptimizer {
	return &CostOptimizer{medics: medics, territories: territories, travel: travel}
}

// Evaluate computes the coverage strategy for the given medic and
// booking site.  Returns repository.ErrMedicNotFound when the medic
// does not exist and ErrTravelCalculation when the travel service
// fails.  When the medic is the registered primary for the site's
// territory the evaluation short-circuits: zero cost, no approval.
func (o *CostOptimizer) Evaluate(ctx context.Context, medicID uint64, sitePostcode string, shiftHours, baseRate float64) (CostEvaluation, error) {
	medic, err := o.medics.GetByID(ctx, medicID)
	if err != nil {
		return CostEvaluation{}, err
	}

	key := territory.ResolveKey(sitePostcode)
	terr, err := o.territories.GetByKey(ctx, key)
	switch {
	case err == nil:
		if terr.PrimaryMedicID == medic.ID {
			return CostEvaluation{InTerritory: true, Recommendation: RecommendInTerritory}, nil
		}
	case errors.Is(err, repository.ErrTerritoryNotFound):
		// No territory registered for this sector: nobody is primary,
		// so the medic is treated as out of territory.
	default:
		return CostEvaluation{}, err
	}

	est, err := o.travel.Estimate(ctx, medic.HomePostcode, sitePostcode)
	if err != nil {
		return CostEvaluation{}, fmt.Errorf("%w: %v", ErrTravelCalculation, err)
	}

	travelBonus := 0.0
	if est.DistanceMiles > freeTravelRadiusMiles {
		travelBonus = (est.DistanceMiles - freeTravelRadiusMiles) * travelBonusPerMile
	}
	roomBoard := 0.0
	if est.TravelTimeMinutes > roomBoardThresholdMin {
		roomBoard = roomBoardFlatRate
	}
	shiftValue := baseRate * shiftHours * vatMultiplier

	ev := CostEvaluation{
		TravelTimeMinutes:     est.TravelTimeMinutes,
		DistanceMiles:         est.DistanceMiles,
		TravelBonus:           travelBonus,
		RoomBoard:             roomBoard,
		ShiftValue:            shiftValue,
		RequiresAdminApproval: true,
	}

	if shiftValue <= 0 {
		// Cannot express cost as a share of a worthless shift; deny
		// and leave the percentage at zero rather than divide by zero.
		ev.Recommendation = RecommendDeny
		return ev, nil
	}

	minCost := travelBonus
	if roomBoard > 0 && roomBoard < minCost {
		minCost = roomBoard
	}

	switch {
	case minCost > denyCostShare*shiftValue:
		ev.Recommendation = RecommendDeny
		ev.RecommendedCost = minCost
	case roomBoard > 0 && roomBoard < travelBonus:
		ev.Recommendation = RecommendRoomBoard
		ev.RecommendedCost = roomBoard
	default:
		// Strict < above means an exact tie keeps the travel bonus.
		ev.Recommendation = RecommendTravelBonus
		ev.RecommendedCost = travelBonus
	}

	ev.CostPercentage = math.Round(ev.RecommendedCost/shiftValue*100*10) / 10
	return ev, nil
}
