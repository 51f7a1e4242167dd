package service

import (
	"context"
	"errors"
	"testing"

	"github.com/medirota/coverage-platform/internal/client"
	"github.com/medirota/coverage-platform/internal/model"
	"github.com/medirota/coverage-platform/internal/repository"
)

func newOptimizer(medics *fakeMedicStore, territories *fakeTerritoryStore, travel *fakeTravel) *CostOptimizer {
	return NewCostOptimizer(medics, territories, travel)
}

func TestEvaluate_PrimaryMedicShortCircuits(t *testing.T) {
	medics := newFakeMedicStore(model.Medic{ID: 7, HomePostcode: "SW1A 2AA"})
	territories := newFakeTerritoryStore(model.Territory{TerritoryKey: "SW1A", PrimaryMedicID: 7})
	travel := &fakeTravel{err: errors.New("must not be called")}
	o := newOptimizer(medics, territories, travel)

	ev, err := o.Evaluate(context.Background(), 7, "SW1A 1AA", 8, 50)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !ev.InTerritory {
		t.Fatal("expected in-territory verdict")
	}
	if ev.Recommendation != RecommendInTerritory {
		t.Fatalf("recommendation = %q, want %q", ev.Recommendation, RecommendInTerritory)
	}
	if ev.RequiresAdminApproval {
		t.Fatal("in-territory assignment must not require approval")
	}
	if ev.RecommendedCost != 0 || ev.TravelBonus != 0 || ev.RoomBoard != 0 {
		t.Fatalf("in-territory costs must be zero, got %+v", ev)
	}
}

func TestEvaluate_TravelBonusBoundaries(t *testing.T) {
	medics := newFakeMedicStore(model.Medic{ID: 7, HomePostcode: "M1 1AE"})
	territories := newFakeTerritoryStore(model.Territory{TerritoryKey: "SW1A", PrimaryMedicID: 99})

	tests := []struct {
		name      string
		miles     float64
		minutes   int
		wantBonus float64
		wantBoard float64
	}{
		{"at free radius", 30, 60, 0, 0},
		{"just past radius", 31, 60, 2, 0},
		{"well past radius", 45, 60, 30, 0},
		{"at board threshold", 45, 90, 30, 0},
		{"past board threshold", 45, 91, 30, 85},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			travel := &fakeTravel{estimate: client.TravelEstimate{TravelTimeMinutes: tc.minutes, DistanceMiles: tc.miles}}
			o := newOptimizer(medics, territories, travel)
			ev, err := o.Evaluate(context.Background(), 7, "SW1A 1AA", 8, 50)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if ev.TravelBonus != tc.wantBonus {
				t.Errorf("travel bonus = %v, want %v", ev.TravelBonus, tc.wantBonus)
			}
			if ev.RoomBoard != tc.wantBoard {
				t.Errorf("room board = %v, want %v", ev.RoomBoard, tc.wantBoard)
			}
			if !ev.RequiresAdminApproval {
				t.Error("out-of-territory evaluation must require approval")
			}
		})
	}
}

func TestEvaluate_PicksCheaperOption(t *testing.T) {
	medics := newFakeMedicStore(model.Medic{ID: 7, HomePostcode: "M1 1AE"})
	territories := newFakeTerritoryStore()

	// 100 miles -> £140 bonus; 120 minutes -> £85 board.  Board wins.
	travel := &fakeTravel{estimate: client.TravelEstimate{TravelTimeMinutes: 120, DistanceMiles: 100}}
	o := newOptimizer(medics, territories, travel)
	ev, err := o.Evaluate(context.Background(), 7, "SW1A 1AA", 8, 50)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ev.Recommendation != RecommendRoomBoard {
		t.Fatalf("recommendation = %q, want %q", ev.Recommendation, RecommendRoomBoard)
	}
	if ev.RecommendedCost != 85 {
		t.Fatalf("recommended cost = %v, want 85", ev.RecommendedCost)
	}
	// shift value 50*8*1.2 = 480; 85/480 = 17.708... -> 17.7
	if ev.CostPercentage != 17.7 {
		t.Fatalf("cost percentage = %v, want 17.7", ev.CostPercentage)
	}
}

func TestEvaluate_TieGoesToTravelBonus(t *testing.T) {
	medics := newFakeMedicStore(model.Medic{ID: 7, HomePostcode: "M1 1AE"})
	territories := newFakeTerritoryStore()

	// 72.5 miles -> (72.5-30)*2 = £85 bonus, equal to the board rate.
	travel := &fakeTravel{estimate: client.TravelEstimate{TravelTimeMinutes: 120, DistanceMiles: 72.5}}
	o := newOptimizer(medics, territories, travel)
	ev, err := o.Evaluate(context.Background(), 7, "SW1A 1AA", 8, 50)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ev.Recommendation != RecommendTravelBonus {
		t.Fatalf("tie must resolve to travel bonus, got %q", ev.Recommendation)
	}
	if ev.RecommendedCost != 85 {
		t.Fatalf("recommended cost = %v, want 85", ev.RecommendedCost)
	}
}

func TestEvaluate_DeniesWhenCostExceedsHalfShiftValue(t *testing.T) {
	medics := newFakeMedicStore(model.Medic{ID: 7, HomePostcode: "M1 1AE"})
	territories := newFakeTerritoryStore()

	// Shift value 10*2*1.2 = £24; cheapest option £40 > £12.
	travel := &fakeTravel{estimate: client.TravelEstimate{TravelTimeMinutes: 60, DistanceMiles: 50}}
	o := newOptimizer(medics, territories, travel)
	ev, err := o.Evaluate(context.Background(), 7, "SW1A 1AA", 2, 10)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ev.Recommendation != RecommendDeny {
		t.Fatalf("recommendation = %q, want %q", ev.Recommendation, RecommendDeny)
	}
	if ev.RecommendedCost != 40 {
		t.Fatalf("recommended cost = %v, want 40", ev.RecommendedCost)
	}
	// 40/24 = 166.66...% -> 166.7
	if ev.CostPercentage != 166.7 {
		t.Fatalf("cost percentage = %v, want 166.7", ev.CostPercentage)
	}
	if !ev.RequiresAdminApproval {
		t.Fatal("deny verdict still requires admin approval")
	}
}

func TestEvaluate_ZeroShiftValueDenies(t *testing.T) {
	medics := newFakeMedicStore(model.Medic{ID: 7, HomePostcode: "M1 1AE"})
	territories := newFakeTerritoryStore()
	travel := &fakeTravel{estimate: client.TravelEstimate{TravelTimeMinutes: 60, DistanceMiles: 45}}
	o := newOptimizer(medics, territories, travel)

	ev, err := o.Evaluate(context.Background(), 7, "SW1A 1AA", 8, 0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ev.Recommendation != RecommendDeny {
		t.Fatalf("recommendation = %q, want %q", ev.Recommendation, RecommendDeny)
	}
	if ev.CostPercentage != 0 {
		t.Fatalf("cost percentage = %v, want 0 for a worthless shift", ev.CostPercentage)
	}
}

func TestEvaluate_UnknownTerritoryTreatedAsOutOfTerritory(t *testing.T) {
	medics := newFakeMedicStore(model.Medic{ID: 7, HomePostcode: "M1 1AE"})
	territories := newFakeTerritoryStore() // no row for any key
	travel := &fakeTravel{estimate: client.TravelEstimate{TravelTimeMinutes: 20, DistanceMiles: 10}}
	o := newOptimizer(medics, territories, travel)

	ev, err := o.Evaluate(context.Background(), 7, "ZZ9 9ZZ", 8, 50)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ev.InTerritory {
		t.Fatal("unknown territory must not count as in-territory")
	}
	if !ev.RequiresAdminApproval {
		t.Fatal("expected admin approval flag")
	}
}

func TestEvaluate_MedicNotFound(t *testing.T) {
	o := newOptimizer(newFakeMedicStore(), newFakeTerritoryStore(), &fakeTravel{})
	_, err := o.Evaluate(context.Background(), 42, "SW1A 1AA", 8, 50)
	if !errors.Is(err, repository.ErrMedicNotFound) {
		t.Fatalf("err = %v, want ErrMedicNotFound", err)
	}
}

func TestEvaluate_TravelFailureWrapped(t *testing.T) {
	medics := newFakeMedicStore(model.Medic{ID: 7, HomePostcode: "M1 1AE"})
	travel := &fakeTravel{err: errors.New("connection refused")}
	o := newOptimizer(medics, newFakeTerritoryStore(), travel)

	_, err := o.Evaluate(context.Background(), 7, "SW1A 1AA", 8, 50)
	if !errors.Is(err, ErrTravelCalculation) {
		t.Fatalf("err = %v, want ErrTravelCalculation", err)
	}
}
