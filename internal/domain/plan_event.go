package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// PlanEvent is an accepted recommendation together with the inputs that
// produced it, as published to downstream consumers.
type PlanEvent struct {
	ID          string    `json:"id"`
	Budget      float64   `json:"budget"`
	Weights     Weights   `json:"weights"`
	Scenario    Scenario  `json:"scenario"`
	Plan        Plan      `json:"plan"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewPlanEvent wraps a plan with its inputs. The ID depends only on the inputs
// and the chosen actions, so identical requests map to the same event ID and
// consumers can deduplicate replays.
func NewPlanEvent(budget float64, w Weights, s Scenario, plan Plan, at time.Time) PlanEvent {
	return PlanEvent{
		ID:          planID(budget, w, s, plan),
		Budget:      budget,
		Weights:     w,
		Scenario:    s,
		Plan:        plan,
		GeneratedAt: at.UTC(),
	}
}

func planID(budget float64, w Weights, s Scenario, plan Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%g|%g|%g|%g|%g|%s|%g", budget, w.Canopy, w.Impervious, w.Seniors, w.Income, s.Name, s.SeverityMult)
	for _, c := range plan.Recommendations {
		fmt.Fprintf(&b, "|%s:%s", c.ZoneID, c.Action)
	}
	hash := sha256.Sum256([]byte(b.String()))
	return "plan-" + hex.EncodeToString(hash[:8])
}
