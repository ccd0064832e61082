package models

import "testing"

func TestSeatCapFor(t *testing.T) {
	tests := []struct {
		plan Plan
		want int
	}{
		{PlanFree, FreeSeatCap},
		{PlanEnterprise, EnterpriseSeatCap},
		{Plan("unknown"), FreeSeatCap},
	}

	for _, tt := range tests {
		if got := SeatCapFor(tt.plan); got != tt.want {
			t.Errorf("SeatCapFor(%q): expected %d, got %d", tt.plan, tt.want, got)
		}
	}
}
