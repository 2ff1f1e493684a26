package statemachine

import (
	"testing"

	"payment-tracker-api/apperr"
)

func TestApply(t *testing.T) {
	cases := []struct {
		name     string
		isActive bool
		event    Event
		want     bool
		wantErr  bool
	}{
		{"delete active", true, Deactivate, false, false},
		{"reactivate inactive", false, Reactivate, true, false},
		{"delete inactive", false, Deactivate, false, true},
		{"reactivate active", true, Reactivate, true, true},
		{"unknown event", true, Event("archive"), true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Apply(tc.isActive, tc.event)
			if tc.wantErr {
				if !apperr.IsValidation(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("is_active = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidEventsFrom(t *testing.T) {
	if ev := ValidEventsFrom(Active); len(ev) != 1 || ev[0] != Deactivate {
		t.Errorf("active: got %v", ev)
	}
	if ev := ValidEventsFrom(Inactive); len(ev) != 1 || ev[0] != Reactivate {
		t.Errorf("inactive: got %v", ev)
	}
	if len(GetAllTransitions()) != 2 {
		t.Error("lifecycle should have exactly two transitions")
	}
}
