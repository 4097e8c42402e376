package models

import (
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"student", RoleStudent, true},
		{"TUTOR", RoleTutor, true},
		{" Admin ", RoleAdmin, true},
		{"coach", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseRole(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParseRole(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseRole(%q) should fail", tc.in)
		}
	}
}

func TestSlotDurationMinutes(t *testing.T) {
	start := time.Date(2030, 3, 15, 9, 0, 0, 0, time.UTC)
	slot := AvailabilitySlot{StartTime: start, EndTime: start.Add(90 * time.Minute)}
	if got := slot.DurationMinutes(); got != 90 {
		t.Errorf("DurationMinutes = %d, want 90", got)
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	for status, terminal := range map[BookingStatus]bool{
		BookingPending:     false,
		BookingConfirmed:   false,
		BookingRescheduled: false,
		BookingCompleted:   true,
		BookingCancelled:   true,
	} {
		if status.Terminal() != terminal {
			t.Errorf("%s.Terminal() = %v, want %v", status, status.Terminal(), terminal)
		}
	}
}
