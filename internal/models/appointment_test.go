package models

import "testing"

func TestAppointmentStatus(t *testing.T) {
	cases := []struct {
		name                            string
		cancelled, payment, isCompleted bool
		want                            Status
	}{
		{"AllFalseIsPending", false, false, false, StatusPending},
		{"PaidIsConfirmed", false, true, false, StatusConfirmed},
		{"CompletedBeatsPaid", false, true, true, StatusCompleted},
		{"CancelledBeatsEverything", true, true, true, StatusCancelled},
		{"CancelledAlone", true, false, false, StatusCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apt := Appointment{Cancelled: tc.cancelled, Payment: tc.payment, IsCompleted: tc.isCompleted}
			if got := apt.Status(); got != tc.want {
				t.Errorf("Status() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestAppointmentCanTransition(t *testing.T) {
	t.Run("CancelledIsTerminal", func(t *testing.T) {
		apt := Appointment{Cancelled: true}
		for _, to := range []Status{StatusPending, StatusConfirmed, StatusCompleted} {
			if apt.CanTransition(to) {
				t.Errorf("cancelled appointment must not transition to %s", to)
			}
		}
	})

	t.Run("PendingCanCancelOrConfirm", func(t *testing.T) {
		apt := Appointment{}
		if !apt.CanTransition(StatusCancelled) {
			t.Error("pending must be cancellable")
		}
		if !apt.CanTransition(StatusConfirmed) {
			t.Error("pending must be confirmable")
		}
	})

	t.Run("ConfirmedCanCompleteOrCancel", func(t *testing.T) {
		apt := Appointment{Payment: true}
		if !apt.CanTransition(StatusCompleted) {
			t.Error("confirmed must be completable")
		}
		if !apt.CanTransition(StatusCancelled) {
			t.Error("confirmed must be cancellable")
		}
		if apt.CanTransition(StatusPending) {
			t.Error("confirmed must not regress to pending")
		}
	})

	t.Run("NoSelfTransition", func(t *testing.T) {
		apt := Appointment{}
		if apt.CanTransition(StatusPending) {
			t.Error("transition to the current state is not a transition")
		}
	})
}
