package tracking

import (
	"reflect"
	"testing"

	"checkout-and-tracking/internal/models"
)

func completedStatuses(view models.TrackingView) []models.OrderStatus {
	var out []models.OrderStatus
	for _, item := range view.Timeline {
		if item.Completed {
			out = append(out, item.Status)
		}
	}
	return out
}

func TestReconcileImpliesEarlierStatuses(t *testing.T) {
	// A coarse current status of PREPARING with no explicit per-status events
	// marks everything up to and including PREPARING completed, nothing after.
	state := newSessionState("order-1")
	state = applyOrderUpdate(state, models.Order{ID: "order-1", Status: models.StatusPreparing})
	view := renderView(state)

	want := []models.OrderStatus{models.StatusPending, models.StatusConfirmed, models.StatusPreparing}
	if got := completedStatuses(view); !reflect.DeepEqual(got, want) {
		t.Errorf("completed = %v; want %v", got, want)
	}
	if view.CurrentStatus != models.StatusPreparing {
		t.Errorf("CurrentStatus = %s; want PREPARING", view.CurrentStatus)
	}
	if view.Delivered {
		t.Error("Delivered = true; want false")
	}
}

func TestReconcileNeverRegresses(t *testing.T) {
	// An explicit DELIVERED event followed by a stale ON_THE_WAY snapshot
	// must keep DELIVERED completed.
	state := newSessionState("order-1")
	state = applyOrderUpdate(state, models.Order{Status: models.StatusDelivered})
	state = applyOrderUpdate(state, models.Order{Status: models.StatusOnTheWay})
	view := renderView(state)

	last := view.Timeline[len(view.Timeline)-1]
	if last.Status != models.StatusDelivered || !last.Completed {
		t.Errorf("DELIVERED completed = %v; want true after stale snapshot", last.Completed)
	}
	if !view.Delivered {
		t.Error("Delivered = false; want true (never regresses)")
	}
}

func TestReconcileOutOfOrderEvents(t *testing.T) {
	state := newSessionState("order-1")
	for _, st := range []models.OrderStatus{
		models.StatusPreparing,
		models.StatusPending, // late duplicate
		models.StatusOnTheWay,
		models.StatusConfirmed, // delayed
	} {
		state = applyOrderUpdate(state, models.Order{Status: st})
	}
	view := renderView(state)

	want := []models.OrderStatus{
		models.StatusPending, models.StatusConfirmed, models.StatusPreparing,
		models.StatusReady, models.StatusPickedUp, models.StatusOnTheWay,
	}
	if got := completedStatuses(view); !reflect.DeepEqual(got, want) {
		t.Errorf("completed = %v; want %v", got, want)
	}
	if view.CurrentStatus != models.StatusOnTheWay {
		t.Errorf("CurrentStatus = %s; want ON_THE_WAY", view.CurrentStatus)
	}
}

func TestReconcileCancelled(t *testing.T) {
	state := newSessionState("order-1")
	state = applyOrderUpdate(state, models.Order{Status: models.StatusPreparing})
	state = applyOrderUpdate(state, models.Order{Status: models.StatusCancelled})
	view := renderView(state)

	if !view.Cancelled {
		t.Error("Cancelled = false; want true")
	}
	if view.CurrentStatus != models.StatusCancelled {
		t.Errorf("CurrentStatus = %s; want CANCELLED", view.CurrentStatus)
	}
	// The pipeline keeps what was already reached; cancellation is not a
	// pipeline stage.
	want := []models.OrderStatus{models.StatusPending, models.StatusConfirmed, models.StatusPreparing}
	if got := completedStatuses(view); !reflect.DeepEqual(got, want) {
		t.Errorf("completed = %v; want %v", got, want)
	}
}

func TestLocationDoesNotTouchPipeline(t *testing.T) {
	state := newSessionState("order-1")
	state = applyOrderUpdate(state, models.Order{Status: models.StatusConfirmed})
	before := renderView(state)

	state = applyLocation(state, models.CourierLocation{Latitude: -1.3, Longitude: 36.8, Nearby: true})
	after := renderView(state)

	if !reflect.DeepEqual(before.Timeline, after.Timeline) {
		t.Error("timeline changed after a location update")
	}
	if after.CurrentStatus != models.StatusConfirmed {
		t.Errorf("CurrentStatus = %s; want CONFIRMED", after.CurrentStatus)
	}
	if !after.CourierNearby {
		t.Error("CourierNearby = false; want true")
	}
	if after.Location == nil || after.Location.Latitude != -1.3 {
		t.Error("Location not recorded")
	}
}

func TestReconcileIsReplayable(t *testing.T) {
	// Replaying the same event history from scratch yields an identical
	// timeline; this is what makes resubscription idempotent.
	events := []models.Order{
		{Status: models.StatusPending},
		{Status: models.StatusConfirmed},
		{Status: models.StatusPreparing},
	}

	run := func() models.TrackingView {
		state := newSessionState("order-1")
		for _, ev := range events {
			state = applyOrderUpdate(state, ev)
		}
		return renderView(state)
	}

	first := run()
	second := run()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("replayed view differs:\nfirst  = %+v\nsecond = %+v", first, second)
	}
	if len(first.Timeline) != len(models.StatusPipeline) {
		t.Errorf("timeline length = %d; want %d (never duplicated)", len(first.Timeline), len(models.StatusPipeline))
	}
}
