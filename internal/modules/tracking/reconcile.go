package tracking

import "checkout-and-tracking/internal/models"

// sessionState is the accumulated reconciliation input for one tracked
// order: the set of statuses explicitly reported by the stream, plus the
// highest current-status ordinal ever seen. The rendered timeline is derived
// from scratch from this state on every event, so out-of-order snapshots can
// never regress a status that was already completed.
type sessionState struct {
	orderID   string
	highWater int
	seen      map[models.OrderStatus]bool
	payment   models.PaymentStatus
	cancelled bool
	location  *models.CourierLocation
	nearby    bool
}

func newSessionState(orderID string) sessionState {
	return sessionState{
		orderID:   orderID,
		highWater: -1,
		seen:      make(map[models.OrderStatus]bool),
	}
}

// applyOrderUpdate folds an order snapshot into the state. Explicit statuses
// are remembered individually; the coarse current-status field only ever
// raises the high-water mark. Both survive dropped and reordered events.
func applyOrderUpdate(s sessionState, o models.Order) sessionState {
	next := s
	next.seen = make(map[models.OrderStatus]bool, len(s.seen)+1)
	for k, v := range s.seen {
		next.seen[k] = v
	}

	if o.PaymentStatus != "" {
		next.payment = o.PaymentStatus
	}

	if o.Status == models.StatusCancelled {
		next.cancelled = true
		return next
	}

	if ord := o.Status.Ordinal(); ord >= 0 {
		next.seen[o.Status] = true
		if ord > next.highWater {
			next.highWater = ord
		}
	}
	return next
}

// applyLocation updates courier position and the proximity flag. A location
// update never advances or regresses the status pipeline.
func applyLocation(s sessionState, loc models.CourierLocation) sessionState {
	next := s
	next.location = &loc
	next.nearby = loc.Nearby
	return next
}

// renderView derives the full tracking view. A pipeline status is completed
// if it was explicitly reported, or if the order's current status ordinal is
// at or past it — the coarse field is the reliable one when per-status events
// get dropped by the transport.
func renderView(s sessionState) models.TrackingView {
	timeline := make([]models.TrackingHistoryItem, 0, len(models.StatusPipeline))
	for _, st := range models.StatusPipeline {
		completed := s.seen[st] || st.Ordinal() <= s.highWater
		timeline = append(timeline, models.TrackingHistoryItem{
			Status:    st,
			Message:   models.StatusMessage(st),
			Completed: completed,
		})
	}

	current := models.StatusPending
	if s.cancelled {
		current = models.StatusCancelled
	} else if s.highWater >= 0 {
		current = models.StatusPipeline[s.highWater]
	}

	delivered := s.seen[models.StatusDelivered] || s.highWater >= models.StatusDelivered.Ordinal()

	return models.TrackingView{
		OrderID:       s.orderID,
		CurrentStatus: current,
		PaymentStatus: s.payment,
		Timeline:      timeline,
		Location:      s.location,
		CourierNearby: s.nearby,
		Cancelled:     s.cancelled,
		Delivered:     delivered,
	}
}
