package orders

const EventOrderStatusUpdated = "OrderStatusUpdated"

type StatusUpdatedPayload struct {
	OrderID         string `json:"order_id"`
	OrderNumber     string `json:"order_number"`
	UserID          string `json:"user_id"`
	Status          Status `json:"status"`
	TrackingNumber  string `json:"tracking_number,omitempty"`
	TrackingCarrier string `json:"tracking_carrier,omitempty"`
	ActorID         string `json:"actor_id"` // admin who made the change
}

func (r Record) StatusUpdatedPayload(actorID string) StatusUpdatedPayload {
	d := r.Detail()
	return StatusUpdatedPayload{
		OrderID:         r.ID,
		OrderNumber:     r.OrderNumber,
		UserID:          d.UserID,
		Status:          r.Status,
		TrackingNumber:  d.TrackingNumber,
		TrackingCarrier: d.TrackingCarrier,
		ActorID:         actorID,
	}
}
