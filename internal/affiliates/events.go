package affiliates

const (
	TopicCommissionUpdated       = "affiliate.commission.updated"
	EventCommissionStatusUpdated = "CommissionStatusUpdated"
)

type CommissionUpdatedPayload struct {
	CommissionID    string  `json:"commission_id"`
	AffiliateCodeID string  `json:"affiliate_code_id"`
	Status          Status  `json:"status"`
	Commission      float64 `json:"commission"`
	ActorID         string  `json:"actor_id"`
}

func (c Commission) UpdatedPayload(actorID string) CommissionUpdatedPayload {
	return CommissionUpdatedPayload{
		CommissionID:    c.ID,
		AffiliateCodeID: c.AffiliateCodeID,
		Status:          c.Status,
		Commission:      c.View().Commission,
		ActorID:         actorID,
	}
}

// PartitionKey keeps one affiliate's commission events in order.
func PartitionKey(affiliateCodeID string) []byte { return []byte(affiliateCodeID) }
