package enum

import "encoding/json"

// Tier is the entitlement level of an identity.
type Tier int

const (
	TierFree       Tier = 0
	TierSubscribed Tier = 1
)

func (t Tier) String() string {
	if t == TierSubscribed {
		return "subscribed"
	}
	return "free"
}

func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}
