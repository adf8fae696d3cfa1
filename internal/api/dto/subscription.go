package dto

import (
	"github.com/billforge/billforge/internal/domain/subscription"
)

type SubscriptionResponse struct {
	*subscription.Subscription
}

// ListSubscriptionsResponse represents the response for listing subscriptions
type ListSubscriptionsResponse struct {
	Items []*SubscriptionResponse `json:"items"`
	Total int                     `json:"total"`
}
