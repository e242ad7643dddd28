package app

// SubscriberCount exposes the live subscriber count to external tests.
func SubscriberCount(h *Hub) int { return h.subscriberCount() }
