package cache

import "fmt"

// DashboardKey caches the folded dashboard aggregate per user filter.
// userID is empty for the unfiltered view.
func DashboardKey(userID string) string {
	return fmt.Sprintf("dashboard:%s", userID)
}

func RateLimitKey(client string) string {
	return fmt.Sprintf("ratelimit:%s", client)
}
