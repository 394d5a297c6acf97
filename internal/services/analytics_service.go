package services

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// AnalyticsService keeps per-listing view and contact counters in Redis.
// Counters are advisory; a Redis outage degrades them to zero rather than
// failing the request.
type AnalyticsService struct {
	RDB *redis.Client
}

func viewKey(listingID int) string    { return fmt.Sprintf("listing:%d:views", listingID) }
func contactKey(listingID int) string { return fmt.Sprintf("listing:%d:contacts", listingID) }

func (s *AnalyticsService) RecordView(ctx context.Context, listingID int) {
	if s == nil || s.RDB == nil {
		return
	}
	if err := s.RDB.Incr(ctx, viewKey(listingID)).Err(); err != nil {
		log.Printf("analytics: failed to record view for listing %d: %v", listingID, err)
	}
}

func (s *AnalyticsService) RecordContact(ctx context.Context, listingID int) {
	if s == nil || s.RDB == nil {
		return
	}
	if err := s.RDB.Incr(ctx, contactKey(listingID)).Err(); err != nil {
		log.Printf("analytics: failed to record contact for listing %d: %v", listingID, err)
	}
}

func (s *AnalyticsService) GetCounters(ctx context.Context, listingID int) (views, contacts int64) {
	if s == nil || s.RDB == nil {
		return 0, 0
	}
	views, _ = s.RDB.Get(ctx, viewKey(listingID)).Int64()
	contacts, _ = s.RDB.Get(ctx, contactKey(listingID)).Int64()
	return views, contacts
}

func (s *AnalyticsService) DeleteCounters(ctx context.Context, listingID int) {
	if s == nil || s.RDB == nil {
		return
	}
	if err := s.RDB.Del(ctx, viewKey(listingID), contactKey(listingID)).Err(); err != nil {
		log.Printf("analytics: failed to drop counters for listing %d: %v", listingID, err)
	}
}
