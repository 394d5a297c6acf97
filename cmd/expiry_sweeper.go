package main

import (
	"context"
	"log"
	"time"

	"liminmarket/internal/repositories"
)

const (
	sweepInterval = 10 * time.Minute
	sweepTimeout  = 1 * time.Minute
)

// startExpirySweeper runs the background cleanup loop: stories past their
// 24 hour window, listings past their lifetime, and stale refresh sessions.
func startExpirySweeper(ctx context.Context, listingRepo *repositories.ListingRepository, storyRepo *repositories.StoryRepository, userRepo *repositories.UserRepository, infoLog, errorLog *log.Logger) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		runOnce := func() {
			runCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
			defer cancel()

			now := time.Now()

			if n, err := storyRepo.ExpireStories(runCtx, now); err != nil {
				errorLog.Printf("expiry sweeper: failed to expire stories: %v", err)
			} else if n > 0 {
				infoLog.Printf("expiry sweeper: expired %d stories", n)
			}

			if n, err := listingRepo.ExpireListings(runCtx, now); err != nil {
				errorLog.Printf("expiry sweeper: failed to expire listings: %v", err)
			} else if n > 0 {
				infoLog.Printf("expiry sweeper: expired %d listings", n)
			}

			if n, err := userRepo.DeleteExpiredSessions(runCtx, now); err != nil {
				errorLog.Printf("expiry sweeper: failed to delete expired sessions: %v", err)
			} else if n > 0 {
				infoLog.Printf("expiry sweeper: deleted %d expired sessions", n)
			}
		}

		runOnce()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}()
}
