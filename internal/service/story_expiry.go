package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"sociogram/internal/cache"
	"sociogram/internal/config"
	"sociogram/internal/realtime"
	"sociogram/internal/repository"
)

// ExpiryAnnouncer periodically announces stories whose expiry lapsed since
// the previous sweep. The broadcast is advisory: visibility is decided by the
// listing filter alone, and MongoDB's TTL monitor handles physical deletion
// on its own schedule. A missed sweep only delays the storyExpired event.
type ExpiryAnnouncer struct {
	storyRepo   repository.StoryRepository
	cache       cache.Cache
	broadcaster realtime.Broadcaster
	interval    time.Duration
	now         func() time.Time

	scheduler gocron.Scheduler

	mut       sync.Mutex
	lastSweep time.Time
}

func NewExpiryAnnouncer(storyRepo repository.StoryRepository, cacheLayer cache.Cache,
	broadcaster realtime.Broadcaster, cfg *config.Config) *ExpiryAnnouncer {

	return &ExpiryAnnouncer{
		storyRepo:   storyRepo,
		cache:       cacheLayer,
		broadcaster: broadcaster,
		interval:    cfg.Stories.SweepEvery,
		now:         time.Now,
		lastSweep:   time.Now(),
	}
}

func (a *ExpiryAnnouncer) Start() error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(a.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			a.Sweep(ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule expiry sweep: %w", err)
	}

	scheduler.Start()
	a.scheduler = scheduler
	return nil
}

func (a *ExpiryAnnouncer) Stop() error {
	if a.scheduler == nil {
		return nil
	}
	return a.scheduler.Shutdown()
}

// Sweep announces every story that expired in (lastSweep, now] and drops the
// stories aggregate key so the next listing reflects the lapse immediately.
func (a *ExpiryAnnouncer) Sweep(ctx context.Context) {
	a.mut.Lock()
	from := a.lastSweep
	to := a.now()
	a.lastSweep = to
	a.mut.Unlock()

	expired, err := a.storyRepo.ListExpiredBetween(ctx, from, to)
	if err != nil {
		log.Warn().Err(err).Msg("expiry sweep query failed")
		return
	}
	if len(expired) == 0 {
		return
	}

	a.cache.Invalidate(ctx, cache.KeyStories)

	for _, story := range expired {
		a.broadcaster.Broadcast(realtime.EventStoryExpired, map[string]string{
			"storyId": story.ID.Hex(),
		})
	}

	log.Info().Int("count", len(expired)).Msg("announced expired stories")
}
