package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"tangerine/internal/cache"
	"tangerine/internal/middleware"
	"tangerine/internal/models"
	"tangerine/internal/observability"
	"tangerine/internal/repository"

	"gorm.io/gorm"
)

// ScoreConfig holds the trending formula's knobs. The weights are policy:
// any positive values keep the score monotonic in favorites and comments.
type ScoreConfig struct {
	Gravity        float64
	FavoriteWeight float64
	CommentWeight  float64
	ViewWeight     float64
	Scale          float64
}

// DefaultScoreConfig mirrors the production defaults. Views carry a tiny
// weight because their magnitude dwarfs the other signals.
var DefaultScoreConfig = ScoreConfig{
	Gravity:        1.5,
	FavoriteWeight: 3.0,
	CommentWeight:  2.0,
	ViewWeight:     0.01,
	Scale:          100.0,
}

// TrendingService derives per-post scores from favorites, comments, views,
// and recency, and maintains the trending_posts projection. Recomputes run
// on a single worker goroutine fed by a deduplicated queue, so each post's
// score is written by at most one recompute at a time.
type TrendingService struct {
	trendingRepo repository.TrendingRepository
	postRepo     repository.PostRepository
	cfg          ScoreConfig

	queue   chan uint
	mu      sync.Mutex
	pending map[uint]bool

	now func() time.Time
}

func NewTrendingService(
	trendingRepo repository.TrendingRepository,
	postRepo repository.PostRepository,
	cfg ScoreConfig,
) *TrendingService {
	if cfg.Gravity <= 0 {
		cfg.Gravity = DefaultScoreConfig.Gravity
	}
	if cfg.Scale <= 0 {
		cfg.Scale = DefaultScoreConfig.Scale
	}
	return &TrendingService{
		trendingRepo: trendingRepo,
		postRepo:     postRepo,
		cfg:          cfg,
		queue:        make(chan uint, 1000),
		pending:      make(map[uint]bool),
		now:          time.Now,
	}
}

// Score computes the trending score from raw signals. Pure and deterministic:
// log-smoothed weighted engagement over a power-law decay of hours since the
// post's last activity.
func (s *TrendingService) Score(signals repository.TrendingSignals, now time.Time) float64 {
	hours := now.Sub(signals.LastActivityAt).Hours()
	if hours < 0 {
		hours = 0
	}

	weighted := float64(signals.Favorites)*s.cfg.FavoriteWeight +
		float64(signals.Comments)*s.cfg.CommentWeight +
		float64(signals.Views)*s.cfg.ViewWeight
	if weighted < 0 {
		weighted = 0
	}

	return math.Log10(weighted+1) * s.cfg.Scale / math.Pow(hours+2, s.cfg.Gravity)
}

// Invalidate marks a post's score stale and schedules an async recompute.
// The cached score and ranking are dropped immediately so readers never see
// the stale number; the enqueue is non-blocking and deduplicated.
func (s *TrendingService) Invalidate(ctx context.Context, postID uint) {
	cache.InvalidateTrending(ctx, postID)

	s.mu.Lock()
	if s.pending[postID] {
		s.mu.Unlock()
		return
	}
	s.pending[postID] = true
	s.mu.Unlock()

	select {
	case s.queue <- postID:
	default:
		s.mu.Lock()
		delete(s.pending, postID)
		s.mu.Unlock()
		observability.TrendingQueueDrops.Inc()
		middleware.Logger.Warn("Trending recompute queue full, dropping", slog.Uint64("post_id", uint64(postID)))
	}
}

// Start runs the recompute worker until ctx is cancelled.
func (s *TrendingService) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case postID := <-s.queue:
				s.mu.Lock()
				delete(s.pending, postID)
				s.mu.Unlock()

				if _, err := s.recompute(ctx, postID, "worker"); err != nil {
					middleware.Logger.Error("Trending recompute failed",
						slog.Uint64("post_id", uint64(postID)),
						slog.String("error", err.Error()))
				}
			}
		}
	}()
}

// ScoreOf returns the post's current score, recomputing read-through when no
// cached value exists.
func (s *TrendingService) ScoreOf(ctx context.Context, postID uint) (float64, error) {
	var score float64
	hit, err := cache.GetJSON(ctx, cache.TrendingScoreKey(postID), &score)
	if err == nil && hit {
		return score, nil
	}
	return s.recompute(ctx, postID, "read_through")
}

// recompute gathers signals, derives the score, and writes both the
// trending_posts projection row and the cached score.
func (s *TrendingService) recompute(ctx context.Context, postID uint, trigger string) (float64, error) {
	start := time.Now()

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The post vanished between the write and the recompute; the
			// projection row goes with it.
			_ = s.trendingRepo.Delete(ctx, postID)
			return 0, models.NewNotFoundError("Post", postID)
		}
		return 0, err
	}

	signals, err := s.trendingRepo.Signals(ctx, postID)
	if err != nil {
		return 0, err
	}

	score := s.Score(*signals, s.now())
	entry := &models.TrendingPost{
		PostID:         postID,
		Score:          score,
		LastActivityAt: signals.LastActivityAt,
		ComputedAt:     s.now(),
	}
	if err := s.trendingRepo.Upsert(ctx, entry); err != nil {
		return 0, err
	}

	_ = cache.SetJSON(ctx, cache.TrendingScoreKey(postID), score, cache.TrendingScoreTTL)
	cache.Invalidate(ctx, cache.TrendingRankingKey)

	observability.TrendingRecomputes.WithLabelValues(trigger).Inc()
	observability.TrendingRecomputeLatency.Observe(time.Since(start).Seconds())
	return score, nil
}

// TopN returns the highest-ranked posts, cache-aside on the shared ranking
// key. Ties by score break toward most recent activity.
func (s *TrendingService) TopN(ctx context.Context, n int) ([]*models.TrendingPost, error) {
	if n < 1 {
		n = 10
	}
	if n > 100 {
		n = 100
	}

	// The cached list always holds the full window so every n is served from
	// the same entry.
	var entries []*models.TrendingPost
	err := cache.Aside(ctx, cache.TrendingRankingKey, &entries, cache.TrendingRankTTL, func() error {
		var fetchErr error
		entries, fetchErr = s.trendingRepo.TopN(ctx, 100)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}
