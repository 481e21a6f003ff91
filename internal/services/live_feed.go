package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/cache"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/donor"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/metrics"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// DonorsChangedChannel carries the blood group whose discoverable set
// changed.
const DonorsChangedChannel = "bloodlink:donors:changed"

type DonorCounter interface {
	CountDiscoverable(ctx context.Context, group donor.BloodGroup) (int64, error)
}

// LiveFeed pushes "N live donors" counts to subscribers. Without Redis,
// changes are only seen by the instance that made them.
type LiveFeed struct {
	counter DonorCounter
	redis   *redis.Client
	metrics *metrics.Metrics
	sf      singleflight.Group

	mu   sync.Mutex
	subs map[donor.BloodGroup]map[*Subscription]struct{}
	// seq numbers count queries per group in start order.
	seq map[donor.BloodGroup]uint64
}

func NewLiveFeed(counter DonorCounter, client *cache.Client, m *metrics.Metrics) *LiveFeed {
	f := &LiveFeed{
		counter: counter,
		metrics: m,
		subs: make(map[donor.BloodGroup]map[*Subscription]struct{}),
		seq:  make(map[donor.BloodGroup]uint64),
	}
	if client != nil {
		f.redis = client.Client
	}
	return f
}

// Subscription receives the latest count for one blood group. C only ever
// holds the most recent value. Close is idempotent and must be called.
type Subscription struct {
	C <-chan int64

	ch    chan int64
	done  chan struct{}
	group donor.BloodGroup
	feed  *LiveFeed
	once  sync.Once
	seen  uint64 // seq of the newest count offered, guarded by feed.mu
}

// Subscribe registers for counts of group and delivers the current count
// immediately. The subscription is also closed when ctx ends.
func (f *LiveFeed) Subscribe(ctx context.Context, group donor.BloodGroup) (*Subscription, error) {
	ch := make(chan int64, 1)
	sub := &Subscription{C: ch, ch: ch, done: make(chan struct{}), group: group, feed: f}

	f.mu.Lock()
	if f.subs[group] == nil {
		f.subs[group] = make(map[*Subscription]struct{})
	}
	f.subs[group][sub] = struct{}{}
	seq := f.nextSeq(group)
	f.mu.Unlock()
	f.metrics.LiveSubscribers.Inc()

	n, err := f.counter.CountDiscoverable(ctx, group)
	if err != nil {
		sub.Close()
		return nil, err
	}
	f.mu.Lock()
	if _, open := f.subs[group][sub]; open {
		sub.offer(seq, n)
	}
	f.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()
	return sub, nil
}

// Done is closed once the subscription is closed.
func (s *Subscription) Done() <-chan struct{} { return s.done }

func (s *Subscription) Close() {
	s.once.Do(func() {
		f := s.feed
		f.mu.Lock()
		delete(f.subs[s.group], s)
		if len(f.subs[s.group]) == 0 {
			delete(f.subs, s.group)
		}
		close(s.done)
		f.mu.Unlock()
		f.metrics.LiveSubscribers.Dec()
	})
}

// Count returns the discoverable count for group. Concurrent calls for the
// same group share one query, which outlives any single caller's
// cancellation.
func (f *LiveFeed) Count(ctx context.Context, group donor.BloodGroup) (int64, error) {
	shared := context.WithoutCancel(ctx)
	v, err, _ := f.sf.Do(string(group), func() (interface{}, error) {
		return f.counter.CountDiscoverable(shared, group)
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// Notify announces that the discoverable set of each group may have changed.
func (f *LiveFeed) Notify(ctx context.Context, groups ...donor.BloodGroup) {
	for _, g := range groups {
		if !g.Valid() {
			continue
		}
		if f.redis != nil {
			err := f.redis.Publish(ctx, DonorsChangedChannel, string(g)).Err()
			if err == nil {
				continue
			}
			slog.Warn("live feed publish failed, refreshing locally", "blood_group", string(g), "error", err)
		}
		f.refresh(ctx, g)
	}
}

// Run relays change announcements from other instances until ctx ends. It
// returns immediately when Redis is not configured.
func (f *LiveFeed) Run(ctx context.Context) {
	if f.redis == nil {
		return
	}
	pubsub := f.redis.Subscribe(ctx, DonorsChangedChannel)
	defer pubsub.Close()

	msgs := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			g := donor.BloodGroup(msg.Payload)
			if g.Valid() {
				f.refresh(ctx, g)
			}
		}
	}
}

// nextSeq must be called with f.mu held.
func (f *LiveFeed) nextSeq(group donor.BloodGroup) uint64 {
	f.seq[group]++
	return f.seq[group]
}

// refresh queries the store directly so the count always starts after the
// change being announced. Subscribers never get a count older than one they
// were already offered.
func (f *LiveFeed) refresh(ctx context.Context, group donor.BloodGroup) {
	f.mu.Lock()
	if len(f.subs[group]) == 0 {
		f.mu.Unlock()
		return
	}
	seq := f.nextSeq(group)
	f.mu.Unlock()

	n, err := f.counter.CountDiscoverable(ctx, group)
	if err != nil {
		slog.Error("live feed count failed", "action", "live_feed_refresh", "blood_group", string(group), "error", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subs[group] {
		sub.offer(seq, n)
	}
}

// offer must be called with feed.mu held.
func (s *Subscription) offer(seq uint64, n int64) {
	if seq <= s.seen {
		return
	}
	s.seen = seq
	offer(s.ch, n)
}

// offer replaces any unread value in ch with v.
func offer(ch chan int64, v int64) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
