package notifier

import (
	"context"
	"ctchen222/tictactoe-solo/internal/game"
	"log/slog"
	"sync"
)

// Update is one committed transition of a game. A higher Revision is a
// newer state of the same game.
type Update struct {
	GameID   string
	Revision int64
	State    game.State
}

// Broker fans committed game states out to the subscribers of that game.
// Publishing never blocks: a subscriber that falls behind loses its oldest
// pending update, since only the latest state matters for rendering.
type Broker struct {
	mu     sync.Mutex
	subs   map[string]map[chan Update]struct{}
	buffer int
}

// NewBroker creates a Broker whose subscriber channels hold buffer updates.
func NewBroker(buffer int) *Broker {
	if buffer < 1 {
		buffer = 1
	}
	return &Broker{
		subs:   make(map[string]map[chan Update]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers interest in gameID. The returned cancel func closes
// the channel and must be called once the subscriber is done.
func (b *Broker) Subscribe(gameID string) (<-chan Update, func()) {
	ch := make(chan Update, b.buffer)

	b.mu.Lock()
	if b.subs[gameID] == nil {
		b.subs[gameID] = make(map[chan Update]struct{})
	}
	b.subs[gameID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[gameID], ch)
			if len(b.subs[gameID]) == 0 {
				delete(b.subs, gameID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers state to every subscriber of gameID.
func (b *Broker) Publish(ctx context.Context, gameID string, revision int64, state game.State) {
	b.mu.Lock()
	defer b.mu.Unlock()

	update := Update{GameID: gameID, Revision: revision, State: state}
	for ch := range b.subs[gameID] {
		select {
		case ch <- update:
			continue
		default:
		}
		// Full: drop the stale update and retry once.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- update:
		default:
			slog.WarnContext(ctx, "dropping game update for slow subscriber", "game.id", gameID)
		}
	}
}

// Subscribers returns how many subscribers gameID has.
func (b *Broker) Subscribers(gameID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[gameID])
}
