package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"autoupgrader/internal/app/ports"
	"autoupgrader/internal/domain/bestiary"
)

var ErrInvalidMonster = errors.New("invalid monster")

// Collection is the emulated owned-monster list. It is the snapshot source
// and the change feed for the upgrader.
type Collection struct {
	mu      sync.Mutex
	items   []bestiary.Entity
	nextID  int
	subs    map[int]func(bestiary.Snapshot)
	nextSub int
}

func NewCollection(seed []bestiary.Entity) *Collection {
	c := &Collection{subs: map[int]func(bestiary.Snapshot){}}
	for _, e := range seed {
		if e.InstanceID == "" {
			e.InstanceID = c.allocID()
		}
		c.items = append(c.items, e)
	}
	return c
}

func (c *Collection) Snapshot(_ context.Context) (bestiary.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return bestiary.Snapshot(c.items).Clone(), nil
}

func (c *Collection) Subscribe(onChange func(bestiary.Snapshot)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = onChange
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
		})
	}
}

func (c *Collection) Add(e bestiary.Entity) (bestiary.Entity, error) {
	if e.SpeciesID <= 0 {
		return bestiary.Entity{}, fmt.Errorf("species %d: %w", e.SpeciesID, ErrInvalidMonster)
	}
	if e.Tier < 0 || e.Tier > bestiary.MaxTier || e.Level < 0 {
		return bestiary.Entity{}, fmt.Errorf("tier %d level %d: %w", e.Tier, e.Level, ErrInvalidMonster)
	}
	c.mu.Lock()
	if e.InstanceID == "" {
		e.InstanceID = c.allocID()
	} else if c.indexLocked(e.InstanceID) >= 0 {
		c.mu.Unlock()
		return bestiary.Entity{}, fmt.Errorf("instance %s: %w", e.InstanceID, ports.ErrConflict)
	}
	c.items = append(c.items, e)
	c.mu.Unlock()
	c.publish()
	return e, nil
}

func (c *Collection) SetLevel(instanceID string, level int) (bestiary.Entity, error) {
	if level < 0 {
		return bestiary.Entity{}, fmt.Errorf("level %d: %w", level, ErrInvalidMonster)
	}
	c.mu.Lock()
	i := c.indexLocked(instanceID)
	if i < 0 {
		c.mu.Unlock()
		return bestiary.Entity{}, fmt.Errorf("instance %s: %w", instanceID, ports.ErrNotFound)
	}
	c.items[i].Level = level
	out := c.items[i]
	c.mu.Unlock()
	c.publish()
	return out, nil
}

// Upgrade consumes the fodder instances and raises the base one tier. The
// upgraded base restarts at level 1.
func (c *Collection) Upgrade(baseID string, fodderIDs []string) (bestiary.Entity, error) {
	c.mu.Lock()
	i := c.indexLocked(baseID)
	if i < 0 {
		c.mu.Unlock()
		return bestiary.Entity{}, fmt.Errorf("base %s: %w", baseID, ports.ErrNotFound)
	}
	base := c.items[i]
	if base.Maxed() {
		c.mu.Unlock()
		return bestiary.Entity{}, fmt.Errorf("base %s already at tier %d: %w", baseID, bestiary.MaxTier, ports.ErrConflict)
	}
	consumed := make(map[string]struct{}, len(fodderIDs))
	for _, id := range fodderIDs {
		j := c.indexLocked(id)
		if j < 0 || id == baseID || c.items[j].SpeciesID != base.SpeciesID {
			c.mu.Unlock()
			return bestiary.Entity{}, fmt.Errorf("fodder %s: %w", id, ErrInvalidMonster)
		}
		consumed[id] = struct{}{}
	}
	kept := c.items[:0]
	for _, e := range c.items {
		if _, ok := consumed[e.InstanceID]; ok {
			continue
		}
		if e.InstanceID == baseID {
			e.Tier = e.EffectiveTier() + 1
			e.Level = 1
			base = e
		}
		kept = append(kept, e)
	}
	c.items = kept
	c.mu.Unlock()
	c.publish()
	return base, nil
}

func (c *Collection) publish() {
	c.mu.Lock()
	snapshot := bestiary.Snapshot(c.items).Clone()
	subs := make([]func(bestiary.Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()
	for _, fn := range subs {
		fn(snapshot)
	}
}

func (c *Collection) indexLocked(instanceID string) int {
	for i, e := range c.items {
		if e.InstanceID == instanceID {
			return i
		}
	}
	return -1
}

func (c *Collection) allocID() string {
	for {
		c.nextID++
		id := fmt.Sprintf("m-%d", c.nextID)
		if c.indexLocked(id) < 0 {
			return id
		}
	}
}
