package sessions

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mobile-next/galleryview/types"
	"github.com/mobile-next/galleryview/utils"
	"github.com/mobile-next/galleryview/viewer"
	"github.com/sirupsen/logrus"
)

// DefaultCapacity is the number of viewer sessions kept before the least
// recently used one is evicted
const DefaultCapacity = 64

// Event is a navigation effect produced by a session
type Event struct {
	Type  string `json:"type"` // "next", "previous" or "close"
	Index int    `json:"index"`
}

// Session wraps a viewer controller for use from concurrent requests
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	controller *viewer.Controller
	events     []Event
	closed     bool
}

// Do runs fn on the controller with animations advanced before and after,
// and returns the resulting state with the events fn produced
func (s *Session) Do(fn func(c *viewer.Controller)) (viewer.State, []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.controller.Tick()
	if fn != nil {
		fn(s.controller)
	}
	state := s.controller.State()

	events := s.events
	s.events = nil
	return state, events
}

// Closed reports whether the viewer requested to be dismissed
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) record(eventType string) {
	// callbacks run inside Do, the lock is already held
	s.events = append(s.events, Event{Type: eventType, Index: s.controller.Index()})
}

// OpenOptions configures a new viewer session
type OpenOptions struct {
	Index    int
	Total    int
	Viewport types.Size
}

// Store keeps viewer sessions by id
type Store struct {
	cache      *lru.Cache[string, *Session]
	thresholds *viewer.Thresholds
	clock      viewer.Clock
}

// NewStore creates a store holding at most capacity sessions
func NewStore(capacity int, thresholds *viewer.Thresholds, clock viewer.Clock) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	cache, err := lru.NewWithEvict(capacity, func(id string, _ *Session) {
		utils.Verbose("Evicted viewer session %s", id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}

	if clock == nil {
		clock = viewer.SystemClock()
	}

	return &Store{cache: cache, thresholds: thresholds, clock: clock}, nil
}

// Open starts a new viewer session
func (st *Store) Open(opts OpenOptions) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: st.clock.Now(),
	}

	s.controller = viewer.NewController(viewer.Options{
		Index:      opts.Index,
		Total:      opts.Total,
		Viewport:   opts.Viewport,
		Thresholds: st.thresholds,
		Clock:      st.clock,
		Callbacks: viewer.Callbacks{
			OnNext:     func() { s.record("next") },
			OnPrevious: func() { s.record("previous") },
			OnClose: func() {
				s.closed = true
				s.record("close")
			},
		},
	})

	st.cache.Add(s.ID, s)
	utils.Logger().WithFields(logrus.Fields{
		"session": s.ID,
		"index":   s.controller.Index(),
		"total":   s.controller.Total(),
	}).Debug("Opened viewer session")
	return s
}

// Get finds a session by id
func (st *Store) Get(id string) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	s, ok := st.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return s, nil
}

// Close removes a session
func (st *Store) Close(id string) error {
	if _, err := st.Get(id); err != nil {
		return err
	}
	st.cache.Remove(id)
	utils.Verbose("Closed viewer session %s", id)
	return nil
}

// IDs returns the ids of all live sessions, sorted
func (st *Store) IDs() []string {
	ids := st.cache.Keys()
	sort.Strings(ids)
	return ids
}

// Len returns the number of live sessions
func (st *Store) Len() int {
	return st.cache.Len()
}

// CleanupAll drops every session
func (st *Store) CleanupAll() {
	if st.cache.Len() == 0 {
		return
	}
	utils.Verbose("Closing %d viewer sessions", st.cache.Len())
	st.cache.Purge()
}
