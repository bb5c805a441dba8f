package service

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"linkedlist/domain/list"
	"linkedlist/infra/outbox"
	"linkedlist/infra/sequence"
	"linkedlist/infra/wal"
	"linkedlist/metrics"
	"linkedlist/snapshot"
)

var (
	ErrNotFound    = errors.New("list not found")
	ErrExists      = errors.New("list already exists")
	ErrInvalidName = errors.New("invalid list name")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// Deps are the collaborators of a ListService. Only Seq is required;
// a nil WAL, Snapshots, Outbox or Metrics switches that concern off.
type Deps struct {
	Seq       *sequence.Sequencer
	WAL       *wal.WAL
	Snapshots *snapshot.Store
	Outbox    *outbox.Outbox
	Metrics   *metrics.Metrics
	// Allocator supplies nodes for every list; nil means the heap.
	Allocator list.Allocator[int16]
}

/*
ListService is the ONLY entry point to the named lists.

Every mutation follows the same order under the service lock:
1. validate
2. reserve the node, so a refused allocation is never logged
3. log the mutation
4. apply it to the in-memory list
5. queue the change event and update metrics
*/
type ListService struct {
	mu    sync.Mutex
	lists map[string]*list.List[int16]
	nodes int
	alloc *reserver

	deps Deps
	log  *log.Entry
}

func NewListService(deps Deps) *ListService {
	if deps.Seq == nil {
		deps.Seq = sequence.New(0)
	}
	return &ListService{
		lists: make(map[string]*list.List[int16]),
		alloc: newReserver(deps.Allocator),
		deps:  deps,
		log:   log.WithField("component", "service"),
	}
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// Create constructs a new single-value list and returns its length.
func (s *ListService) Create(name string, v int16) (int, error) {
	if !validName.MatchString(name) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[name]; ok {
		return 0, fmt.Errorf("%w: %s", ErrExists, name)
	}

	if err := s.reserve(name); err != nil {
		return 0, err
	}
	seq := s.deps.Seq.Next()
	if err := s.logMutation(wal.RecordConstruct, seq, name, v); err != nil {
		s.alloc.cancel()
		return 0, err
	}
	if err := s.construct(name, v); err != nil {
		return 0, err
	}
	s.emit(wal.RecordConstruct, seq, name, v)

	s.log.WithField("list", name).Info("list created")
	return 1, nil
}

// Append adds v at the tail of the named list and returns the new length.
func (s *ListService) Append(name string, v int16) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if err := s.reserve(name); err != nil {
		return 0, err
	}
	seq := s.deps.Seq.Next()
	if err := s.logMutation(wal.RecordAppend, seq, name, v); err != nil {
		s.alloc.cancel()
		return 0, err
	}
	if err := s.append(name, l, v); err != nil {
		return 0, err
	}
	s.emit(wal.RecordAppend, seq, name, v)

	s.log.WithFields(log.Fields{"list": name, "value": v}).Debug("value appended")
	return l.Len(), nil
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

func (s *ListService) Length(name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return l.Len(), nil
}

// ForEach applies action to every value of the named list, head first.
// The service lock is held for the walk, so action must not call back
// into the service.
func (s *ListService) ForEach(name string, action list.Action[int16]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	l.ForEach(action)
	return nil
}

// Values returns a copy of the named list's values.
func (s *ListService) Values(name string) ([]int16, error) {
	var out []int16
	err := s.ForEach(name, func(v int16) {
		out = append(out, v)
	})
	return out, err
}

// Names returns the list names in sorted order.
func (s *ListService) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.lists))
	for name := range s.lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

//
// ──────────────────────────────────────────────────────────
// Teardown
// ──────────────────────────────────────────────────────────
//

// Close releases every list back to the allocator. The service must not
// be used afterwards.
func (s *ListService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, l := range s.lists {
		l.Release()
		delete(s.lists, name)
	}
	s.nodes = 0
	s.gauges()
}

//
// ──────────────────────────────────────────────────────────
// Internals (callers hold s.mu)
// ──────────────────────────────────────────────────────────
//

func (s *ListService) construct(name string, v int16) error {
	l, err := list.NewWithAllocator[int16](s.alloc, v)
	if err != nil {
		s.allocationFailed(name, err)
		return err
	}
	s.lists[name] = l
	s.nodes++
	if s.deps.Metrics != nil {
		s.deps.Metrics.Constructs.Inc()
	}
	s.gauges()
	return nil
}

func (s *ListService) append(name string, l *list.List[int16], v int16) error {
	if err := l.Append(v); err != nil {
		s.allocationFailed(name, err)
		return err
	}
	s.nodes++
	if s.deps.Metrics != nil {
		s.deps.Metrics.Appends.Inc()
	}
	s.gauges()
	return nil
}

func (s *ListService) reserve(name string) error {
	if err := s.alloc.reserve(); err != nil {
		s.allocationFailed(name, err)
		return err
	}
	return nil
}

func (s *ListService) allocationFailed(name string, err error) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.AllocationFailures.Inc()
	}
	s.log.WithError(err).WithField("list", name).Warn("node allocation refused")
}

func (s *ListService) gauges() {
	if s.deps.Metrics == nil {
		return
	}
	s.deps.Metrics.Nodes.Set(float64(s.nodes))
	s.deps.Metrics.Lists.Set(float64(len(s.lists)))
}

func (s *ListService) logMutation(t wal.RecordType, seq uint64, name string, v int16) error {
	if s.deps.WAL == nil {
		return nil
	}
	if err := s.deps.WAL.Append(wal.NewMutation(t, seq, name, v)); err != nil {
		return fmt.Errorf("log %s: %w", t, err)
	}
	return nil
}

// emit queues the change event. Delivery is best-effort: the mutation is
// already durable in the log.
func (s *ListService) emit(t wal.RecordType, seq uint64, name string, v int16) {
	if s.deps.Outbox == nil {
		return
	}
	payload, err := outbox.EncodeEvent(outbox.Event{Type: t.String(), List: name, Value: v, Seq: seq})
	if err == nil {
		err = s.deps.Outbox.PutNew(seq, payload)
	}
	if err != nil {
		s.log.WithError(err).WithField("seq", seq).Error("outbox write failed")
	}
}
