package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedlist/domain/list"
	"linkedlist/infra/outbox"
	"linkedlist/infra/sequence"
	"linkedlist/infra/wal"
	"linkedlist/metrics"
	"linkedlist/snapshot"
)

type testEnv struct {
	dir   string
	wal   *wal.WAL
	snaps *snapshot.Store
	ob    *outbox.Outbox
	m     *metrics.Metrics
	alloc *list.PoolAllocator[int16]
}

func openEnv(t *testing.T, dir string, budget int64) *testEnv {
	t.Helper()
	w, err := wal.Open(wal.Config{Dir: filepath.Join(dir, "wal")})
	require.NoError(t, err)
	snaps, err := snapshot.Open(filepath.Join(dir, "snapshot"))
	require.NoError(t, err)
	ob, err := outbox.Open(filepath.Join(dir, "outbox"))
	require.NoError(t, err)

	env := &testEnv{dir: dir, wal: w, snaps: snaps, ob: ob, m: metrics.New(), alloc: list.NewPoolAllocator[int16](budget)}
	t.Cleanup(env.close)
	return env
}

// smallSegments reopens the log so that every record gets its own segment.
func (e *testEnv) smallSegments(t *testing.T) {
	t.Helper()
	require.NoError(t, e.wal.Close())
	w, err := wal.Open(wal.Config{Dir: filepath.Join(e.dir, "wal"), SegmentSize: 1})
	require.NoError(t, err)
	e.wal = w
}

func (e *testEnv) segments(t *testing.T) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(e.dir, "wal", "segment-*.wal"))
	require.NoError(t, err)
	return files
}

func (e *testEnv) close() {
	_ = e.wal.Close()
	_ = e.snaps.Close()
	_ = e.ob.Close()
}

func (e *testEnv) service() *ListService {
	return NewListService(Deps{
		Seq:       sequence.New(0),
		WAL:       e.wal,
		Snapshots: e.snaps,
		Outbox:    e.ob,
		Metrics:   e.m,
		Allocator: e.alloc,
	})
}

func createApple(t *testing.T, s *ListService, name string) {
	t.Helper()
	n, err := s.Create(name, 'A')
	require.NoError(t, err)
	require.Equal(t, 1, n)
	for _, c := range "pple" {
		_, err := s.Append(name, int16(c))
		require.NoError(t, err)
	}
}

func asString(vs []int16) string {
	b := make([]byte, len(vs))
	for i, v := range vs {
		b[i] = byte(v)
	}
	return string(b)
}

func TestCreateAppendQuery(t *testing.T) {
	s := NewListService(Deps{})
	createApple(t, s, "fruit")

	n, err := s.Length("fruit")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	vals, err := s.Values("fruit")
	require.NoError(t, err)
	assert.Equal(t, "Apple", asString(vals))

	n, err = s.Append("fruit", '!')
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, []string{"fruit"}, s.Names())
}

func TestErrors(t *testing.T) {
	s := NewListService(Deps{})

	_, err := s.Create("bad/name", 1)
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = s.Create("", 1)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = s.Create("a", 1)
	require.NoError(t, err)
	_, err = s.Create("a", 2)
	assert.ErrorIs(t, err, ErrExists)

	_, err = s.Append("missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Length("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.ForEach("missing", func(int16) {}), ErrNotFound)
}

func TestAllocationFailure(t *testing.T) {
	env := openEnv(t, t.TempDir(), 3)
	s := env.service()

	_, err := s.Create("l", 1)
	require.NoError(t, err)
	_, err = s.Append("l", 2)
	require.NoError(t, err)
	_, err = s.Append("l", 3)
	require.NoError(t, err)

	_, err = s.Append("l", 4)
	assert.ErrorIs(t, err, list.ErrAllocationFailure)
	_, err = s.Create("other", 1)
	assert.ErrorIs(t, err, list.ErrAllocationFailure)

	vals, err := s.Values("l")
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 2, 3}, vals)
	assert.Equal(t, 2.0, testutil.ToFloat64(env.m.AllocationFailures))
	assert.Equal(t, 3.0, testutil.ToFloat64(env.m.Nodes))
	assert.Equal(t, []string{"l"}, s.Names())
}

func TestRefusedMutationIsNotLogged(t *testing.T) {
	env := openEnv(t, t.TempDir(), 2)
	s := env.service()

	_, err := s.Create("l", 1)
	require.NoError(t, err)
	_, err = s.Append("l", 2)
	require.NoError(t, err)
	_, err = s.Append("l", 3)
	require.ErrorIs(t, err, list.ErrAllocationFailure)
	_, err = s.Create("x", 1)
	require.ErrorIs(t, err, list.ErrAllocationFailure)
	require.NoError(t, env.wal.Sync())

	// a larger budget must not resurrect the refused mutations
	env.alloc = list.NewPoolAllocator[int16](0)
	restored := env.service()
	require.NoError(t, restored.Restore())

	vals, err := restored.Values("l")
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 2}, vals)
	assert.Equal(t, []string{"l"}, restored.Names())
	assert.Equal(t, uint64(2), restored.deps.Seq.Current())
}

func TestFailedLogWriteIsNotRestored(t *testing.T) {
	env := openEnv(t, t.TempDir(), 0)
	env.smallSegments(t)
	s := env.service()

	_, err := s.Create("a", 1)
	require.NoError(t, err)

	// the next segment cannot be created, so the log refuses the write
	blocker := filepath.Join(env.dir, "wal", "segment-000001.wal")
	require.NoError(t, os.Mkdir(blocker, 0o755))

	_, err = s.Create("ghost", 7)
	require.Error(t, err)
	_, err = s.Append("a", 2)
	require.Error(t, err)
	assert.Equal(t, []string{"a"}, s.Names())
	assert.Equal(t, int64(1), env.alloc.Live(), "reserved nodes go back on a failed log write")

	require.NoError(t, os.Remove(blocker))
	_, err = s.Create("b", 2)
	require.NoError(t, err)
	require.NoError(t, env.wal.Sync())

	restored := env.service()
	require.NoError(t, restored.Restore())
	assert.Equal(t, []string{"a", "b"}, restored.Names())
	vals, err := restored.Values("a")
	require.NoError(t, err)
	assert.Equal(t, []int16{1}, vals)
}

func TestRestoreFromLog(t *testing.T) {
	dir := t.TempDir()
	env := openEnv(t, dir, 0)
	s := env.service()
	createApple(t, s, "fruit")
	_, err := s.Create("digits", 1)
	require.NoError(t, err)
	require.NoError(t, env.wal.Sync())

	restored := env.service()
	require.NoError(t, restored.Restore())

	vals, err := restored.Values("fruit")
	require.NoError(t, err)
	assert.Equal(t, "Apple", asString(vals))
	assert.Equal(t, []string{"digits", "fruit"}, restored.Names())

	// sequencing resumes after the replayed records
	assert.Equal(t, uint64(6), restored.deps.Seq.Current())
}

func TestSnapshotThenRestore(t *testing.T) {
	dir := t.TempDir()
	env := openEnv(t, dir, 0)
	s := env.service()
	createApple(t, s, "fruit")

	seq, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), seq)

	_, err = s.Append("fruit", 's')
	require.NoError(t, err)

	restored := env.service()
	require.NoError(t, restored.Restore())

	vals, err := restored.Values("fruit")
	require.NoError(t, err)
	assert.Equal(t, "Apples", asString(vals))
	assert.Equal(t, uint64(6), restored.deps.Seq.Current())
}

func TestSnapshotTruncatesLog(t *testing.T) {
	env := openEnv(t, t.TempDir(), 0)
	env.smallSegments(t)
	s := env.service()
	createApple(t, s, "fruit")
	require.Len(t, env.segments(t), 5)

	seq, err := s.Snapshot()
	require.NoError(t, err)
	require.Equal(t, uint64(5), seq)

	// only the current segment is left
	assert.Len(t, env.segments(t), 1)

	restored := env.service()
	require.NoError(t, restored.Restore())
	vals, err := restored.Values("fruit")
	require.NoError(t, err)
	assert.Equal(t, "Apple", asString(vals))
}

func TestSnapshotJob(t *testing.T) {
	env := openEnv(t, t.TempDir(), 0)
	s := env.service()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.RunSnapshotJob(ctx, 5*time.Millisecond)
	}()
	createApple(t, s, "fruit")

	snapSeq := func() bool {
		seq, err := env.snaps.Seq()
		return err == nil && seq == 5
	}
	require.Eventually(t, snapSeq, time.Second, 5*time.Millisecond)

	// no mutation, no new snapshot
	first, err := env.snaps.Read()
	require.NoError(t, err)
	time.Sleep(30 * time.Millisecond)
	again, err := env.snaps.Read()
	require.NoError(t, err)
	assert.True(t, first.Created.Equal(again.Created), "unchanged sequence must not be snapshotted")

	_, err = s.Append("fruit", 's')
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		seq, err := env.snaps.Seq()
		return err == nil && seq == 6
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("snapshot job did not stop after cancel")
	}
}

func TestSnapshotJobSkipsRestoredState(t *testing.T) {
	env := openEnv(t, t.TempDir(), 0)
	s := env.service()
	createApple(t, s, "fruit")
	_, err := s.Snapshot()
	require.NoError(t, err)
	stored, err := env.snaps.Read()
	require.NoError(t, err)

	restored := env.service()
	require.NoError(t, restored.Restore())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go restored.RunSnapshotJob(ctx, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	after, err := env.snaps.Read()
	require.NoError(t, err)
	assert.True(t, stored.Created.Equal(after.Created), "restored state is already in the snapshot")
}

func TestRestoreRejectsPopulatedService(t *testing.T) {
	s := NewListService(Deps{})
	_, err := s.Create("a", 1)
	require.NoError(t, err)
	assert.Error(t, s.Restore())
}

func TestMutationsQueueEvents(t *testing.T) {
	env := openEnv(t, t.TempDir(), 0)
	s := env.service()
	_, err := s.Create("l", 'x')
	require.NoError(t, err)
	_, err = s.Append("l", 'y')
	require.NoError(t, err)

	var events []outbox.Event
	err = env.ob.ScanByState(outbox.StateNew, func(rec outbox.Record) error {
		e, err := outbox.DecodeEvent(rec.Payload)
		events = append(events, e)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []outbox.Event{
		{V: 1, Type: "construct", List: "l", Value: 'x', Seq: 1},
		{V: 1, Type: "append", List: "l", Value: 'y', Seq: 2},
	}, events)
}

func TestCloseReleasesNodes(t *testing.T) {
	env := openEnv(t, t.TempDir(), 0)
	s := env.service()
	createApple(t, s, "a")
	createApple(t, s, "b")
	require.Equal(t, int64(10), env.alloc.Live())

	s.Close()
	assert.Zero(t, env.alloc.Live())
	assert.Zero(t, testutil.ToFloat64(env.m.Nodes))
	assert.Empty(t, s.Names())
}

func TestConcurrentAppendsAreSerialized(t *testing.T) {
	s := NewListService(Deps{})
	_, err := s.Create("c", 0)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = s.Append("c", 1)
			}
		}()
	}
	wg.Wait()

	n, err := s.Length("c")
	require.NoError(t, err)
	assert.Equal(t, 401, n)
}
