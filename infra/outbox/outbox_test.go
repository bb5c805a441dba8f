package outbox

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestOutbox(t *testing.T) *Outbox {
	t.Helper()
	o, err := Open(filepath.Join(t.TempDir(), "outbox"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = o.Close() })
	return o
}

func TestOutboxLifecycle(t *testing.T) {
	o := openTestOutbox(t)

	require.NoError(t, o.PutNew(1, []byte(`{"seq":1}`)))
	rec, err := o.Get(1)
	require.NoError(t, err)
	assert.Equal(t, StateNew, rec.State)
	assert.Equal(t, []byte(`{"seq":1}`), rec.Payload)

	require.NoError(t, o.MarkSent(1))
	require.NoError(t, o.MarkFailed(1))
	require.NoError(t, o.MarkFailed(1))
	rec, err = o.Get(1)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, rec.State)
	assert.Equal(t, uint32(2), rec.Retries)
	assert.NotZero(t, rec.LastAttempt)
	assert.Equal(t, []byte(`{"seq":1}`), rec.Payload, "payload survives transitions")

	require.NoError(t, o.MarkAcked(1))
	require.NoError(t, o.Delete(1))
	_, err = o.Get(1)
	assert.True(t, errors.Is(err, pebble.ErrNotFound))
}

func TestScanByStateInSeqOrder(t *testing.T) {
	o := openTestOutbox(t)

	for _, seq := range []uint64{12, 3, 100, 7} {
		require.NoError(t, o.PutNew(seq, nil))
	}
	require.NoError(t, o.MarkAcked(7))

	var seen []uint64
	err := o.ScanByState(StateNew, func(rec Record) error {
		seen = append(seen, rec.Seq)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 12, 100}, seen)
}

func TestMarkUnknownEvent(t *testing.T) {
	o := openTestOutbox(t)
	err := o.MarkSent(42)
	assert.True(t, errors.Is(err, pebble.ErrNotFound))
}

func TestDecodeRecordTooShort(t *testing.T) {
	_, err := decodeRecord(1, []byte{0, 1})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "ACKED", StateAcked.String())
	assert.Equal(t, "UNKNOWN", State(9).String())
}

func TestEventRoundTrip(t *testing.T) {
	b, err := EncodeEvent(Event{Type: "append", List: "fruit", Value: 'p', Seq: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1,"type":"append","list":"fruit","value":112,"seq":2}`, string(b))

	e, err := DecodeEvent(b)
	require.NoError(t, err)
	assert.Equal(t, "fruit", e.List)
}
