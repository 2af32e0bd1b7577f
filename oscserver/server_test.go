package oscserver

import (
	"context"
	"math"
	"net"
	"testing"
	"time"

	"github.com/Tomasito665/mtv-rhythm-generator/meter"
	"github.com/Tomasito665/mtv-rhythm-generator/session"
	"github.com/Tomasito665/mtv-rhythm-generator/unit"
	"github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/clock"
)

type recorder struct {
	msgs chan *osc.Message
}

func newRecorder() *recorder {
	return &recorder{msgs: make(chan *osc.Message, 16)}
}

func (r *recorder) Send(packet osc.Packet) error {
	r.msgs <- packet.(*osc.Message)
	return nil
}

func (r *recorder) next(t *testing.T) *osc.Message {
	t.Helper()

	select {
	case msg := <-r.msgs:
		return msg
	case <-time.After(10 * time.Second):
		require.FailNow(t, "no reply received")
		return nil
	}
}

func newReadySession(t *testing.T, ts meter.TimeSignature, stepUnit unit.Unit) *session.Session {
	t.Helper()

	s := session.New(clock.RealClock{}, session.Options{Seed: 1})
	_, err := s.Reset(ts, stepUnit, nil)
	require.NoError(t, err)
	_, err = s.Wait(context.Background())
	require.NoError(t, err)
	return s
}

func newTestDispatcher(t *testing.T, s session.Manager) (*Dispatcher, *recorder) {
	t.Helper()

	r := newRecorder()
	d, err := NewDispatcher(context.Background(), s, r)
	require.NoError(t, err)
	return d, r
}

func TestClosest(t *testing.T) {
	t.Parallel()

	d, r := newTestDispatcher(t, newReadySession(t, meter.MustNew(2, 4), unit.Quarter))
	d.Dispatch(osc.NewMessage(AddrClosest, float32(0), float32(1)))

	reply := r.next(t)
	assert.Equal(t, AddrPattern, reply.Address)
	assert.Equal(t, []interface{}{int64(2), "-x"}, reply.Arguments)
}

func TestRandom(t *testing.T) {
	t.Parallel()

	d, r := newTestDispatcher(t, newReadySession(t, meter.MustNew(2, 4), unit.Quarter))
	d.Dispatch(osc.NewMessage(AddrRandom, float32(0), float32(0), float32(0)))

	reply := r.next(t)
	require.Equal(t, AddrPattern, reply.Address)
	assert.Contains(t, []interface{}{int64(0), int64(1)}, reply.Arguments[0])

	d.Dispatch(osc.NewMessage(AddrRandom, float32(0.1)))
	assert.Equal(t, AddrError, r.next(t).Address)
}

func TestNonFiniteCurveGetsErrorReply(t *testing.T) {
	t.Parallel()

	d, r := newTestDispatcher(t, newReadySession(t, meter.MustNew(2, 4), unit.Quarter))
	nan := float32(math.NaN())

	d.Dispatch(osc.NewMessage(AddrRandom, float32(0.1), nan, float32(0.5)))
	reply := r.next(t)
	assert.Equal(t, AddrError, reply.Address)
	require.Len(t, reply.Arguments, 1)
	assert.Contains(t, reply.Arguments[0], "non-finite")

	d.Dispatch(osc.NewMessage(AddrClosest, float32(0), nan))
	assert.Equal(t, AddrError, r.next(t).Address)

	// the dispatcher keeps answering afterwards
	d.Dispatch(osc.NewMessage(AddrClosest, float32(0), float32(1)))
	assert.Equal(t, AddrPattern, r.next(t).Address)
}

func TestTension(t *testing.T) {
	t.Parallel()

	d, r := newTestDispatcher(t, newReadySession(t, meter.MustNew(2, 4), unit.Quarter))
	d.Dispatch(osc.NewMessage(AddrTension, int64(3)))

	reply := r.next(t)
	assert.Equal(t, AddrTension, reply.Address)
	assert.Equal(t, []interface{}{float32(0), float32(1)}, reply.Arguments)

	d.Dispatch(osc.NewMessage(AddrTension, int32(4)))
	assert.Equal(t, AddrError, r.next(t).Address)

	d.Dispatch(osc.NewMessage(AddrTension, "three"))
	assert.Equal(t, AddrError, r.next(t).Address)
}

func TestQueriesBeforeReady(t *testing.T) {
	t.Parallel()

	d, r := newTestDispatcher(t, session.New(clock.RealClock{}, session.Options{}))
	d.Dispatch(osc.NewMessage(AddrClosest, float32(0.5)))

	reply := r.next(t)
	assert.Equal(t, AddrError, reply.Address)
	require.Len(t, reply.Arguments, 1)
	assert.Contains(t, reply.Arguments[0], "not ready")
}

func TestBadArguments(t *testing.T) {
	t.Parallel()

	d, r := newTestDispatcher(t, newReadySession(t, meter.MustNew(2, 4), unit.Quarter))

	d.Dispatch(osc.NewMessage(AddrClosest, "zero", float32(1)))
	assert.Equal(t, AddrError, r.next(t).Address)

	d.Dispatch(osc.NewMessage(AddrMeter, int32(4), int32(4)))
	assert.Equal(t, AddrError, r.next(t).Address)

	d.Dispatch(osc.NewMessage(AddrMeter, int32(4), int32(3), "eighth"))
	assert.Equal(t, AddrError, r.next(t).Address)

	d.Dispatch(osc.NewMessage(AddrMeter, int32(4), int32(4), "dotted"))
	assert.Equal(t, AddrError, r.next(t).Address)
}

func TestMeterRefills(t *testing.T) {
	t.Parallel()

	s := newReadySession(t, meter.MustNew(2, 4), unit.Quarter)
	d, r := newTestDispatcher(t, s)
	d.Dispatch(osc.NewMessage(AddrMeter, int32(3), int32(4), "eighth"))

	reply := r.next(t)
	assert.Equal(t, AddrReady, reply.Address)
	assert.Equal(t, []interface{}{int32(6)}, reply.Arguments)
	assert.Equal(t, 6, s.Space().Dimensions())

	// curves are resampled to the new dimensions
	d.Dispatch(osc.NewMessage(AddrClosest, float32(0), float32(1)))
	reply = r.next(t)
	require.Equal(t, AddrPattern, reply.Address)
	assert.Len(t, reply.Arguments[1], 6)
}

func TestServeOverUDP(t *testing.T) {
	t.Parallel()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	port := conn.LocalAddr().(*net.UDPAddr).Port

	d, r := newTestDispatcher(t, newReadySession(t, meter.MustNew(2, 4), unit.Quarter))

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() {
		served <- Serve(ctx, conn, d)
	}()

	client := osc.NewClient("127.0.0.1", port)
	require.NoError(t, client.Send(osc.NewMessage(AddrTension, int64(2))))

	reply := r.next(t)
	assert.Equal(t, AddrTension, reply.Address)
	assert.Equal(t, []interface{}{float32(0), float32(1)}, reply.Arguments)

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		require.FailNow(t, "server did not stop")
	}
}

func TestNewReplier(t *testing.T) {
	t.Parallel()

	c, err := NewReplier("127.0.0.1:8766")
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = NewReplier("localhost")
	assert.Error(t, err)
}
