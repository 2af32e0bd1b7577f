package oscserver

import (
	"context"
	"net"

	"github.com/Tomasito665/mtv-rhythm-generator/logger"
	"github.com/Tomasito665/mtv-rhythm-generator/meter"
	"github.com/Tomasito665/mtv-rhythm-generator/rhythm"
	"github.com/Tomasito665/mtv-rhythm-generator/session"
	"github.com/Tomasito665/mtv-rhythm-generator/unit"
	"github.com/hypebeast/go-osc/osc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Incoming addresses.
const (
	AddrClosest = "/mtv/closest"
	AddrRandom  = "/mtv/random"
	AddrTension = "/mtv/tension"
	AddrMeter   = "/mtv/meter"
)

// Reply addresses.
const (
	AddrPattern = "/mtv/pattern"
	AddrReady   = "/mtv/ready"
	AddrError   = "/mtv/error"
)

// Replier sends reply packets back to the querying side. *osc.Client satisfies it.
type Replier interface {
	Send(packet osc.Packet) error
}

// Dispatcher answers tension queries received over OSC using a session.
type Dispatcher struct {
	ctx        context.Context
	session    session.Manager
	replier    Replier
	dispatcher *osc.StandardDispatcher
}

// NewDispatcher routes the query addresses to s and sends replies with r. Refills started by
// /mtv/meter stop waiting when ctx is done.
func NewDispatcher(ctx context.Context, s session.Manager, r Replier) (*Dispatcher, error) {
	d := &Dispatcher{
		ctx:        ctx,
		session:    s,
		replier:    r,
		dispatcher: osc.NewStandardDispatcher(),
	}

	handlers := map[string]func(*osc.Message) error{
		AddrClosest: d.handleClosest,
		AddrRandom:  d.handleRandom,
		AddrTension: d.handleTension,
		AddrMeter:   d.handleMeter,
	}
	for addr, h := range handlers {
		h := h
		if err := d.dispatcher.AddMsgHandler(addr, func(msg *osc.Message) {
			d.serve(msg, h)
		}); err != nil {
			return nil, errors.Wrapf(err, "registering %s", addr)
		}
	}

	return d, nil
}

// Dispatch implements osc.Dispatcher.
func (d *Dispatcher) Dispatch(packet osc.Packet) {
	if packet == nil {
		return
	}
	d.dispatcher.Dispatch(packet)
}

func (d *Dispatcher) serve(msg *osc.Message, h func(*osc.Message) error) {
	logger := logger.GetProjectLogger()
	logger.WithFields(logrus.Fields{"address": msg.Address, "num_args": len(msg.Arguments)}).Debug("OSC request")

	if err := h(msg); err != nil {
		logger.WithFields(logrus.Fields{"address": msg.Address}).Warnf("OSC request failed: %v", err)
		d.reply(osc.NewMessage(AddrError, err.Error()))
	}
}

func (d *Dispatcher) reply(msg *osc.Message) {
	if err := d.replier.Send(msg); err != nil {
		logger.GetProjectLogger().Errorf("error sending %s reply. err='%v'", msg.Address, err)
	}
}

func (d *Dispatcher) replyPattern(p *rhythm.Pattern) {
	d.reply(osc.NewMessage(AddrPattern, int64(p.ID()), p.String()))
}

// /mtv/closest f...
func (d *Dispatcher) handleClosest(msg *osc.Message) error {
	curve, err := floats(msg.Arguments)
	if err != nil {
		return err
	}

	p, err := d.session.Closest(curve)
	if err != nil {
		return err
	}
	d.replyPattern(p)
	return nil
}

// /mtv/random f(spread) f...
func (d *Dispatcher) handleRandom(msg *osc.Message) error {
	args, err := floats(msg.Arguments)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return errors.Errorf("%s expects a spread and a curve", AddrRandom)
	}

	p, err := d.session.RandomClose(args[1:], args[0])
	if err != nil {
		return err
	}
	d.replyPattern(p)
	return nil
}

// /mtv/tension h(id)
func (d *Dispatcher) handleTension(msg *osc.Message) error {
	if len(msg.Arguments) != 1 {
		return errors.Errorf("%s expects a pattern id", AddrTension)
	}

	var id rhythm.PatternID
	switch v := msg.Arguments[0].(type) {
	case int32:
		id = rhythm.PatternID(uint32(v))
	case int64:
		id = rhythm.PatternID(uint64(v))
	default:
		return errors.Errorf("%s expects an integer id, got %T", AddrTension, v)
	}

	mtv, err := d.session.MTV(id)
	if err != nil {
		return err
	}

	reply := osc.NewMessage(AddrTension)
	for _, v := range mtv {
		reply.Append(float32(v))
	}
	d.reply(reply)
	return nil
}

// /mtv/meter i(numerator) i(denominator) s(step unit)
func (d *Dispatcher) handleMeter(msg *osc.Message) error {
	if len(msg.Arguments) != 3 {
		return errors.Errorf("%s expects numerator, denominator and step unit", AddrMeter)
	}

	num, okNum := msg.Arguments[0].(int32)
	den, okDen := msg.Arguments[1].(int32)
	name, okName := msg.Arguments[2].(string)
	if !okNum || !okDen || !okName {
		return errors.Errorf("%s expects i i s arguments", AddrMeter)
	}

	ts, err := meter.New(int(num), int(den))
	if err != nil {
		return err
	}
	stepUnit, ok := unit.Parse(name)
	if !ok {
		return errors.Errorf("unknown step unit %q", name)
	}

	if _, err := d.session.Reset(ts, stepUnit, nil); err != nil {
		return err
	}

	go func() {
		sp, err := d.session.Wait(d.ctx)
		if err != nil {
			d.reply(osc.NewMessage(AddrError, err.Error()))
			return
		}
		d.reply(osc.NewMessage(AddrReady, int32(sp.Dimensions())))
	}()
	return nil
}

func floats(args []interface{}) ([]float64, error) {
	out := make([]float64, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case float32:
			out[i] = float64(v)
		case float64:
			out[i] = v
		case int32:
			out[i] = float64(v)
		case int64:
			out[i] = float64(v)
		default:
			return nil, errors.Errorf("argument %d: expected a number, got %T", i, arg)
		}
	}
	return out, nil
}

// ListenAndServe receives OSC packets on addr (UDP) and hands them to d until ctx is done.
func ListenAndServe(ctx context.Context, addr string, d osc.Dispatcher) error {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", addr)
	}
	return Serve(ctx, conn, d)
}

// Serve is ListenAndServe on an open connection. The connection is closed when ctx is done.
func Serve(ctx context.Context, conn net.PacketConn, d osc.Dispatcher) error {
	logger := logger.GetProjectLogger()
	logger.WithFields(logrus.Fields{"addr": conn.LocalAddr().String()}).Info("Serving OSC queries...")

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	server := &osc.Server{Dispatcher: d}
	err := server.Serve(conn)
	if ctx.Err() != nil {
		return nil
	}
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// NewReplier returns an OSC client sending to addr ("host:port").
func NewReplier(addr string) (*osc.Client, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, errors.Wrapf(err, "bad reply address %q", addr)
	}
	p, err := net.LookupPort("udp", port)
	if err != nil {
		return nil, errors.Wrapf(err, "bad reply port %q", port)
	}
	return osc.NewClient(host, p), nil
}
