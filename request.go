package ticketbot

import (
	"context"
	"time"

	client "github.com/influxdata/influxdb1-client/v2"
	irc "gopkg.in/irc.v3"

	"github.com/weaselp/ticketbot/internal"
)

const timingKey internal.ContextKey = "context: timing"

type Timing struct {
	Start time.Time
	End   time.Time
}

func (t *Timing) Done() {
	t.End = time.Now()
}

func (t *Timing) Elapsed() time.Duration {
	return t.End.Sub(t.Start)
}

// Request wraps an incoming irc.Message along with a Context used for
// request-scoped values like handler timings.
type Request struct {
	Message *irc.Message
	Context context.Context
}

func NewRequest(ctx context.Context, m *irc.Message) *Request {
	if ctx == nil {
		ctx = context.TODO()
	}

	r := &Request{
		m,
		ctx,
	}

	r.SetTimingMap(make(map[string]*Timing))

	return r
}

func (r *Request) Copy() *Request {
	return &Request{
		r.Message.Copy(),
		r.Context,
	}
}

// FromChannel runs a simple check to see if a message came from a channel or
// a person. It is only designed to work on PRIVMSG lines.
func (r *Request) FromChannel() bool {
	if len(r.Message.Params) == 0 {
		return false
	}

	loc := r.Message.Params[0]

	return len(loc) > 0 && (loc[0] == '#' || loc[0] == '&')
}

func (r *Request) TimingMap() map[string]*Timing {
	return r.Context.Value(timingKey).(map[string]*Timing)
}

func (r *Request) SetTimingMap(tc map[string]*Timing) {
	r.Context = context.WithValue(r.Context, timingKey, tc)
}

func (r *Request) Timer(event string) *Timing {
	timer := &Timing{
		Start: time.Now(),
	}

	ctx := r.TimingMap()
	ctx[event] = timer

	return timer
}

// Log pushes all completed timings for this request at the bot's metrics
// queue. Points are dropped rather than blocking the read loop.
func (r *Request) Log(b *Bot) {
	if !b.influxDBConfig.Enabled {
		return
	}

	for event, timing := range r.TimingMap() {
		if timing.End.IsZero() {
			continue
		}

		point, err := client.NewPoint(
			"timing",
			map[string]string{"event": event, "command": r.Message.Command},
			map[string]interface{}{"duration_us": timing.Elapsed().Microseconds()},
			timing.Start,
		)
		if err != nil {
			b.log.WithError(err).Warn("Failed to build InfluxDB point")
			continue
		}

		select {
		case b.points <- point:
		default:
		}
	}
}
