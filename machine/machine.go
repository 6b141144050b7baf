package machine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mastercactapus/tubecut/coord"
	"github.com/mastercactapus/tubecut/gcode"
)

const (
	DefaultHomeFeedrate = 1000
	DefaultJogFeedrate  = 600

	statusQuery = "?"
)

type Machine struct {
	Adapter

	HomeFeedrate float64
	JogFeedrate  float64

	log *zap.Logger
}

func NewMachine(a Adapter, logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{
		Adapter:      a,
		HomeFeedrate: DefaultHomeFeedrate,
		JogFeedrate:  DefaultJogFeedrate,
		log:          logger,
	}
}

// Home moves the toolhead to the origin.
func (m *Machine) Home() {
	p := &gcode.Program{}
	p.MoveTo(coord.Point{}, m.HomeFeedrate)
	m.Send(p.Lines()[0].Command())
}

// PollStatus requests a status report unless other commands are waiting.
func (m *Machine) PollStatus() bool {
	return m.SendLowPriority(statusQuery)
}

// Jog moves the toolhead relative to its current position.
func (m *Machine) Jog(dx, dy float64) {
	m.Send(gcode.Jog(dx, dy, m.JogFeedrate))
}

// RunProgram queues p as one unit and returns the job ID it was logged under.
func (m *Machine) RunProgram(p *gcode.Program) string {
	id, _ := m.RunText(p.String())
	return id
}

// RunText queues program text and returns its job ID and line count.
func (m *Machine) RunText(program string) (string, int) {
	id := uuid.NewString()
	n := m.SendProgram(program)
	m.log.Info("program queued", zap.String("job", id), zap.Int("lines", n))
	return id, n
}

// Cut generates and queues the program for a single cut.
func (m *Machine) Cut(opt CutOptions) (string, error) {
	p, err := opt.Program()
	if err != nil {
		return "", err
	}
	return m.RunProgram(p), nil
}

// RunJob generates and queues one program for all cuts.
func (m *Machine) RunJob(cuts []CutOptions) (string, error) {
	p, err := JobProgram(cuts)
	if err != nil {
		return "", err
	}
	return m.RunProgram(p), nil
}

// StartPolling requests a status report every interval until ctx is done.
func (m *Machine) StartPolling(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			m.PollStatus()
		}
	}
}

// WaitIdle blocks until the adapter reports Idle or ctx is done.
func (m *Machine) WaitIdle(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for !m.Idle() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}
