package rembg

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/chaos-io/cutout/util"
)

const probeTimeout = 10 * time.Second

// Status 最近一次探测的结果
type Status struct {
	Backend   string    `json:"backend"`
	Available bool      `json:"available"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Probe 按 cron 表达式定期探测分割后端是否可用
type Probe struct {
	remover Remover
	spec    string
	cron    *cron.Cron

	mu     sync.RWMutex
	status Status
}

func NewProbe(remover Remover, spec string) *Probe {
	return &Probe{
		remover: remover,
		spec:    spec,
		cron:    cron.New(),
		status:  Status{Backend: NameOf(remover)},
	}
}

// Start 先同步探测一次，再按 spec 调度；spec 为空时只探测一次
func (p *Probe) Start() error {
	p.Check(context.Background())
	if p.spec == "" {
		return nil
	}

	if _, err := p.cron.AddFunc(p.spec, func() {
		p.Check(context.Background())
	}); err != nil {
		return err
	}
	p.cron.Start()
	return nil
}

// Stop 停止调度并等待正在执行的探测结束
func (p *Probe) Stop() {
	<-p.cron.Stop().Done()
}

// Check 立即探测一次并更新状态
func (p *Probe) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	st := Status{Backend: NameOf(p.remover), Available: true, CheckedAt: time.Now()}
	if pinger, ok := p.remover.(Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			st.Available = false
			st.Error = err.Error()
		}
	}

	p.mu.Lock()
	prev := p.status
	p.status = st
	p.mu.Unlock()

	switch {
	case !st.Available && (prev.Available || prev.CheckedAt.IsZero()):
		util.Logger.Warn("segmentation backend unavailable",
			zap.String("backend", st.Backend), zap.String("error", st.Error))
	case st.Available && !prev.Available && !prev.CheckedAt.IsZero():
		util.Logger.Info("segmentation backend recovered", zap.String("backend", st.Backend))
	}

	return st
}

func (p *Probe) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}
