package service

import (
	"context"
	"sync"

	"github.com/alanyoungcy/polyradar/internal/domain"
)

type fakeScanner struct {
	result  domain.ScanResult
	err     error
	lastReq domain.ScanRequest
}

func (f *fakeScanner) Scan(_ context.Context, req domain.ScanRequest) (domain.ScanResult, error) {
	f.lastReq = req
	return f.result, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type published struct {
	channel string
	payload []byte
}

type fakeBus struct {
	mu   sync.Mutex
	msgs []published
}

func (b *fakeBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, published{channel, payload})
	return nil
}

func (b *fakeBus) Subscribe(context.Context, string) (<-chan []byte, error) {
	return make(chan []byte), nil
}

type notification struct {
	event, title, message string
}

type fakeNotifier struct {
	sent []notification
}

func (n *fakeNotifier) Notify(_ context.Context, event, title, message string) error {
	n.sent = append(n.sent, notification{event, title, message})
	return nil
}

type fakePlacer struct {
	result any
	err    error
	calls  int
}

func (p *fakePlacer) MarketOrder(context.Context, domain.TradeRequest) (any, error) {
	p.calls++
	return p.result, p.err
}

func (p *fakePlacer) BuildMarketOrderCommand(req domain.TradeRequest) []string {
	return []string{"polymarket", "clob", "market-order", "--token", req.Token, "--side", string(req.Side)}
}
