package app

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ORDEP81/ticketsight/business/lifecycle/domain"
	oddsDomain "github.com/ORDEP81/ticketsight/business/odds/domain"
	ticketDomain "github.com/ORDEP81/ticketsight/business/ticket/domain"
	"github.com/ORDEP81/ticketsight/internal/apperror"
	"github.com/ORDEP81/ticketsight/internal/config"
	"github.com/ORDEP81/ticketsight/internal/domtree"
	"github.com/ORDEP81/ticketsight/internal/logger"
)

type stubLocator struct{}

// The fixture convention: ticket containers are divs carrying data-ticket.
func (stubLocator) FindTicketContainers(root *domtree.Node) []*domtree.Node {
	return root.FindAll(func(n *domtree.Node) bool {
		return n.IsElement("div") && n.HasAttr("data-ticket")
	})
}

type stubTicketParser struct {
	calls atomic.Int64
}

func (s *stubTicketParser) Parse(_ context.Context, root *domtree.Node) *ticketDomain.TicketData {
	s.calls.Add(1)
	data := ticketDomain.NewTicketData()
	data.Side = ticketDomain.SideYes
	data.Price = decimal.NewNullDecimal(decimal.RequireFromString("0.40"))
	data.Quantity = 10
	data.Finalize()
	return data
}

type stubDeriver struct{}

func (stubDeriver) Derive(context.Context, *ticketDomain.TicketData) (oddsDomain.AfterFeeResult, error) {
	return oddsDomain.AfterFeeResult{AfterFeeOdds: 133, RawOdds: 150}, nil
}

func testDetectionConfig() config.DetectionConfig {
	return config.DetectionConfig{
		MaxRetries:      2,
		InitialBackoff:  time.Millisecond,
		MaxBackoff:      5 * time.Millisecond,
		Timeout:         time.Second,
		BreakerFailures: 5,
		BreakerCooldown: 50 * time.Millisecond,
		ChangeDebounce:  10 * time.Millisecond,
	}
}

func newTestMonitor(t *testing.T, parser *stubTicketParser) *Monitor {
	t.Helper()
	m := NewMonitor(stubLocator{}, parser, stubDeriver{},
		testDetectionConfig(), logger.New(io.Discard, logger.LevelError, "test", nil))
	m.Start(context.Background())
	t.Cleanup(m.Stop)
	return m
}

func ticketSnapshot(value string) *domtree.Node {
	return domtree.NewElement("body").Append(
		domtree.NewElement("div", "data-ticket", "").Append(
			domtree.NewElement("input", "value", value),
			domtree.NewText("Yes 40¢"),
		),
	)
}

func emptySnapshot() *domtree.Node {
	return domtree.NewElement("body").Append(
		domtree.NewElement("div").Append(domtree.NewText("Market list")),
	)
}

func waitUpdate(t *testing.T, m *Monitor) Update {
	t.Helper()
	select {
	case u := <-m.Updates():
		return u
	case <-time.After(time.Second):
		t.Fatal("no update within a second")
		return Update{}
	}
}

func TestMonitorOpens(t *testing.T) {
	parser := &stubTicketParser{}
	m := newTestMonitor(t, parser)

	m.HandleSnapshot(context.Background(), ticketSnapshot("0.40"))

	u := waitUpdate(t, m)
	assert.Equal(t, domain.EventOpened, u.Event.Type)
	require.NotNil(t, u.Ticket, "opened event must carry the parsed ticket")
	assert.True(t, u.Ticket.Summary.CanProceed)
	require.NotNil(t, u.Odds, "opened event must carry the derived record")
	assert.Equal(t, 133, u.Odds.AfterFeeOdds)
	assert.Equal(t, domain.StateOpen, m.State())
}

func TestMonitorCloses(t *testing.T) {
	parser := &stubTicketParser{}
	m := newTestMonitor(t, parser)
	ctx := context.Background()

	m.HandleSnapshot(ctx, ticketSnapshot("0.40"))
	waitUpdate(t, m) // opened

	m.HandleSnapshot(ctx, emptySnapshot())
	u := waitUpdate(t, m)
	assert.Equal(t, domain.EventClosed, u.Event.Type)
	assert.Equal(t, domain.StateClosed, m.State())
}

func TestMonitorStaysClosedWithoutTicket(t *testing.T) {
	m := newTestMonitor(t, &stubTicketParser{})

	m.HandleSnapshot(context.Background(), emptySnapshot())
	select {
	case u := <-m.Updates():
		t.Fatalf("unexpected update %+v", u)
	case <-time.After(30 * time.Millisecond):
	}
}

func TestMonitorDebouncesChanges(t *testing.T) {
	parser := &stubTicketParser{}
	m := newTestMonitor(t, parser)
	ctx := context.Background()

	m.HandleSnapshot(ctx, ticketSnapshot("0.40"))
	waitUpdate(t, m) // opened
	before := parser.calls.Load()

	// A burst of edits inside one debounce window coalesces into a
	// single re-parse.
	m.HandleSnapshot(ctx, ticketSnapshot("0.41"))
	m.HandleSnapshot(ctx, ticketSnapshot("0.42"))
	m.HandleSnapshot(ctx, ticketSnapshot("0.43"))

	u := waitUpdate(t, m)
	assert.Equal(t, domain.EventChanged, u.Event.Type)
	assert.EqualValues(t, 1, parser.calls.Load()-before, "burst must coalesce into one re-parse")
}

func TestMonitorIgnoresUnchangedContent(t *testing.T) {
	parser := &stubTicketParser{}
	m := newTestMonitor(t, parser)
	ctx := context.Background()

	m.HandleSnapshot(ctx, ticketSnapshot("0.40"))
	waitUpdate(t, m) // opened

	// Same content, new snapshot object: fingerprint matches, no event.
	m.HandleSnapshot(ctx, ticketSnapshot("0.40"))
	select {
	case u := <-m.Updates():
		t.Fatalf("unexpected update %+v", u)
	case <-time.After(40 * time.Millisecond):
	}
}

func TestAwaitOpen(t *testing.T) {
	m := newTestMonitor(t, &stubTicketParser{})
	ctx := context.Background()

	t.Run("times out without a ticket", func(t *testing.T) {
		m.HandleSnapshot(ctx, emptySnapshot())
		_, err := m.AwaitOpen(ctx)
		require.Error(t, err)
		assert.True(t, apperror.IsCode(err, apperror.CodeDetectionTimeout),
			"err = %v, want DETECTION_TIMEOUT", err)
	})

	t.Run("finds a ticket", func(t *testing.T) {
		m.HandleSnapshot(ctx, ticketSnapshot("0.40"))
		container, err := m.AwaitOpen(ctx)
		require.NoError(t, err)
		require.NotNil(t, container)
		assert.True(t, container.HasAttr("data-ticket"), "wrong container returned")
	})
}

func TestFingerprintIgnoresLayoutChurn(t *testing.T) {
	a := ticketSnapshot("0.40")
	b := ticketSnapshot("0.40")
	// Styling-only attributes do not participate in the fingerprint.
	b.Find(func(n *domtree.Node) bool { return n.IsElement("div") }).SetAttr("class", "restyled")

	assert.Equal(t, domain.Fingerprint(a), domain.Fingerprint(b),
		"styling churn changed the fingerprint")
	assert.NotEqual(t, domain.Fingerprint(ticketSnapshot("0.40")),
		domain.Fingerprint(ticketSnapshot("0.41")),
		"value edit did not change the fingerprint")
}
