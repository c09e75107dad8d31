package bridge

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/ORDEP81/ticketsight/internal/config"
	"github.com/ORDEP81/ticketsight/internal/domtree"
	"github.com/ORDEP81/ticketsight/internal/logger"
)

type recordingSink struct {
	snapshots chan *domtree.Node
}

func (r *recordingSink) HandleSnapshot(_ context.Context, root *domtree.Node) {
	r.snapshots <- root
}

func startBridge(t *testing.T, sink SnapshotSink) *Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s := NewServer(config.BridgeConfig{ListenAddr: "127.0.0.1:0", MaxFramesPerSec: 100},
		sink, logger.New(io.Discard, logger.LevelError, "test", nil))
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	})
	return s
}

func dialBridge(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws://"+s.Addr()+"/snapshots", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func TestBridgeDeliversSnapshots(t *testing.T) {
	sink := &recordingSink{snapshots: make(chan *domtree.Node, 4)}
	s := startBridge(t, sink)
	conn := dialBridge(t, s)
	ctx := context.Background()

	err := wsjson.Write(ctx, conn, Frame{
		Type: FrameSnapshot,
		HTML: `<div class="order-ticket"><button aria-pressed="true">Yes</button></div>`,
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case root := <-sink.snapshots:
		btn := root.Find(func(n *domtree.Node) bool { return n.IsElement("button") })
		if btn == nil || btn.AttrOr("aria-pressed", "") != "true" {
			t.Fatal("snapshot markup not preserved")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot never reached the sink")
	}
}

func TestBridgeClosedFrameYieldsEmptyTree(t *testing.T) {
	sink := &recordingSink{snapshots: make(chan *domtree.Node, 4)}
	s := startBridge(t, sink)
	conn := dialBridge(t, s)

	if err := wsjson.Write(context.Background(), conn, Frame{Type: FrameClosed}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case root := <-sink.snapshots:
		if ticket := root.Find(func(n *domtree.Node) bool { return n.HasAttr("data-ticket") }); ticket != nil {
			t.Fatal("closed frame produced a ticket container")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("closed frame never reached the sink")
	}
}

func TestBridgeSkipsUndecodableFrames(t *testing.T) {
	sink := &recordingSink{snapshots: make(chan *domtree.Node, 4)}
	s := startBridge(t, sink)
	conn := dialBridge(t, s)
	ctx := context.Background()

	// Unknown frame types are ignored; the connection stays usable.
	if err := wsjson.Write(ctx, conn, Frame{Type: "bogus"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := wsjson.Write(ctx, conn, Frame{Type: FrameSnapshot, HTML: "<p>ok</p>"}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case <-sink.snapshots:
	case <-time.After(2 * time.Second):
		t.Fatal("valid frame after a bogus one never arrived")
	}
}
