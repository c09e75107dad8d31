package domtree

import (
	"testing"

	"github.com/ORDEP81/ticketsight/internal/apperror"
)

func buildFixture() *Node {
	return NewElement("div", "role", "dialog").Append(
		NewElement("button", "aria-pressed", "true").Append(NewText("Yes")),
		NewElement("button", "aria-pressed", "false").Append(NewText("No")),
		NewElement("div", "class", "price-row").Append(
			NewElement("label").Append(NewText("Limit price")),
			NewElement("input", "type", "number", "value", "0.42"),
		),
		NewElement("span").Append(NewText("Fee per contract: $0.02")),
	)
}

func TestText_CollapsesWhitespace(t *testing.T) {
	n := NewElement("div").Append(
		NewText("  Limit   "),
		NewElement("b").Append(NewText("price ")),
		NewText("\n 0.42 "),
	)
	if got := n.Text(); got != "Limit price 0.42" {
		t.Errorf("Text() = %q", got)
	}
}

func TestText_SkipsScriptAndStyle(t *testing.T) {
	n := NewElement("div").Append(
		NewElement("script").Append(NewText("var x = 1;")),
		NewText("visible"),
	)
	if got := n.Text(); got != "visible" {
		t.Errorf("Text() = %q", got)
	}
}

func TestFind_DocumentOrder(t *testing.T) {
	root := buildFixture()
	first := root.Find(func(n *Node) bool { return n.IsElement("button") })
	if first == nil || first.Text() != "Yes" {
		t.Fatalf("expected first button to be Yes, got %v", first)
	}

	all := root.FindAll(func(n *Node) bool { return n.IsElement("button") })
	if len(all) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(all))
	}
}

func TestClosest_And_Ancestor(t *testing.T) {
	root := buildFixture()
	input := root.Find(func(n *Node) bool { return n.IsElement("input") })
	if input == nil {
		t.Fatal("fixture input not found")
	}

	row := input.Closest(func(n *Node) bool { return n.HasClassContaining("price") })
	if row == nil || row.Tag != "div" {
		t.Fatalf("Closest did not find the price row: %v", row)
	}

	if got := input.Ancestor(2); got != root {
		t.Errorf("Ancestor(2) should reach the root")
	}
	if got := input.Ancestor(10); got != root {
		t.Errorf("Ancestor past the root should clamp to root")
	}
}

func TestDetach_PanicsWithTicketDetached(t *testing.T) {
	root := buildFixture()
	root.Detach()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic from detached subtree")
		}
		err, ok := r.(error)
		if !ok || apperror.GetCode(err) != apperror.CodeTicketDetached {
			t.Errorf("expected TICKET_DETACHED panic, got %v", r)
		}
	}()
	_ = root.Text()
}

func TestParseHTMLString(t *testing.T) {
	snapshot := `<html><head><title>x</title></head><body>
		<div role="dialog">
			<button aria-pressed="true">Yes</button>
			<input type="number" value="0.42">
			<script>ignored()</script>
		</div>
	</body></html>`

	root, err := ParseHTMLString(snapshot)
	if err != nil {
		t.Fatalf("ParseHTMLString failed: %v", err)
	}

	dialog := root.Find(func(n *Node) bool { return n.AttrOr("role", "") == "dialog" })
	if dialog == nil {
		t.Fatal("dialog not found")
	}
	if got := dialog.Text(); got != "Yes" {
		t.Errorf("dialog text = %q, want %q", got, "Yes")
	}

	input := root.Find(func(n *Node) bool { return n.IsElement("input") })
	if input == nil {
		t.Fatal("input not found")
	}
	if v, _ := input.Attr("value"); v != "0.42" {
		t.Errorf("input value = %q", v)
	}
}

func TestParseHTMLString_DecodeFailure(t *testing.T) {
	// html.Parse is extremely lenient; a frame with no body content still
	// produces an empty tree rather than an error.
	root, err := ParseHTMLString("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Children()) != 0 {
		t.Errorf("expected empty tree, got %d children", len(root.Children()))
	}
}
