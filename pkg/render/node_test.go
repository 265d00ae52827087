package render_test

import (
	"testing"

	"github.com/goliatone/go-formengine/pkg/render"
)

func TestNodeWalkAndWidgets(t *testing.T) {
	root := sampleTree()
	root.Children = append(root.Children, &render.Node{Kind: render.KindUnsupported, ID: "root_bad", Reason: "Unknown field type x"})

	widgets := root.Widgets()
	if len(widgets) != 1 || widgets[0].Component != "text" {
		t.Fatalf("unexpected widgets: %+v", widgets)
	}
	markers := root.Markers()
	if len(markers) != 1 || markers[0].Reason != "Unknown field type x" {
		t.Fatalf("unexpected markers: %+v", markers)
	}
	if root.Find("missing") != nil {
		t.Fatalf("expected nil for unknown id")
	}
	if got := root.Find("root_owner_email").FieldPath(); got != "owner.email" {
		t.Fatalf("FieldPath = %q", got)
	}
}

func TestNodeChangeRespectsDisabled(t *testing.T) {
	var got []any
	node := &render.Node{OnChange: func(value any) { got = append(got, value) }}
	node.Change("a")
	node.Disabled = true
	node.Change("b")
	node.Disabled = false
	node.ReadOnly = true
	node.Change("c")

	if len(got) != 1 || got[0] != "a" {
		t.Fatalf("unexpected changes: %v", got)
	}

	var focused string
	node.OnFocus = func(id string, _ any) { focused = id }
	node.ID = "root_x"
	node.Focus(nil)
	if focused != "root_x" {
		t.Fatalf("focus not forwarded")
	}
	var nilNode *render.Node
	nilNode.Change("x")
	nilNode.Blur("x")
}

func TestNodeAddRemove(t *testing.T) {
	var calls []string
	node := &render.Node{
		OnAdd:    func() { calls = append(calls, "add") },
		OnRemove: func() { calls = append(calls, "remove") },
	}
	node.Add()
	node.Remove()
	node.ReadOnly = true
	node.Add()
	node.Remove()
	(&render.Node{}).Add()

	if len(calls) != 2 || calls[0] != "add" || calls[1] != "remove" {
		t.Fatalf("unexpected calls: %v", calls)
	}
}
