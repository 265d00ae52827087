package render

import (
	"context"
)

// Renderer converts a field tree into a byte representation (HTML, JSON...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, root *Node, options Options) ([]byte, error)
}
