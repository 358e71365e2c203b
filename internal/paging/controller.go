package paging

import (
	"fmt"

	"experiment-bot/internal/page"
)

// DefaultPageSize is used when no WithPageSize option is given.
const DefaultPageSize = 1

// Window is the slice of a dataset handed to a Renderer, together with
// its position.
type Window[T any] struct {
	Items  []T
	Number int // 1-based
	Count  int
}

// Renderer turns one window of items into a displayable page.
type Renderer[T any] interface {
	RenderPage(w Window[T]) (page.Page, error)
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc[T any] func(w Window[T]) (page.Page, error)

func (f RendererFunc[T]) RenderPage(w Window[T]) (page.Page, error) { return f(w) }

// Controls is the enablement state of the navigation affordances.
type Controls struct {
	CanRetreat bool
	CanAdvance bool
}

// Event is a navigation request.
type Event int

const (
	EventRefresh Event = iota
	EventRetreat
	EventAdvance
)

func (e Event) String() string {
	switch e {
	case EventRefresh:
		return "refresh"
	case EventRetreat:
		return "retreat"
	case EventAdvance:
		return "advance"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Update is what the presentation layer applies after a transition:
// the freshly rendered page and the control state, together.
type Update struct {
	Page     page.Page
	Controls Controls
}

type options struct {
	start int
	size  int
}

// Option configures a Controller.
type Option func(*options)

// WithStart positions the cursor on the page containing item i.
func WithStart(i int) Option { return func(o *options) { o.start = i } }

// WithPageSize sets the number of items per page.
func WithPageSize(n int) Option { return func(o *options) { o.size = n } }

// Controller is the pagination state machine. It is not safe for
// concurrent use; one controller belongs to one browsing session.
type Controller[T any] struct {
	data     *Dataset[T]
	renderer Renderer[T]
	controls Controls
}

func NewController[T any](items []T, r Renderer[T], opts ...Option) *Controller[T] {
	o := options{size: DefaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Controller[T]{
		data:     NewDataset(items, o.start, o.size),
		renderer: r,
	}
	c.updateControls()
	return c
}

// Dataset exposes the underlying dataset for inspection.
func (c *Controller[T]) Dataset() *Dataset[T] { return c.data }

// Controls is the control state after the last transition.
func (c *Controller[T]) Controls() Controls { return c.controls }

func (c *Controller[T]) updateControls() {
	n := c.data.Len()
	c.controls = Controls{
		CanRetreat: c.data.cursor > 0,
		CanAdvance: c.data.cursor < n-c.data.size,
	}
}

// RenderPage renders the current window without moving the cursor.
// Renderer errors are returned as is.
func (c *Controller[T]) RenderPage() (page.Page, error) {
	return c.renderer.RenderPage(Window[T]{
		Items:  c.data.Slice(),
		Number: c.data.PageNumber(),
		Count:  c.data.PageCount(),
	})
}

// Current returns the update for the current state, used for the first render.
func (c *Controller[T]) Current() (Update, error) {
	return c.Handle(EventRefresh)
}

func (c *Controller[T]) Advance() (Update, error) { return c.Handle(EventAdvance) }
func (c *Controller[T]) Retreat() (Update, error) { return c.Handle(EventRetreat) }

// Handle applies ev, recomputes the controls and re-renders.
func (c *Controller[T]) Handle(ev Event) (Update, error) {
	switch ev {
	case EventAdvance:
		c.data.advance()
	case EventRetreat:
		c.data.retreat()
	case EventRefresh:
	default:
		return Update{}, fmt.Errorf("unknown navigation event %v", ev)
	}
	c.updateControls()
	p, err := c.RenderPage()
	if err != nil {
		return Update{}, err
	}
	return Update{Page: p, Controls: c.controls}, nil
}
