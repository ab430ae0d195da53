package semantic

import (
	"errors"
	"fmt"

	"github.com/brimdata/sqm/compiler/semantic/sqm"
	"github.com/brimdata/sqm/metamodel"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

type Options struct {
	// Strict rejects constructs outside the standard query language.
	Strict  bool
	Logger  *zap.Logger
	Metrics *Metrics
}

// Context is the state of one statement compile.  A Context is used for
// exactly one call to Analyze and is not safe for concurrent use.
type Context struct {
	model   metamodel.Model
	strict  bool
	logger  *zap.Logger
	metrics *Metrics
	id      ksuid.KSUID
	used    bool

	// elements is the from-element arena.  The id of elements[k] is k+1.
	elements []*sqm.FromElement
	joins    map[joinKey]*sqm.FromElement
	nalias   int
	params   *paramCollector
}

// joinKey identifies the join of an attribute off of a from-element.  The
// attribute is named by its dotted path relative to the from-element so
// that attributes reached through embeddables are distinct.
type joinKey struct {
	lhs       int
	attribute string
}

func NewContext(model metamodel.Model, opts Options) *Context {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	id := ksuid.New()
	return &Context{
		model:   model,
		strict:  opts.Strict,
		logger:  logger.Named("semantic").With(zap.Stringer("compile", id)),
		metrics: opts.Metrics,
		id:      id,
		joins:   make(map[joinKey]*sqm.FromElement),
		params:  newParamCollector(),
	}
}

// ID identifies the compile in log output.
func (c *Context) ID() ksuid.KSUID {
	return c.id
}

func (c *Context) Strict() bool {
	return c.strict
}

// FromElement returns the from-element with the given id or nil.
func (c *Context) FromElement(id int) *sqm.FromElement {
	if id < 1 || id > len(c.elements) {
		return nil
	}
	return c.elements[id-1]
}

// FromElements returns every from-element created by the compile in order
// of creation.
func (c *Context) FromElements() []*sqm.FromElement {
	return c.elements
}

func (c *Context) register(f *sqm.FromElement) {
	c.elements = append(c.elements, f)
	f.ID = len(c.elements)
}

func (c *Context) generateAlias() string {
	alias := fmt.Sprintf("<gen:%d>", c.nalias)
	c.nalias++
	return alias
}

func (c *Context) lookupJoin(lhs *sqm.FromElement, attribute string) *sqm.FromElement {
	return c.joins[joinKey{lhs.ID, attribute}]
}

func (c *Context) cacheJoin(lhs *sqm.FromElement, attribute string, join *sqm.FromElement) {
	key := joinKey{lhs.ID, attribute}
	if _, ok := c.joins[key]; !ok {
		c.joins[key] = join
	}
}

var errContextUsed = errors.New("semantic context already used")

func (c *Context) acquire() error {
	if c.used {
		return errContextUsed
	}
	c.used = true
	return nil
}
