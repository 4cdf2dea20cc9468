package definition

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/legends/internal/compiler"
)

// Catalog holds the top-level definitions of one or more packs, keyed by
// name. Each entry roots an independent tree.
type Catalog struct {
	Events map[string]*Event
	Sites  map[string]*Site
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{Events: map[string]*Event{}, Sites: map[string]*Site{}}
}

// AddEvent registers e under its top-level name.
func (c *Catalog) AddEvent(e *Event) error {
	name := e.TopLevelName()
	if name == "" {
		return errors.New("event has neither definitionName nor description")
	}
	if _, dup := c.Events[name]; dup {
		return fmt.Errorf("duplicate event %q", name)
	}
	c.Events[name] = e
	return nil
}

// AddSite registers s under its name.
func (c *Catalog) AddSite(s *Site) error {
	if s.Name == "" {
		return errors.New("site has no name")
	}
	if _, dup := c.Sites[s.Name]; dup {
		return fmt.Errorf("duplicate site %q", s.Name)
	}
	c.Sites[s.Name] = s
	return nil
}

// Roots returns every top-level definition, events then sites, each in
// name order.
func (c *Catalog) Roots() []TopLevel {
	roots := make([]TopLevel, 0, len(c.Events)+len(c.Sites))
	for _, name := range sortedKeys(c.Events) {
		roots = append(roots, c.Events[name])
	}
	for _, name := range sortedKeys(c.Sites) {
		roots = append(roots, c.Sites[name])
	}
	return roots
}

// Attach attaches every tree to comp. Trees are independent, so they attach
// concurrently; errors are joined in root order.
func (c *Catalog) Attach(ctx context.Context, comp *compiler.Compiler) error {
	return c.each(ctx, func(root TopLevel) error {
		return Attach(root, comp, nil)
	})
}

// Compile compiles every attached tree concurrently and joins the errors
// in root order.
func (c *Catalog) Compile(ctx context.Context) error {
	return c.each(ctx, func(root TopLevel) error {
		return Compile(root)
	})
}

func (c *Catalog) each(ctx context.Context, fn func(TopLevel) error) error {
	roots := c.Roots()
	errs := make([]error, len(roots))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, root := range roots {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = fn(root)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Lookup resolves an address such as event:Ambush/Results[0]/Effects[1] or
// site:Keep/SubSites.
func (c *Catalog) Lookup(path string) (Definition, error) {
	segments := strings.Split(path, "/")
	kind, name, ok := strings.Cut(segments[0], ":")
	if !ok {
		return nil, notFound(path, "address must start with event:<name> or site:<name>")
	}

	var cur Definition
	switch kind {
	case "event":
		if e, found := c.Events[name]; found {
			cur = e
		}
	case "site":
		if s, found := c.Sites[name]; found {
			cur = s
		}
	default:
		return nil, notFound(path, fmt.Sprintf("unknown root kind %q", kind))
	}
	if cur == nil {
		return nil, notFound(path, fmt.Sprintf("no %s named %q", kind, name))
	}

	for _, seg := range segments[1:] {
		next, found := childBySegment(cur, seg)
		if !found {
			return nil, notFound(path, fmt.Sprintf("%s has no child %s", cur.Schema().Kind, seg))
		}
		cur = next
	}
	return cur, nil
}

func childBySegment(d Definition, seg string) (Definition, bool) {
	for _, child := range d.Schema().Children(d) {
		if child.Segment == seg {
			return child.Def, true
		}
	}
	return nil, false
}

func notFound(path, msg string) error {
	return &ProtocolError{Code: ErrCodeNotFound, Path: path, Message: msg}
}

// Walk visits every definition depth first, parents before children, in
// root order. Paths are computed from the tree, so Walk works before Attach.
func (c *Catalog) Walk(fn func(path string, d Definition) error) error {
	for _, root := range c.Roots() {
		if err := walk(root.Schema().Kind+":"+root.TopLevelName(), root, fn); err != nil {
			return err
		}
	}
	return nil
}

func walk(path string, d Definition, fn func(string, Definition) error) error {
	if err := fn(path, d); err != nil {
		return err
	}
	for _, child := range d.Schema().Children(d) {
		if err := walk(path+"/"+child.Segment, child.Def, fn); err != nil {
			return err
		}
	}
	return nil
}
