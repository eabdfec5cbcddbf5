// Package catalog holds the graph-wide table of model variables.
//
// Variables live in an arena of indexed slots. Operators refer to them by SlotID and
// never hold on to a variable directly: shape changes produced while compiling one
// operator are staged, and only become visible to the next operator after Commit.
package catalog

import (
	"github.com/born-ml/opfactory/internal/tensor"
	"github.com/pkg/errors"
)

// SlotID identifies a variable slot in a Catalog.
type SlotID int

// NoSlot marks tensors that do not live in the catalog (feed and synthetic tensors).
const NoSlot SlotID = -1

// ErrUncommitted is returned when an operation requires all staged writes to be committed.
var ErrUncommitted = errors.New("catalog has uncommitted shape writes")

// Variable is a named tensor slot shared across the whole graph.
type Variable struct {
	Name        string
	Shape       tensor.Shape
	Data        []float32 // Present iff the variable is a persisted weight.
	Persistable bool
}

// Clone returns a deep copy of the variable. Data is shared, it is never written.
func (v Variable) Clone() Variable {
	v.Shape = v.Shape.Clone()
	return v
}

// Catalog is the arena of model variables.
// It is not safe for concurrent use.
type Catalog struct {
	slots  []Variable
	byName map[string]SlotID
	staged map[SlotID]tensor.Shape
	epoch  int
}

// New creates a catalog from the loader's flat variable list.
// When several variables share a name, lookups return the first one.
func New(vars []Variable) *Catalog {
	c := &Catalog{
		slots:  make([]Variable, 0, len(vars)),
		byName: make(map[string]SlotID, len(vars)),
		staged: make(map[SlotID]tensor.Shape),
	}
	for _, v := range vars {
		c.Add(v)
	}
	return c
}

// Add appends a variable and returns its slot.
func (c *Catalog) Add(v Variable) SlotID {
	id := SlotID(len(c.slots))
	c.slots = append(c.slots, v.Clone())
	if _, exists := c.byName[v.Name]; !exists {
		c.byName[v.Name] = id
	}
	return id
}

// Len returns the number of slots.
func (c *Catalog) Len() int {
	return len(c.slots)
}

// Lookup returns the slot of the first variable with the given name.
func (c *Catalog) Lookup(name string) (SlotID, bool) {
	id, ok := c.byName[name]
	return id, ok
}

// Get returns a copy of the committed variable in a slot.
func (c *Catalog) Get(id SlotID) (Variable, error) {
	if err := c.check(id); err != nil {
		return Variable{}, err
	}
	return c.slots[id].Clone(), nil
}

// Shape returns the committed shape of a slot.
func (c *Catalog) Shape(id SlotID) (tensor.Shape, error) {
	if err := c.check(id); err != nil {
		return nil, err
	}
	return c.slots[id].Shape.Clone(), nil
}

// Stage records a shape write for a slot. It is not visible through Get or Shape until Commit.
// Staging the same slot twice keeps the last write.
func (c *Catalog) Stage(id SlotID, shape tensor.Shape) error {
	if err := c.check(id); err != nil {
		return err
	}
	c.staged[id] = shape.Clone()
	return nil
}

// HasStaged reports whether there are writes waiting for Commit.
func (c *Catalog) HasStaged() bool {
	return len(c.staged) > 0
}

// Commit publishes all staged writes and returns how many slots changed.
func (c *Catalog) Commit() int {
	changed := 0
	for id, shape := range c.staged {
		if !c.slots[id].Shape.Equal(shape) {
			changed++
		}
		c.slots[id].Shape = shape
	}
	clear(c.staged)
	c.epoch++
	return changed
}

// Discard drops all staged writes.
func (c *Catalog) Discard() {
	clear(c.staged)
}

// Epoch returns the number of commits performed so far.
func (c *Catalog) Epoch() int {
	return c.epoch
}

// Variables returns a snapshot of all committed variables, in slot order.
func (c *Catalog) Variables() []Variable {
	vars := make([]Variable, len(c.slots))
	for i, v := range c.slots {
		vars[i] = v.Clone()
	}
	return vars
}

func (c *Catalog) check(id SlotID) error {
	if id < 0 || int(id) >= len(c.slots) {
		return errors.Errorf("catalog slot %d out of range [0, %d)", id, len(c.slots))
	}
	return nil
}
