package dxf

import (
	"errors"
	"fmt"
	"slices"

	"github.com/philipparndt/gotoolpath/pkg/toolpath"
)

// ErrLayerNotFound is returned when a drawing has no entities on a layer
var ErrLayerNotFound = errors.New("layer not found")

// Drawing holds the supported entities of a DXF file grouped by layer
type Drawing struct {
	Name    string
	layers  map[string][]toolpath.Entity
	order   []string
	Skipped int
}

// NewDrawing creates an empty drawing
func NewDrawing(name string) *Drawing {
	return &Drawing{
		Name:   name,
		layers: make(map[string][]toolpath.Entity),
	}
}

// Add appends an entity to a layer; layers keep their first-seen order
func (d *Drawing) Add(layer string, entity toolpath.Entity) {
	if _, ok := d.layers[layer]; !ok {
		d.order = append(d.order, layer)
	}
	d.layers[layer] = append(d.layers[layer], entity)
}

// LayerNames returns the layers in the order they appear in the file
func (d *Drawing) LayerNames() []string {
	return slices.Clone(d.order)
}

// Layer returns the entities of one layer
func (d *Drawing) Layer(name string) ([]toolpath.Entity, error) {
	entities, ok := d.layers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrLayerNotFound, name, d.order)
	}
	return entities, nil
}

// EntityCount returns the number of supported entities on all layers
func (d *Drawing) EntityCount() int {
	n := 0
	for _, entities := range d.layers {
		n += len(entities)
	}
	return n
}
