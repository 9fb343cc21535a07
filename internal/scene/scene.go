package scene

import "sort"

// Layer is a named rendering layer. Only its visibility is modelled here.
type Layer struct {
	Name    string
	visible bool
}

// NewLayer returns a visible layer.
func NewLayer(name string) *Layer {
	return &Layer{Name: name, visible: true}
}

// SetVisibility shows or hides the layer.
func (l *Layer) SetVisibility(visible bool) {
	l.visible = visible
}

// Visible reports whether the layer is shown.
func (l *Layer) Visible() bool {
	return l.visible
}

// Object is a single instance of a named object.
type Object struct {
	Name      string
	ID        int
	Variables *Variables
}

// RuntimeScene is the live state of a running scene.
type RuntimeScene struct {
	Name      string
	Variables *Variables

	layers     map[string]*Layer
	layerOrder []string
	objects    map[string][]*Object
	nextID     int
	tick       uint64
}

// New creates an empty scene with a visible base layer named "".
func New(name string) *RuntimeScene {
	s := &RuntimeScene{
		Name:      name,
		Variables: NewVariables(),
		layers:    make(map[string]*Layer),
		objects:   make(map[string][]*Object),
	}
	s.AddLayer("")
	return s
}

// AddLayer adds a layer, or returns the existing one with the same name.
func (s *RuntimeScene) AddLayer(name string) *Layer {
	if l, ok := s.layers[name]; ok {
		return l
	}
	l := NewLayer(name)
	s.layers[name] = l
	s.layerOrder = append(s.layerOrder, name)
	return l
}

// Layer returns the named layer if it exists.
func (s *RuntimeScene) Layer(name string) (*Layer, bool) {
	l, ok := s.layers[name]
	return l, ok
}

// GetLayer returns the named layer. A missing layer yields a detached layer
// that is not part of the scene, so callers can act on it without checks
// and without affecting anything.
func (s *RuntimeScene) GetLayer(name string) *Layer {
	if l, ok := s.layers[name]; ok {
		return l
	}
	return NewLayer(name)
}

// Layers returns the layers in creation order.
func (s *RuntimeScene) Layers() []*Layer {
	out := make([]*Layer, 0, len(s.layerOrder))
	for _, name := range s.layerOrder {
		out = append(out, s.layers[name])
	}
	return out
}

// AddObject creates a new instance of the named object.
func (s *RuntimeScene) AddObject(name string) *Object {
	s.nextID++
	obj := &Object{Name: name, ID: s.nextID, Variables: NewVariables()}
	s.objects[name] = append(s.objects[name], obj)
	return obj
}

// Objects returns every instance of the named object.
func (s *RuntimeScene) Objects(name string) []*Object {
	return s.objects[name]
}

// ObjectNames returns the names of the objects with at least one instance,
// in sorted order.
func (s *RuntimeScene) ObjectNames() []string {
	names := make([]string, 0, len(s.objects))
	for name, objs := range s.objects {
		if len(objs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Tick returns the number of completed ticks.
func (s *RuntimeScene) Tick() uint64 {
	return s.tick
}

// Advance marks the end of a tick.
func (s *RuntimeScene) Advance() {
	s.tick++
}
