package scene

// ObjectsConcerned tracks the object instances picked by the conditions of
// the event being evaluated. A name that no condition has filtered yet refers
// to every instance in the scene; once filtered, later conditions and
// actions only see the picked instances.
type ObjectsConcerned struct {
	scene  *RuntimeScene
	picked map[string][]*Object
}

// NewObjectsConcerned returns a set where nothing has been picked yet.
func NewObjectsConcerned(s *RuntimeScene) *ObjectsConcerned {
	return &ObjectsConcerned{scene: s, picked: make(map[string][]*Object)}
}

// Get returns the instances currently concerned for name.
func (oc *ObjectsConcerned) Get(name string) []*Object {
	if objs, ok := oc.picked[name]; ok {
		return objs
	}
	if oc.scene == nil {
		return nil
	}
	return oc.scene.Objects(name)
}

// IsPicked reports whether a condition already filtered name.
func (oc *ObjectsConcerned) IsPicked(name string) bool {
	_, ok := oc.picked[name]
	return ok
}

// Pick keeps only the concerned instances of name for which keep returns
// true, and reports whether any instance remains.
func (oc *ObjectsConcerned) Pick(name string, keep func(*Object) bool) bool {
	current := oc.Get(name)
	kept := make([]*Object, 0, len(current))
	for _, obj := range current {
		if keep(obj) {
			kept = append(kept, obj)
		}
	}
	oc.picked[name] = kept
	return len(kept) > 0
}

// Restrict replaces the concerned instances of name.
func (oc *ObjectsConcerned) Restrict(name string, objs []*Object) {
	oc.picked[name] = append([]*Object(nil), objs...)
}

// Clone returns an independent copy, used to hand the picks of an event down
// to its sub-events without letting them leak back up.
func (oc *ObjectsConcerned) Clone() *ObjectsConcerned {
	c := &ObjectsConcerned{scene: oc.scene, picked: make(map[string][]*Object, len(oc.picked))}
	for name, objs := range oc.picked {
		c.picked[name] = append([]*Object(nil), objs...)
	}
	return c
}

// Merge adds the picks of other to oc. For names picked in both, the result
// is the union of the two instance lists, in first-seen order.
func (oc *ObjectsConcerned) Merge(other *ObjectsConcerned) {
	for name, objs := range other.picked {
		current, ok := oc.picked[name]
		if !ok {
			oc.picked[name] = append([]*Object(nil), objs...)
			continue
		}
		seen := make(map[*Object]struct{}, len(current))
		for _, obj := range current {
			seen[obj] = struct{}{}
		}
		for _, obj := range objs {
			if _, dup := seen[obj]; !dup {
				current = append(current, obj)
			}
		}
		oc.picked[name] = current
	}
}

// Names returns the names that have been picked, in no particular order.
func (oc *ObjectsConcerned) Names() []string {
	names := make([]string, 0, len(oc.picked))
	for name := range oc.picked {
		names = append(names, name)
	}
	return names
}
