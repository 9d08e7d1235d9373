package views

// orderedMap keeps values in first-insertion order of their keys.
type orderedMap[V any] struct {
	keys   []string
	values map[string]*V
}

func newOrderedMap[V any]() *orderedMap[V] {
	return &orderedMap[V]{values: map[string]*V{}}
}

func (m *orderedMap[V]) getOrCreate(key string, create func() V) *V {
	if v, ok := m.values[key]; ok {
		return v
	}
	v := create()
	m.keys = append(m.keys, key)
	m.values[key] = &v
	return &v
}

func (m *orderedMap[V]) len() int {
	return len(m.keys)
}

func (m *orderedMap[V]) each(fn func(v *V)) {
	for _, key := range m.keys {
		fn(m.values[key])
	}
}

// node is one level of a reconstructed tree: a value plus its children.
type node[O any, I any] struct {
	value    O
	children *orderedMap[I]
}

func newNode[O any, I any](value O) node[O, I] {
	return node[O, I]{value: value, children: newOrderedMap[I]()}
}

func (n *node[O, I]) childValues() []I {
	out := make([]I, 0, n.children.len())
	n.children.each(func(v *I) {
		out = append(out, *v)
	})
	return out
}
