package keymap

// Resolver maps key strings to actions per context.
type Resolver struct {
	bindings map[string]map[string]Action // context -> key -> action
	byAction map[Action][]string          // action -> keys (for help)
	help     map[string][]Binding         // context -> bindings
}

// NewResolver creates a resolver from bindings.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		bindings: make(map[string]map[string]Action),
		byAction: make(map[Action][]string),
		help:     make(map[string][]Binding),
	}
	for _, b := range bindings {
		keys := r.bindings[b.Context]
		if keys == nil {
			keys = make(map[string]Action)
			r.bindings[b.Context] = keys
		}
		for _, key := range b.Keys {
			keys[key] = b.Action
		}
		// Same action may be bound in several contexts
		r.byAction[b.Action] = append(r.byAction[b.Action], b.Keys...)
		r.help[b.Context] = append(r.help[b.Context], b)
	}
	for action, keys := range r.byAction {
		r.byAction[action] = dedupe(keys)
	}
	return r
}

// Resolve returns the action bound to key in context, falling back to the
// global bindings. It returns the empty action when the key is unbound.
func (r *Resolver) Resolve(context, key string) Action {
	if a, ok := r.bindings[context][key]; ok {
		return a
	}
	return r.bindings[ContextGlobal][key]
}

// KeysFor returns the keys bound to an action in any context.
func (r *Resolver) KeysFor(action Action) []string {
	return r.byAction[action]
}

// Help returns the bindings of a context in declaration order.
func (r *Resolver) Help(context string) []Binding {
	return r.help[context]
}

// dedupe removes duplicate strings from a slice.
func dedupe(s []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(s))
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}
