package validator

// Registry holds rules in evaluation order.
type Registry struct {
	rules []Rule
	byKey map[string]Rule
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]Rule)}
}

// Register appends a rule. A rule registered under an existing key replaces it in place.
func (r *Registry) Register(rule Rule) {
	if _, ok := r.byKey[rule.RuleKey()]; ok {
		for i := range r.rules {
			if r.rules[i].RuleKey() == rule.RuleKey() {
				r.rules[i] = rule
			}
		}
	} else {
		r.rules = append(r.rules, rule)
	}
	r.byKey[rule.RuleKey()] = rule
}

// Get returns the rule for a given key, or nil if not found.
func (r *Registry) Get(key string) Rule {
	return r.byKey[key]
}

// All returns the rules in evaluation order.
func (r *Registry) All() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}
