package kinds

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrymomot/mailroom/pkg/tmpl"
)

// Built-in kind names.
const (
	OrderConfirmation = "order-confirmation"
	ContactForm       = "contact-form"
)

// PrepareFunc normalizes caller variables into the shape a kind's template
// expects. It must return a new Map and never modify its input.
type PrepareFunc func(data tmpl.Map) tmpl.Map

// Kind binds an email kind to its template, subject and recipient policy.
type Kind struct {
	// Name identifies the kind, e.g. "order-confirmation".
	Name string
	// Template is the identifier handed to the template loader.
	Template string
	// Subject is a template rendered against the prepared data.
	Subject string
	// RecipientPaths are dot-paths probed in order for the recipient address.
	RecipientPaths []string
	// DefaultRecipient is used when no recipient path resolves.
	DefaultRecipient string
	// Prepare normalizes the variables. Nil means passthrough.
	Prepare PrepareFunc
}

// PrepareData runs the kind's preparator. The input is never modified.
func (k Kind) PrepareData(data tmpl.Map) tmpl.Map {
	if k.Prepare == nil {
		return data.Clone()
	}
	return k.Prepare(data)
}

// Recipient resolves the default recipient from prepared data.
// Returns an empty string when nothing resolves.
func (k Kind) Recipient(data tmpl.Map) string {
	for _, path := range k.RecipientPaths {
		if v, ok := tmpl.Lookup(data, path).(tmpl.String); ok {
			if addr := strings.TrimSpace(string(v)); addr != "" {
				return addr
			}
		}
	}
	return strings.TrimSpace(k.DefaultRecipient)
}

// Registry is an immutable set of kinds keyed by name.
// It is safe for concurrent use.
type Registry struct {
	kinds map[string]Kind
}

// NewRegistry creates a registry. Later kinds replace earlier ones with the same name.
func NewRegistry(kinds ...Kind) *Registry {
	r := &Registry{kinds: make(map[string]Kind, len(kinds))}
	for _, k := range kinds {
		r.kinds[k.Name] = k
	}
	return r
}

// Default returns the registry of built-in kinds configured from cfg.
func Default(cfg Config) *Registry {
	storeURL := cfg.StoreURL
	if storeURL == "" {
		storeURL = DefaultStoreURL
	}

	return NewRegistry(
		Kind{
			Name:           OrderConfirmation,
			Template:       OrderConfirmation,
			Subject:        "Order Confirmation #{{orderNumber}}",
			RecipientPaths: []string{"customerEmail", "email", "customer.email"},
			Prepare:        PrepareOrderConfirmation(storeURL),
		},
		Kind{
			Name:             ContactForm,
			Template:         ContactForm,
			Subject:          "Contact Form: {{#if subject}}{{subject}}{{else}}New Message{{/if}}",
			DefaultRecipient: cfg.OperatorEmail,
			Prepare:          PrepareContactForm,
		},
	)
}

// Get returns the kind registered under name.
func (r *Registry) Get(name string) (Kind, error) {
	k, ok := r.kinds[name]
	if !ok {
		return Kind{}, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return k, nil
}

// Names returns the registered kind names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Templates returns the distinct template identifiers of all kinds in sorted order.
func (r *Registry) Templates() []string {
	seen := make(map[string]struct{}, len(r.kinds))
	out := make([]string, 0, len(r.kinds))
	for _, k := range r.kinds {
		if _, ok := seen[k.Template]; ok {
			continue
		}
		seen[k.Template] = struct{}{}
		out = append(out, k.Template)
	}
	sort.Strings(out)
	return out
}
