package kinds

import (
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// Override replaces selected settings of a registered kind.
// Empty fields keep the current value.
type Override struct {
	Template  string `yaml:"template"`
	Subject   string `yaml:"subject"`
	Recipient string `yaml:"recipient"`
}

// Overrides maps kind names to their overrides.
//
//	order-confirmation:
//	  template: emails/order
//	  subject: "Your order {{orderNumber}}"
//	contact-form:
//	  recipient: support@example.com
type Overrides map[string]Override

// ParseOverrides decodes a YAML overrides document.
func ParseOverrides(data []byte) (Overrides, error) {
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOverrides, err)
	}
	return o, nil
}

// LoadOverrides reads and decodes the overrides file at path.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOverrides, err)
	}
	return ParseOverrides(data)
}

// WithOverrides returns a copy of the registry with o applied.
// Overrides naming an unregistered kind fail with ErrUnknownKind.
func (r *Registry) WithOverrides(o Overrides) (*Registry, error) {
	out := &Registry{kinds: maps.Clone(r.kinds)}
	if out.kinds == nil {
		out.kinds = make(map[string]Kind)
	}

	for name, ov := range o {
		k, ok := out.kinds[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
		}
		if ov.Template != "" {
			k.Template = ov.Template
		}
		if ov.Subject != "" {
			k.Subject = ov.Subject
		}
		if ov.Recipient != "" {
			k.DefaultRecipient = ov.Recipient
		}
		out.kinds[name] = k
	}
	return out, nil
}

// Load builds the built-in registry from cfg and applies cfg.KindsFile when set.
func Load(cfg Config) (*Registry, error) {
	r := Default(cfg)
	if cfg.KindsFile == "" {
		return r, nil
	}

	o, err := LoadOverrides(cfg.KindsFile)
	if err != nil {
		return nil, err
	}
	return r.WithOverrides(o)
}
