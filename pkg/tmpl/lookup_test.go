package tmpl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mailroom/pkg/tmpl"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	data := tmpl.Map{
		"customer": tmpl.Map{
			"name":    tmpl.String("Ada"),
			"address": tmpl.Map{"city": tmpl.String("Oslo")},
		},
		"items": tmpl.List{tmpl.Map{"name": tmpl.String("x")}},
		"":      tmpl.String("blank"),
	}

	tests := []struct {
		name string
		path string
		want tmpl.Value
	}{
		{"top level", "customer", data["customer"]},
		{"nested", "customer.address.city", tmpl.String("Oslo")},
		{"surrounding space", "  customer.name ", tmpl.String("Ada")},
		{"missing head", "order.id", nil},
		{"missing leaf", "customer.phone", nil},
		{"through scalar", "customer.name.first", nil},
		{"through list", "items.0.name", nil},
		{"empty path", "", nil},
		{"blank path", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tmpl.Lookup(data, tt.path))
		})
	}
}

func TestLookup_NonMapRoot(t *testing.T) {
	t.Parallel()

	assert.Nil(t, tmpl.Lookup(tmpl.String("x"), "a"))
	assert.Nil(t, tmpl.Lookup(nil, "a"))
}
