package kinds_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailroom/pkg/kinds"
	"github.com/dmitrymomot/mailroom/pkg/tmpl"
)

func TestPrepareOrderConfirmation(t *testing.T) {
	t.Parallel()

	prepare := kinds.PrepareOrderConfirmation("https://shop.test")

	t.Run("full order", func(t *testing.T) {
		t.Parallel()

		in := tmpl.Map{
			"orderNumber": tmpl.String("1001"),
			"shipping":    tmpl.String("4.5"),
			"subtotal":    tmpl.Number(40),
			"tax":         tmpl.String("3.2"),
			"total":       tmpl.String("47.7"),
			"items": tmpl.List{
				tmpl.Map{"name": tmpl.String("Mug"), "price": tmpl.Number(20), "quantity": tmpl.Number(2)},
				tmpl.Map{"name": tmpl.String("Gift card"), "price": tmpl.String("free")},
				tmpl.String("note"),
			},
			"shippingAddress": tmpl.Map{
				"name":     tmpl.String("Ada"),
				"address1": tmpl.String("1 Main St"),
				"city":     tmpl.String("Oslo"),
				"zip":      tmpl.String("0150"),
				"country":  tmpl.String("NO"),
				"extra":    tmpl.String("dropped"),
			},
		}

		out := prepare(in)

		assert.Equal(t, tmpl.Bool(true), out["hasShipping"])
		assert.Equal(t, tmpl.String("4.50"), out["shipping"])
		assert.Equal(t, tmpl.String("40.00"), out["subtotal"])
		assert.Equal(t, tmpl.String("3.20"), out["tax"])
		assert.Equal(t, tmpl.String("47.70"), out["total"])
		assert.Equal(t, tmpl.String("https://shop.test"), out["storeUrl"])

		items := out["items"].(tmpl.List)
		require.Len(t, items, 3)
		assert.Equal(t, tmpl.Map{
			"name":     tmpl.String("Mug"),
			"price":    tmpl.String("20.00"),
			"quantity": tmpl.Number(2),
			"subtotal": tmpl.String("40.00"),
		}, items[0])
		assert.Equal(t, tmpl.Map{"name": tmpl.String("Gift card"), "price": tmpl.String("free")}, items[1])
		assert.Equal(t, tmpl.String("note"), items[2])

		assert.Equal(t, tmpl.Map{
			"name":       tmpl.String("Ada"),
			"line1":      tmpl.String("1 Main St"),
			"city":       tmpl.String("Oslo"),
			"postalCode": tmpl.String("0150"),
			"country":    tmpl.String("NO"),
		}, out["shippingAddress"])
	})

	t.Run("input is not modified", func(t *testing.T) {
		t.Parallel()

		item := tmpl.Map{"price": tmpl.Number(1), "quantity": tmpl.Number(1)}
		in := tmpl.Map{"items": tmpl.List{item}, "total": tmpl.Number(1)}
		_ = prepare(in)

		assert.Equal(t, tmpl.Number(1), in["total"])
		assert.Equal(t, tmpl.Number(1), item["price"])
		assert.NotContains(t, item, "subtotal")
		assert.NotContains(t, in, "storeUrl")
	})

	t.Run("absent inputs produce absent fields", func(t *testing.T) {
		t.Parallel()

		out := prepare(tmpl.Map{})
		assert.NotContains(t, out, "hasShipping")
		assert.NotContains(t, out, "items")
		assert.NotContains(t, out, "shippingAddress")
		assert.NotContains(t, out, "total")
		assert.Equal(t, tmpl.String("https://shop.test"), out["storeUrl"])
	})

	t.Run("nil data", func(t *testing.T) {
		t.Parallel()

		out := prepare(nil)
		assert.Equal(t, tmpl.Map{"storeUrl": tmpl.String("https://shop.test")}, out)
	})

	t.Run("free shipping", func(t *testing.T) {
		t.Parallel()

		out := prepare(tmpl.Map{"shipping": tmpl.Number(0)})
		assert.Equal(t, tmpl.Bool(false), out["hasShipping"])
		assert.Equal(t, tmpl.String("0.00"), out["shipping"])
	})

	t.Run("non-numeric values pass through", func(t *testing.T) {
		t.Parallel()

		out := prepare(tmpl.Map{"shipping": tmpl.String("TBD"), "total": tmpl.Bool(true)})
		assert.NotContains(t, out, "hasShipping")
		assert.Equal(t, tmpl.String("TBD"), out["shipping"])
		assert.Equal(t, tmpl.Bool(true), out["total"])
	})

	t.Run("own store url kept", func(t *testing.T) {
		t.Parallel()

		out := prepare(tmpl.Map{"storeUrl": tmpl.String("https://other.test")})
		assert.Equal(t, tmpl.String("https://other.test"), out["storeUrl"])
	})

	t.Run("postal code aliases", func(t *testing.T) {
		t.Parallel()

		for _, alias := range []string{"postalCode", "postal_code", "zip", "zipCode", "postcode"} {
			out := prepare(tmpl.Map{"shippingAddress": tmpl.Map{alias: tmpl.String("12345")}})
			assert.Equal(t, tmpl.Map{"postalCode": tmpl.String("12345")}, out["shippingAddress"], alias)
		}
	})

	t.Run("renders with the order template data", func(t *testing.T) {
		t.Parallel()

		out := prepare(tmpl.Map{
			"shipping": tmpl.Number(5),
			"items":    tmpl.List{tmpl.Map{"name": tmpl.String("x"), "price": tmpl.Number(2), "quantity": tmpl.Number(3)}},
		})
		html, rep := tmpl.Render(
			"{{#each items}}{{name}} {{price}} {{subtotal}} {{itemTotal}};{{/each}}{{#if hasShipping}}ship {{shipping}}{{/if}}",
			out,
		)
		require.False(t, rep.Degraded)
		assert.Equal(t, "x 2.00 6.00 6.00;ship 5.00", html)
	})
}
