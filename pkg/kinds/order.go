package kinds

import "github.com/dmitrymomot/mailroom/pkg/tmpl"

// Order confirmation data keys.
const (
	keyItems           = "items"
	keyPrice           = "price"
	keyQuantity        = "quantity"
	keyItemSubtotal    = "subtotal"
	keyShipping        = "shipping"
	keyHasShipping     = "hasShipping"
	keyShippingAddress = "shippingAddress"
	keyStoreURL        = "storeUrl"
)

// moneyKeys are order totals normalized to two decimals.
var moneyKeys = []string{"subtotal", "shipping", "tax", "total"}

// addressFields maps each canonical address key to the input keys accepted
// for it, in order of preference.
var addressFields = []struct {
	key     string
	aliases []string
}{
	{"name", []string{"name", "fullName"}},
	{"line1", []string{"line1", "address1", "street"}},
	{"line2", []string{"line2", "address2"}},
	{"city", []string{"city"}},
	{"state", []string{"state"}},
	{"postalCode", []string{"postalCode", "postal_code", "zip", "zipCode", "postcode"}},
	{"country", []string{"country"}},
}

// PrepareOrderConfirmation returns the preparator for order confirmations.
// storeURL is used when the data carries no storeUrl of its own.
func PrepareOrderConfirmation(storeURL string) PrepareFunc {
	return func(data tmpl.Map) tmpl.Map {
		out := data.Clone()

		if shipping, ok := tmpl.AsNumber(out[keyShipping]); ok {
			out[keyHasShipping] = tmpl.Bool(shipping > 0)
		}

		if items, ok := out[keyItems].(tmpl.List); ok {
			out[keyItems] = prepareItems(items)
		}

		if addr, ok := out[keyShippingAddress].(tmpl.Map); ok {
			out[keyShippingAddress] = normalizeAddress(addr)
		}

		for _, key := range moneyKeys {
			if v, ok := tmpl.AsNumber(out[key]); ok {
				out[key] = tmpl.String(tmpl.Fixed2(v))
			}
		}

		if storeURL != "" && !tmpl.Truthy(out[keyStoreURL]) {
			out[keyStoreURL] = tmpl.String(storeURL)
		}

		return out
	}
}

func prepareItems(items tmpl.List) tmpl.List {
	out := make(tmpl.List, len(items))
	for i, item := range items {
		m, ok := item.(tmpl.Map)
		if !ok {
			out[i] = item
			continue
		}

		price, okPrice := tmpl.AsNumber(m[keyPrice])
		qty, okQty := tmpl.AsNumber(m[keyQuantity])
		if !okPrice || !okQty {
			out[i] = m
			continue
		}

		m = m.Clone()
		m[keyItemSubtotal] = tmpl.String(tmpl.Fixed2(price * qty))
		m[keyPrice] = tmpl.String(tmpl.Fixed2(price))
		out[i] = m
	}
	return out
}

func normalizeAddress(addr tmpl.Map) tmpl.Map {
	out := make(tmpl.Map, len(addressFields))
	for _, f := range addressFields {
		for _, alias := range f.aliases {
			if v := addr[alias]; v != nil {
				out[f.key] = v
				break
			}
		}
	}
	return out
}
