package kinds

import "github.com/dmitrymomot/mailroom/pkg/tmpl"

// PrepareContactForm passes contact form data through unchanged.
func PrepareContactForm(data tmpl.Map) tmpl.Map {
	return data.Clone()
}
