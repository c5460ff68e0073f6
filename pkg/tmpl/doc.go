// Package tmpl implements the small templating language used by transactional
// email templates.
//
// A template is plain text (usually HTML) with three tag families:
//
//	{{#each items}} ... {{/each}}          repeat the body once per list element
//	{{#if path}} ... {{else}} ... {{/if}}  conditional, arbitrarily nested
//	{{path}}                               dot-path variable reference
//
// Inside an each body the item keys are visible directly, together with
// {{@index}} (zero-based position) and {{itemTotal}} (price × quantity with
// two decimals, when both fields are numeric). Lookups that miss the item
// fall back to the root data.
//
// Rendering runs three passes: each-block expansion, if/else resolution
// (innermost blocks first, bounded by DefaultMaxPasses) and variable
// substitution. Rendering never fails. Malformed or overly deep control tags
// are stripped and the returned Report is marked Degraded.
//
// # Usage
//
//	data := tmpl.Map{
//		"name":  tmpl.String("Ada"),
//		"items": tmpl.List{tmpl.Map{"name": tmpl.String("x"), "price": tmpl.Number(2), "quantity": tmpl.Number(3)}},
//	}
//
//	html, report := tmpl.Render("Hi {{name}}: {{#each items}}{{name}} {{itemTotal}}{{/each}}", data)
//	// html == "Hi Ada: x 6.00", report.Degraded == false
//
// Decoded JSON is converted with FromAny or MapFromAny.
package tmpl
