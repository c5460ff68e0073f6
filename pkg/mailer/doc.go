// Package mailer renders transactional emails and hands them to a provider.
//
// A Mailer ties together three pieces:
//
//   - a KindRegistry (pkg/kinds) mapping a template id such as
//     "order-confirmation" to its template name, subject, recipient policy
//     and data preparator;
//   - a TemplateLoader (pkg/loader) returning raw template text;
//   - a Sender implemented by the provider packages (resend, postmark, smtp,
//     filesender).
//
// # Rendering
//
// Render checks its input, looks up the kind, prepares the variables, loads
// the template and renders it with pkg/tmpl:
//
//	m := mailer.New(sender, kinds.Default(kindsCfg), loader.New(...), cfg)
//
//	r, err := m.Render(ctx, "order-confirmation", tmpl.Map{
//		"orderNumber":   tmpl.String("A-1001"),
//		"customerEmail": tmpl.String("ada@example.com"),
//		"items":         tmpl.List{...},
//	})
//	// r.HTML, r.Text, r.Subject == "Order Confirmation #A-1001", r.To
//
// Templates may start with YAML frontmatter. A "Subject" field overrides the
// kind's subject; both are rendered with the same data as the body. Templates
// resolved from a .md file are converted with goldmark after rendering and
// wrapped in a layout (Config.Layout, default "layout.html") executed with
// html/template:
//
//	---
//	Subject: Welcome {{name}}
//	---
//	Hello **{{name}}**!
//
//	[!button|Get started]({{url}})
//
// A frontmatter "layout" field picks another layout; "none" disables it.
//
// Malformed control tags never fail a render. They are stripped, logged and
// reported through Rendered.Degraded.
//
// # Sending
//
// Send renders and delivers in one call. Explicit To and Subject in
// SendParams override the rendered ones. Compose builds the Email without
// delivering it and SendRaw delivers a prebuilt Email:
//
//	email, err := m.Send(ctx, mailer.SendParams{
//		Kind:      "contact-form",
//		Variables: vars,
//		ReplyTo:   "customer@example.com",
//	})
//
// Every email is tagged with its kind.
//
// # Errors
//
//   - ErrMissingInput: empty template id or nil variables
//   - ErrUnknownKind: the template id names no kind
//   - ErrTemplateNotFound: no source holds the template
//   - ErrInvalidFrontmatter, ErrLayoutNotFound, ErrRenderFailed: template problems
//   - ErrNoRecipient, ErrNoSubject, ErrNoContent: the email is incomplete
//   - ErrSendFailed: the provider rejected the email (joined with its error)
package mailer
