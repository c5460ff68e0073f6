// Package kinds defines the supported email kinds and the data preparators
// that normalize caller variables before rendering.
//
// A Kind binds a name to a template identifier, a subject template and a
// recipient policy. The built-in registry holds "order-confirmation" and
// "contact-form"; an optional YAML file (MAILER_KINDS_FILE) can replace the
// template, subject or default recipient of a built-in kind:
//
//	reg, err := kinds.Load(cfg)
//	if err != nil {
//		return err
//	}
//
//	k, err := reg.Get("order-confirmation")
//	if errors.Is(err, kinds.ErrUnknownKind) {
//		// ...
//	}
//
//	data := k.PrepareData(vars)
//	to := k.Recipient(data)
//
// Preparators are total: they never fail and absent inputs produce absent
// derived fields.
package kinds
