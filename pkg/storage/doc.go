// Package storage keeps email templates in S3-compatible object storage.
//
// A Bucket maps template names onto object keys under an optional prefix,
// so "order-confirmation.html" with prefix "emails" is stored at
// "emails/order-confirmation.html".
//
//	b, err := storage.New(storage.Config{
//		Bucket:    "templates",
//		Prefix:    "emails",
//		AccessKey: os.Getenv("TEMPLATES_S3_ACCESS_KEY"),
//		SecretKey: os.Getenv("TEMPLATES_S3_SECRET_KEY"),
//	})
//	if err != nil {
//		return err
//	}
//
//	_, err = b.Write(ctx, "order-confirmation.html", html)
//	data, err := b.Read(ctx, "order-confirmation.html")
//	if errors.Is(err, storage.ErrNotFound) {
//		// fall back to embedded templates
//	}
//
// For MinIO or other S3-compatible services set Endpoint and PathStyle.
//
// # Error Handling
//
// AWS errors are normalized onto sentinel errors ([ErrNotFound],
// [ErrAccessDenied], [ErrReadFailed], ...). Match them with [errors.Is].
package storage
