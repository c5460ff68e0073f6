package kinds

// DefaultStoreURL is used for the storeUrl of order confirmations when
// neither the data nor the configuration provides one.
const DefaultStoreURL = "https://example.com"

// Config holds kind configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	OperatorEmail string `env:"MAILER_OPERATOR_EMAIL"`
	StoreURL      string `env:"MAILER_STORE_URL" envDefault:"https://example.com"`
	KindsFile     string `env:"MAILER_KINDS_FILE"`
}
