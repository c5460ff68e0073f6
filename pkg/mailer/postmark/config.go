package postmark

// Config holds Postmark email provider configuration.
type Config struct {
	ServerToken   string `env:"POSTMARK_SERVER_TOKEN"`
	AccountToken  string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail   string `env:"POSTMARK_FROM_EMAIL"`
	SenderName    string `env:"POSTMARK_FROM_NAME"`
	MessageStream string `env:"POSTMARK_MESSAGE_STREAM" envDefault:"outbound"`
	TrackOpens    bool   `env:"POSTMARK_TRACK_OPENS" envDefault:"true"`
}
