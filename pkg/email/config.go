package email

// Config holds email transport configuration.
// Postmark tokens are optional to support development environments where the
// DevSender is used instead. SenderEmail and SupportEmail establish the
// sender identity and reply-to behavior for all outbound email.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`
}

// AuthMailerConfig holds the link bases embedded in auth emails.
type AuthMailerConfig struct {
	ResetPasswordURL string `env:"AUTH_RESET_PASSWORD_URL,required"` // e.g. https://app.example.com/reset-password
	VerifyEmailURL   string `env:"AUTH_VERIFY_EMAIL_URL,required"`   // e.g. https://app.example.com/verify-email
	ProductName      string `env:"AUTH_EMAIL_PRODUCT_NAME" envDefault:"App"`
}
