package config

type App struct {
	Port          string `env:"APP_PORT" default:"8080"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	JWTSecret     string `env:"JWT_SECRET,required"`
	UploadDir     string `env:"UPLOAD_DIR" default:"./uploads"`
	ActivationURL string `env:"ACTIVATION_URL"`
	SMTPAddr      string `env:"SMTP_ADDR"`
	SMTPFrom      string `env:"SMTP_FROM"`
	Env           string `env:"APP_ENV" default:"dev"`
}
