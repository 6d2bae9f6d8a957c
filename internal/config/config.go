package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"omborscan"`
	}

	Server struct {
		BaseURL   string        `envconfig:"SERVER_URL" default:"http://localhost:8080"`
		APIToken  string        `envconfig:"API_TOKEN"`
		CSRFToken string        `envconfig:"CSRF_TOKEN" default:"dev-csrf"`
		Timeout   time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	}

	Camera struct {
		Command string `envconfig:"CAMERA_COMMAND" default:"fswebcam -q --jpeg 80 --save -"`
	}

	Stub struct {
		Port      int    `envconfig:"STUB_PORT" default:"8080"`
		JWTSecret string `envconfig:"STUB_JWT_SECRET" default:"dev-secret"`
		CSRFToken string `envconfig:"STUB_CSRF_TOKEN" default:"dev-csrf"`
		Operator  string `envconfig:"STUB_OPERATOR" default:"Aziza Karimova"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
