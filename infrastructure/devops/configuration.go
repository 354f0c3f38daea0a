package devops

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Config is assembled once in main and handed to the components that need
// it. Environment variables are the baseline; when CONFIG_SSM_PARAM is set,
// a yaml parameter from SSM (decrypted) overrides the database settings.
type Config struct {
	DSN            string
	MaxConnections int
	AWSRegion      string
	S3Bucket       string
	SigningSecret  string // base64, guards the admin route group
	SeedSecret     string
	DeployedAt     time.Time
	SlackToken     string
	SlackChannel   string
	Port           string
}

type dbOverride struct {
	DSN            string `yaml:"dsn"`
	MaxConnections int    `yaml:"maxConnections"`
}

func Load(ctx context.Context) (*Config, error) {
	cfg := &Config{
		DSN:            os.Getenv("DSN"),
		MaxConnections: envInt("DB_MAX_CONNECTIONS", 10),
		AWSRegion:      envOr("AWS_REGION", "ap-southeast-2"),
		S3Bucket:       os.Getenv("UPLOAD_BUCKET"),
		SigningSecret:  os.Getenv("CRMDESK_SIGNING_SECRET"),
		SeedSecret:     os.Getenv("SEED_SECRET"),
		DeployedAt:     deployedAt(),
		SlackToken:     os.Getenv("SLACK_BOT_TOKEN"),
		SlackChannel:   os.Getenv("SLACK_INFO_CHANNEL"),
		Port:           envOr("PORT", "8090"),
	}

	if param := os.Getenv("CONFIG_SSM_PARAM"); param != "" {
		override, err := loadSSMOverride(ctx, param)
		if err != nil {
			return nil, err
		}
		if override.DSN != "" {
			cfg.DSN = override.DSN
		}
		if override.MaxConnections > 0 {
			cfg.MaxConnections = override.MaxConnections
		}
	}

	return cfg, nil
}

func loadSSMOverride(ctx context.Context, paramName string) (*dbOverride, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := ssm.NewFromConfig(awsCfg)
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get parameter: %w", err)
	}

	var parsed dbOverride
	if err := yaml.Unmarshal([]byte(*out.Parameter.Value), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	return &parsed, nil
}

// deployedAt anchors the seeding window. Falls back to process start when
// DEPLOYED_AT is unset or malformed.
func deployedAt() time.Time {
	if s := os.Getenv("DEPLOYED_AT"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	}
	return time.Now()
}

func envOr(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
