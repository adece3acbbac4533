package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port             int    `env:"PORT" envDefault:"5000"`
	ModelDir         string `env:"MODEL_DIR" envDefault:"models"`
	CnnModelFile     string `env:"CNN_MODEL_FILE" envDefault:"spinach_disease_classifier.onnx"`
	MlModelFile      string `env:"ML_MODEL_FILE" envDefault:"random_forest_final_model.json"`
	OnnxRuntimeDylib string `env:"ONNX_RUNTIME_DYLIB,required,notEmpty"`
	TemplateDir      string `env:"TEMPLATE_DIR" envDefault:"templates"`
	StaticDir        string `env:"STATIC_DIR" envDefault:"static"`
	MaxUploadBytes   int64  `env:"MAX_UPLOAD_BYTES" envDefault:"16777216"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`

	// Optional: pull artifacts from S3 into ModelDir before loading.
	ModelS3Bucket     string `env:"MODEL_S3_BUCKET"`
	ModelS3Prefix     string `env:"MODEL_S3_PREFIX"`
	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
}

// Load parses the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, cfg.validate()
}

// LoadFrom parses an explicit environment instead of the process one.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return cfg, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

func (c Config) CnnModelPath() string {
	return filepath.Join(c.ModelDir, c.CnnModelFile)
}

func (c Config) MlModelPath() string {
	return filepath.Join(c.ModelDir, c.MlModelFile)
}

// FirebaseConfig is handed to the dashboard as-is. A nil field means the
// variable was not set and renders as null.
type FirebaseConfig struct {
	APIKey            *string `json:"apiKey"`
	AuthDomain        *string `json:"authDomain"`
	DatabaseURL       *string `json:"databaseURL"`
	ProjectID         *string `json:"projectId"`
	StorageBucket     *string `json:"storageBucket"`
	MessagingSenderID *string `json:"messagingSenderId"`
	AppID             *string `json:"appId"`
	MeasurementID     *string `json:"measurementId"`
}

func LoadFirebaseConfig() FirebaseConfig {
	return LoadFirebaseConfigFrom(os.LookupEnv)
}

func LoadFirebaseConfigFrom(lookup func(string) (string, bool)) FirebaseConfig {
	get := func(key string) *string {
		if v, ok := lookup(key); ok {
			return &v
		}
		return nil
	}

	return FirebaseConfig{
		APIKey:            get("FIREBASE_API_KEY"),
		AuthDomain:        get("FIREBASE_AUTH_DOMAIN"),
		DatabaseURL:       get("FIREBASE_DB_URL"),
		ProjectID:         get("FIREBASE_PROJECT_ID"),
		StorageBucket:     get("FIREBASE_BUCKET"),
		MessagingSenderID: get("FIREBASE_SENDER_ID"),
		AppID:             get("FIREBASE_APP_ID"),
		MeasurementID:     get("FIREBASE_MEASUREMENT_ID"),
	}
}
