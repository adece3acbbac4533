package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"spinach-backend/internal/config"
	"spinach-backend/internal/storage"

	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// LoadEnvFile loads the file named by -env, or ./.env when the flag is not
// given and that file exists. Variables already set in the environment win.
func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	configPath = resolveEnvFile(configPath, defaultEnvFile)
	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	if err := godotenv.Load(configPath); err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

func resolveEnvFile(flagPath, fallback string) string {
	if flagPath != "" {
		return flagPath
	}
	if info, err := os.Stat(fallback); err == nil && !info.IsDir() {
		return fallback
	}
	return ""
}

// SyncModelArtifacts downloads both model files from MODEL_S3_BUCKET into
// the model directory. It is a no-op when no bucket is configured.
func SyncModelArtifacts(ctx context.Context, cfg config.Config) error {
	if cfg.ModelS3Bucket == "" {
		return nil
	}

	provider, err := storage.NewS3Provider(ctx, &storage.S3ProviderConfig{
		S3EndpointURL:     cfg.S3EndpointURL,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
		S3Region:          cfg.S3Region,
	})
	if err != nil {
		return fmt.Errorf("error creating S3 client: %w", err)
	}

	return storage.SyncArtifacts(ctx, provider, cfg.ModelS3Bucket, cfg.ModelS3Prefix, cfg.ModelDir, cfg.CnnModelFile, cfg.MlModelFile)
}
