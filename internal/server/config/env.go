package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "GOPHMARKET_"

// parseEnv overlays GOPHMARKET_* environment variables. A dotenv file named
// by -env is loaded first; without the flag ./.env is used if present.
// Variables already set in the process environment are never overwritten
// by the file.
func parseEnv(config *Config, args []string) {
	if file := flagx.EnvFileFlag(args); file != "" {
		if err := godotenv.Load(file); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	envString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	envString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	envString(&config.PublicBaseURL, "PUBLIC_BASE_URL")
	envString(&config.Storage, "STORAGE")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.RedisAddr, "REDIS_ADDR")
	envString(&config.SecretKey, "SECRET_KEY")
	envDuration(&config.AccessTokenTTL, "ACCESS_TOKEN_TTL")
	envDuration(&config.RefreshTokenTTL, "REFRESH_TOKEN_TTL")
	envDuration(&config.ResetTokenTTL, "RESET_TOKEN_TTL")
	envDuration(&config.SweepInterval, "SWEEP_INTERVAL")
	envInt(&config.BcryptCost, "BCRYPT_COST")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	envString(&config.LogLevel, "LOG_LEVEL")
}

func envString(dst *string, name string) {
	if v, ok := os.LookupEnv(envPrefix + name); ok {
		*dst = v
	}
}

func envDuration(dst *time.Duration, name string) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}

func envInt(dst *int, name string) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	*dst = n
}
