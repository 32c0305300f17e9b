package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string
	MongoURI       string
	MongoDatabase  string
	RedisAddr      string
	RabbitURL      string
	OTLPEndpoint   string
	ServiceFeeRate float64
	MinServiceFee  float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "comrades"
	}

	feeRate := envFloat("SERVICE_FEE_RATE", 0.10)
	minFee := envFloat("MIN_SERVICE_FEE", 50.0)

	return &Config{
		HTTPAddr:       addr,
		MongoURI:       os.Getenv("MONGO_URI"),
		MongoDatabase:  dbName,
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RabbitURL:      os.Getenv("RABBIT_URL"),
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceFeeRate: feeRate,
		MinServiceFee:  minFee,
	}, nil
}

func envFloat(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}
