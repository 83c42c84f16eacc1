package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	LogLevel   string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	AWSRegion        string
	SQSGateQueueURL  string
	IoTMQTTEndpoint  string

	JWTSecret     string
	JWTExpiration time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env file: %v", err)
	}

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	jwtExpHours, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "yard"),
		DBPassword: getEnv("DB_PASSWORD", "yard"),
		DBName:     getEnv("DB_NAME", "yard_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		AWSRegion:       getEnv("AWS_REGION", "sa-east-1"),
		SQSGateQueueURL: getEnv("SQS_GATE_QUEUE_URL", ""),
		IoTMQTTEndpoint: getEnv("IOT_MQTT_ENDPOINT", ""),

		JWTSecret:     getEnv("JWT_SECRET", "change-me"),
		JWTExpiration: time.Duration(jwtExpHours) * time.Hour,
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
