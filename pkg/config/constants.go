package config

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "stringmaster"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "STRINGMASTER_APP_ENV"
	EnvPort       = "STRINGMASTER_APP_PORT"
	EnvDBDSN      = "STRINGMASTER_DB_DSN"
	EnvDBHost     = "STRINGMASTER_DB_HOST"
	EnvDBUser     = "STRINGMASTER_DB_USER"
	EnvDBName     = "STRINGMASTER_DB_NAME"
	EnvRedisURL   = "STRINGMASTER_REDIS_URL"
	EnvJWTSecret  = "STRINGMASTER_JWT_SECRET"
	EnvJWTIssuer  = "STRINGMASTER_JWT_ISSUER"
	EnvJWTExpMins = "STRINGMASTER_JWT_EXPIRATION_MINUTES"
)
