package config

const (
	EnvPrefix = "NOTIFY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN = "NOTIFY_DB_DSN"
)
