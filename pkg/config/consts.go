package config

const (
	// EnvPrefix is intentionally empty: every field carries its full
	// SARAF_-prefixed variable name in its envconfig tag.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SARAF_DB_DSN"
	EnvDBHost = "SARAF_DB_HOST"
	EnvDBUser = "SARAF_DB_USER"
	EnvDBName = "SARAF_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
