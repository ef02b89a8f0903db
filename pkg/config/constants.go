package config

const (
	// EnvPrefix is passed to envconfig; variable names are spelled out in full
	// on each field, so the prefix stays empty.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "FEASTLY_DB_DSN"
	EnvDBHost = "FEASTLY_DB_HOST"
	EnvDBUser = "FEASTLY_DB_USER"
	EnvDBName = "FEASTLY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
