package config

const (
	// EnvPrefix is the envconfig prefix; individual fields carry the full
	// SERVANA_ variable names so the prefix stays empty.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	ProviderStripe = "stripe"
	ProviderSquare = "square"
)
