package solana

import "strings"

type Environment string

const (
	EnvironmentDev  Environment = "https://api.devnet.solana.com"
	EnvironmentTest Environment = "https://api.testnet.solana.com"
	EnvironmentProd Environment = "https://api.mainnet-beta.solana.com"
)

var environmentsByName = map[string]Environment{
	"devnet":       EnvironmentDev,
	"testnet":      EnvironmentTest,
	"mainnet":      EnvironmentProd,
	"mainnet-beta": EnvironmentProd,
}

// ResolveEndpoint returns the RPC endpoint for a cluster name such as
// "devnet" or "mainnet-beta". Anything else is taken to be an endpoint URL
// and returned as is.
func ResolveEndpoint(nameOrURL string) string {
	if env, ok := environmentsByName[strings.ToLower(nameOrURL)]; ok {
		return string(env)
	}
	return nameOrURL
}
