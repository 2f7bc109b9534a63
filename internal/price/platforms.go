package price

import "fmt"

// platformByChainID maps EVM chain IDs to the price API's platform names.
var platformByChainID = map[uint64]string{
	1:    "ethereum",
	56:   "bsc",
	137:  "polygon",
	8453: "base",
}

// PlatformForChain returns the price API platform for a chain ID.
func PlatformForChain(chainID uint64) (string, error) {
	platform, ok := platformByChainID[chainID]
	if !ok {
		return "", fmt.Errorf("unsupported chain id for price lookups: %d", chainID)
	}
	return platform, nil
}
