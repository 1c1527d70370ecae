package reader

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const readerABIJSON = `[
  {
    "inputs": [
      {"internalType": "address", "name": "_account", "type": "address"},
      {"internalType": "address[]", "name": "_tokens", "type": "address[]"}
    ],
    "name": "getTokenBalancesWithSupplies",
    "outputs": [{"internalType": "uint256[]", "name": "", "type": "uint256[]"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "_account", "type": "address"},
      {"internalType": "address[]", "name": "_yieldTrackers", "type": "address[]"}
    ],
    "name": "getStakingInfo",
    "outputs": [{"internalType": "uint256[]", "name": "", "type": "uint256[]"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address[]", "name": "_yieldTokens", "type": "address[]"}
    ],
    "name": "getTotalStaked",
    "outputs": [{"internalType": "uint256[]", "name": "", "type": "uint256[]"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "_factory", "type": "address"},
      {"internalType": "address[]", "name": "_tokens", "type": "address[]"}
    ],
    "name": "getPairInfo",
    "outputs": [{"internalType": "uint256[]", "name": "", "type": "uint256[]"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "_token", "type": "address"},
      {"internalType": "address[]", "name": "_excludedAccounts", "type": "address[]"}
    ],
    "name": "getTokenSupply",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const (
	methodBalances    = "getTokenBalancesWithSupplies"
	methodStaking     = "getStakingInfo"
	methodTotalStaked = "getTotalStaked"
	methodPairs       = "getPairInfo"
	methodSupply      = "getTokenSupply"
)

var (
	readerABI     abi.ABI
	readerABIOnce sync.Once
	readerABIErr  error
)

// ReaderABI returns the parsed ABI of the on-chain Reader contract.
func ReaderABI() (abi.ABI, error) {
	readerABIOnce.Do(func() {
		readerABI, readerABIErr = abi.JSON(strings.NewReader(readerABIJSON))
	})
	return readerABI, readerABIErr
}
