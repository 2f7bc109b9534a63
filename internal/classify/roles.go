package classify

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Role tags an address relative to the tracked position.
type Role int

const (
	RoleUnknown Role = iota
	RoleExchange
	RoleUser
)

// RoleSets holds the exchange and tracked-user address sets for one run.
// The sets must be disjoint; Validate rejects overlap instead of silently
// preferring one interpretation.
type RoleSets struct {
	exchange map[common.Address]struct{}
	user     map[common.Address]struct{}
}

// NewRoleSets builds role sets from parsed addresses.
func NewRoleSets(exchange, user []common.Address) RoleSets {
	r := RoleSets{
		exchange: make(map[common.Address]struct{}, len(exchange)),
		user:     make(map[common.Address]struct{}, len(user)),
	}
	for _, addr := range exchange {
		r.exchange[addr] = struct{}{}
	}
	for _, addr := range user {
		r.user[addr] = struct{}{}
	}
	return r
}

// LoadRoleSets reads the two newline-delimited address files.
func LoadRoleSets(exchangePath, userPath string) (RoleSets, error) {
	exchange, err := readAddressFile(exchangePath)
	if err != nil {
		return RoleSets{}, fmt.Errorf("exchange addresses: %w", err)
	}
	user, err := readAddressFile(userPath)
	if err != nil {
		return RoleSets{}, fmt.Errorf("user addresses: %w", err)
	}
	return NewRoleSets(exchange, user), nil
}

// Validate rejects addresses present in both sets.
func (r RoleSets) Validate() error {
	for addr := range r.exchange {
		if _, ok := r.user[addr]; ok {
			return fmt.Errorf("address %s is in both the exchange and user sets", addr.Hex())
		}
	}
	return nil
}

// RoleOf resolves an address to its role.
func (r RoleSets) RoleOf(addr common.Address) Role {
	if _, ok := r.exchange[addr]; ok {
		return RoleExchange
	}
	if _, ok := r.user[addr]; ok {
		return RoleUser
	}
	return RoleUnknown
}

func readAddressFile(path string) ([]common.Address, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var addresses []common.Address
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !common.IsHexAddress(line) {
			return nil, fmt.Errorf("invalid address: %s", line)
		}
		addresses = append(addresses, common.HexToAddress(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return addresses, nil
}
