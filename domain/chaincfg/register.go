package chaincfg

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrDuplicateNet describes an error where the parameters for a network
	// could not be set due to the network already being a standard network
	// or previously-registered into this package.
	ErrDuplicateNet = errors.New("duplicate network")

	// ErrUnknownNet describes an error where no registered network carries
	// the requested id.
	ErrUnknownNet = errors.New("unknown network")
)

var (
	registeredNets     = make(map[string]*Params)
	registeredNetsLock sync.RWMutex
)

// Register validates and registers the network parameters for a network.
// This may error with ErrDuplicateNet if the network is already registered
// (either due to a previous Register call, or the network being one of the
// default networks), or with ErrInconsistentParams if the parameters fail
// Validate.
//
// Network parameters should be registered into this package by a main
// package as early as possible. Then, library packages may lookup networks
// by id and work regardless of the network being standard or not.
func Register(params *Params) error {
	err := params.Validate()
	if err != nil {
		return err
	}

	registeredNetsLock.Lock()
	defer registeredNetsLock.Unlock()
	if _, ok := registeredNets[params.ID]; ok {
		return errors.Wrapf(ErrDuplicateNet, "network %s", params.ID)
	}
	registeredNets[params.ID] = params
	log.Debugf("Registered network %s (%s)", params.Name, params.ID)

	return nil
}

// ParamsForID returns the registered parameters for the network with the
// given id.
func ParamsForID(id string) (*Params, error) {
	registeredNetsLock.RLock()
	defer registeredNetsLock.RUnlock()
	params, ok := registeredNets[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownNet, "network %s", id)
	}
	return params, nil
}

// RegisteredIDs returns the ids of all registered networks in sorted order.
func RegisteredIDs() []string {
	registeredNetsLock.RLock()
	defer registeredNetsLock.RUnlock()
	ids := make([]string, 0, len(registeredNets))
	for id := range registeredNets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// mustRegister performs the same function as Register except it panics if there
// is an error. This should only be called from package init functions.
func mustRegister(params *Params) {
	if err := Register(params); err != nil {
		panic("failed to register network: " + err.Error())
	}
}

func init() {
	// Register all default networks when the package is initialized.
	mustRegister(&MainnetParams)
	mustRegister(&Testnet3Params)
	mustRegister(&Testnet4Params)
	mustRegister(&ScalenetParams)
	mustRegister(&RegtestParams)
	mustRegister(&UnitTestParams)
}
