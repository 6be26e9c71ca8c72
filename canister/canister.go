// Package canister reports facts about the executing canister: its
// identity, subnet, cycle balance, status, version and controllers.
package canister

import (
	"fmt"

	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	"github.com/reglet-dev/canister-sdk/go/domain/ports"
	"github.com/reglet-dev/canister-sdk/go/internal/abi"
)

// Canister wraps the canister-level system calls.
type Canister struct {
	api ports.CanisterAPI
}

// New returns a Canister backed by api.
func New(api ports.CanisterAPI) *Canister {
	return &Canister{api: api}
}

// Self returns the canister's own principal.
func (c *Canister) Self() entities.Principal {
	return entities.Principal(abi.ReadAll(c.api.CanisterSelfSize, c.api.CanisterSelfCopy))
}

// Subnet returns the principal of the subnet the canister runs on.
func (c *Canister) Subnet() entities.Principal {
	return entities.Principal(abi.ReadAll(c.api.SubnetSelfSize, c.api.SubnetSelfCopy))
}

// Balance returns the cycle balance.
func (c *Canister) Balance() entities.Cycles {
	return c.api.CanisterCycleBalance128()
}

// LiquidBalance returns the part of the balance that can be spent without
// freezing the canister.
func (c *Canister) LiquidBalance() entities.Cycles {
	return c.api.CanisterLiquidCycleBalance128()
}

// Status returns the run state.
func (c *Canister) Status() entities.CanisterStatus {
	return entities.CanisterStatus(c.api.CanisterStatus())
}

// Version returns the canister version, bumped on every code or settings change.
func (c *Canister) Version() uint64 {
	return c.api.CanisterVersion()
}

// IsController reports whether p controls this canister.
func (c *Canister) IsController(p entities.Principal) (bool, error) {
	if len(p) > entities.MaxPrincipalLength {
		return false, fmt.Errorf("is_controller: %w", entities.ErrPrincipalTooLong)
	}
	return c.api.IsController(p) == 1, nil
}

// InReplicatedExecution reports whether the current execution is replicated.
func (c *Canister) InReplicatedExecution() bool {
	return c.api.InReplicatedExecution() == 1
}

// BurnCycles destroys up to amount cycles and returns how many were burned.
func (c *Canister) BurnCycles(amount entities.Cycles) entities.Cycles {
	return c.api.CyclesBurn128(amount)
}
