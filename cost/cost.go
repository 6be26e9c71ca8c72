// Package cost estimates the cycles a canister would pay for common
// operations at the current subnet's prices.
package cost

import (
	"fmt"

	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	sdkerrors "github.com/reglet-dev/canister-sdk/go/domain/errors"
	"github.com/reglet-dev/canister-sdk/go/domain/ports"
)

// Estimator wraps the cost system calls.
type Estimator struct {
	api ports.CostAPI
}

// New returns an Estimator backed by api.
func New(api ports.CostAPI) *Estimator {
	return &Estimator{api: api}
}

// Call returns the cost of an inter-canister call with the given method
// name and payload sizes, excluding cycles attached to it.
func (e *Estimator) Call(methodNameSize, payloadSize uint64) entities.Cycles {
	return e.api.CostCall(methodNameSize, payloadSize)
}

// CallBudget returns the cost of calling method with payload plus the
// cycles attached, for a pre-flight balance check.
func (e *Estimator) CallBudget(method string, payload []byte, attached entities.Cycles) (entities.Cycles, error) {
	fee := e.Call(uint64(len(method)), uint64(len(payload)))
	total, err := fee.Add(attached)
	if err != nil {
		return entities.Cycles{}, fmt.Errorf("call budget for %s: %w", method, err)
	}
	return total, nil
}

// CreateCanister returns the cost of creating a canister.
func (e *Estimator) CreateCanister() entities.Cycles {
	return e.api.CostCreateCanister()
}

// HTTPRequest returns the cost of an HTTPS outcall.
func (e *Estimator) HTTPRequest(requestSize, maxResBytes uint64) entities.Cycles {
	return e.api.CostHTTPRequest(requestSize, maxResBytes)
}

// SignWithECDSA returns the cost of a threshold ECDSA signature.
func (e *Estimator) SignWithECDSA(keyName string, curve entities.ECDSACurve) (entities.Cycles, error) {
	return signing(e.api.CostSignWithECDSA([]byte(keyName), uint32(curve)))
}

// SignWithSchnorr returns the cost of a threshold Schnorr signature.
func (e *Estimator) SignWithSchnorr(keyName string, algorithm entities.SchnorrAlgorithm) (entities.Cycles, error) {
	return signing(e.api.CostSignWithSchnorr([]byte(keyName), uint32(algorithm)))
}

// VetKDDeriveKey returns the cost of deriving a vetKD encrypted key.
func (e *Estimator) VetKDDeriveKey(keyName string, curve entities.VetKDCurve) (entities.Cycles, error) {
	return signing(e.api.CostVetKDDeriveEncryptedKey([]byte(keyName), uint32(curve)))
}

func signing(c entities.Uint128, status uint32) (entities.Cycles, error) {
	switch status {
	case 0:
		return c, nil
	case 1:
		return entities.Cycles{}, sdkerrors.ErrInvalidCurve
	case 2:
		return entities.Cycles{}, sdkerrors.ErrInvalidKeyName
	default:
		return entities.Cycles{}, fmt.Errorf("cost query returned status %d", status)
	}
}
