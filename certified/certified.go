// Package certified manages the canister's certified data and the data
// certificate that accompanies non-replicated queries.
package certified

import (
	"fmt"

	sdkerrors "github.com/reglet-dev/canister-sdk/go/domain/errors"
	"github.com/reglet-dev/canister-sdk/go/domain/ports"
	"github.com/reglet-dev/canister-sdk/go/internal/abi"
)

// MaxDataSize is the largest value certified data can hold.
const MaxDataSize = 32

// Data wraps the certified data system calls.
type Data struct {
	api ports.CertifiedAPI
}

// New returns a Data backed by api.
func New(api ports.CertifiedAPI) *Data {
	return &Data{api: api}
}

// Set replaces the certified data with digest, typically a hash root.
func (d *Data) Set(digest []byte) error {
	if len(digest) > MaxDataSize {
		return fmt.Errorf("set %d bytes: %w", len(digest), sdkerrors.ErrDigestTooLarge)
	}
	d.api.CertifiedDataSet(digest)
	return nil
}

// HasCertificate reports whether a data certificate is available. It only
// is in non-replicated query executions.
func (d *Data) HasCertificate() bool {
	return d.api.DataCertificatePresent() == 1
}

// Certificate returns the data certificate.
func (d *Data) Certificate() ([]byte, error) {
	if !d.HasCertificate() {
		return nil, sdkerrors.ErrNoCertificate
	}
	return abi.ReadAll(d.api.DataCertificateSize, d.api.DataCertificateCopy), nil
}
