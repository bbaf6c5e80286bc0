// Package services holds the server's business logic. Services translate
// repository and storage failures into the common error taxonomy so the
// transport layer only has to map sentinels to status codes.
package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/stargram/internal/common"
)

// internalError marks err as an internal failure while keeping it in the
// chain for logging.
func internalError(err error) error {
	return fmt.Errorf("%w: %w", common.ErrorInternal, err)
}

// isTaxonomy reports whether err already carries one of the common
// sentinels that the transport maps to a client status.
func isTaxonomy(err error) bool {
	for _, target := range []error{
		common.ErrorNotFound,
		common.ErrorAlreadyExists,
		common.ErrorInternal,
		common.ErrorUnauthorized,
		common.ErrorValidation,
		common.ErrorMalformedUpload,
		common.ErrorUnsupportedImage,
		common.ErrorPayloadTooLarge,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
