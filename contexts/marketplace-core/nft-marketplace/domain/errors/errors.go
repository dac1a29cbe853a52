package errors

import "errors"

var (
	ErrPriceMustBeAboveZero      = errors.New("price must be above zero")
	ErrAlreadyListed             = errors.New("asset is already listed")
	ErrNotOwner                  = errors.New("caller is not the asset owner")
	ErrNotApprovedForMarketplace = errors.New("marketplace is not approved for asset")
	ErrNotListed                 = errors.New("asset is not listed")
	ErrPriceNotMet               = errors.New("payment does not meet listing price")
	ErrNoProceeds                = errors.New("no proceeds to withdraw")
	ErrTransferFailed            = errors.New("proceeds transfer failed")

	ErrAssetTransferFailed      = errors.New("asset transfer failed")
	ErrInvalidRequest           = errors.New("invalid marketplace request")
	ErrAssetNotFound            = errors.New("asset not found")
	ErrRegistryTransferRejected = errors.New("registry rejected asset transfer")
	ErrRepositoryInvariantBroke = errors.New("repository invariant violated")
)
