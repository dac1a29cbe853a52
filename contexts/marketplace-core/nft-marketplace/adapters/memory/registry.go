package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	application "nftmarket/contexts/marketplace-core/nft-marketplace/application"
	"nftmarket/contexts/marketplace-core/nft-marketplace/domain/entities"
	domainerrors "nftmarket/contexts/marketplace-core/nft-marketplace/domain/errors"
)

// TransferHook runs after an asset has changed hands. A non-nil error
// reverts the transfer, the same way a failing receiver reverts a chain
// transfer.
type TransferHook func(ctx context.Context, collection string, from string, to string, assetID string) error

type assetRef struct {
	collection string
	assetID    string
}

type operatorRef struct {
	collection string
	owner      string
	operator   string
}

// Registry is an in-memory asset registry with per-asset approvals and
// per-owner operator approvals, one id sequence per collection.
type Registry struct {
	mu        sync.Mutex
	owners    map[assetRef]string
	approvals map[assetRef]string
	operators map[operatorRef]bool
	counters  map[string]uint64
	hook      TransferHook
	logger    *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		owners:    make(map[assetRef]string),
		approvals: make(map[assetRef]string),
		operators: make(map[operatorRef]bool),
		counters:  make(map[string]uint64),
		logger:    application.ResolveLogger(logger),
	}
}

func (r *Registry) SetTransferHook(hook TransferHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hook = hook
}

// Mint creates the next asset of collection owned by to and returns its id.
// Ids start at 0.
func (r *Registry) Mint(_ context.Context, collection string, to string) (string, error) {
	collection = entities.NormalizeAddress(collection)
	to = entities.NormalizeAddress(to)
	if collection == "" || to == "" {
		return "", domainerrors.ErrInvalidRequest
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	assetID := strconv.FormatUint(r.counters[collection], 10)
	r.counters[collection]++
	r.owners[assetRef{collection: collection, assetID: assetID}] = to

	r.logger.Info("asset minted",
		"event", "memory_registry_minted",
		"module", application.ModuleName,
		"layer", "adapter",
		"collection", collection,
		"asset_id", assetID,
		"owner", to,
	)
	return assetID, nil
}

// Approve lets approved move assetID. Only the owner or one of its operators
// may approve. An empty approved clears the approval.
func (r *Registry) Approve(_ context.Context, collection string, caller string, approved string, assetID string) error {
	ref := newAssetRef(collection, assetID)
	caller = entities.NormalizeAddress(caller)

	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[ref]
	if !ok {
		return domainerrors.ErrAssetNotFound
	}
	if caller != owner && !r.operators[operatorRef{collection: ref.collection, owner: owner, operator: caller}] {
		return fmt.Errorf("%w: %s may not approve %s", domainerrors.ErrRegistryTransferRejected, caller, ref.assetID)
	}
	if approved = entities.NormalizeAddress(approved); approved == "" {
		delete(r.approvals, ref)
		return nil
	}
	r.approvals[ref] = approved
	return nil
}

func (r *Registry) SetApprovalForAll(_ context.Context, collection string, owner string, operator string, approved bool) error {
	ref := operatorRef{
		collection: entities.NormalizeAddress(collection),
		owner:      entities.NormalizeAddress(owner),
		operator:   entities.NormalizeAddress(operator),
	}
	if ref.collection == "" || ref.owner == "" || ref.operator == "" || ref.owner == ref.operator {
		return domainerrors.ErrInvalidRequest
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if approved {
		r.operators[ref] = true
		return nil
	}
	delete(r.operators, ref)
	return nil
}

func (r *Registry) OwnerOf(_ context.Context, collection string, assetID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[newAssetRef(collection, assetID)]
	if !ok {
		return "", domainerrors.ErrAssetNotFound
	}
	return owner, nil
}

func (r *Registry) GetApproved(_ context.Context, collection string, assetID string) (string, error) {
	ref := newAssetRef(collection, assetID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.owners[ref]; !ok {
		return "", domainerrors.ErrAssetNotFound
	}
	return r.approvals[ref], nil
}

func (r *Registry) IsApprovedForAll(_ context.Context, collection string, owner string, operator string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.operators[operatorRef{
		collection: entities.NormalizeAddress(collection),
		owner:      entities.NormalizeAddress(owner),
		operator:   entities.NormalizeAddress(operator),
	}], nil
}

// TransferFrom moves assetID from -> to. operator must be the owner, the
// approved address or an operator of the owner. The single-asset approval is
// cleared on success. The hook runs without the registry lock held so it may
// call back into the registry or the ledger.
func (r *Registry) TransferFrom(
	ctx context.Context,
	collection string,
	operator string,
	from string,
	to string,
	assetID string,
) error {
	ref := newAssetRef(collection, assetID)
	operator = entities.NormalizeAddress(operator)
	from = entities.NormalizeAddress(from)
	to = entities.NormalizeAddress(to)
	if to == "" {
		return domainerrors.ErrInvalidRequest
	}

	r.mu.Lock()
	owner, ok := r.owners[ref]
	if !ok {
		r.mu.Unlock()
		return domainerrors.ErrAssetNotFound
	}
	if owner != from {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s does not own %s", domainerrors.ErrRegistryTransferRejected, from, ref.assetID)
	}
	authorized := operator == owner ||
		r.approvals[ref] == operator ||
		r.operators[operatorRef{collection: ref.collection, owner: owner, operator: operator}]
	if !authorized {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s is not approved for %s", domainerrors.ErrRegistryTransferRejected, operator, ref.assetID)
	}

	priorApproval, hadApproval := r.approvals[ref]
	delete(r.approvals, ref)
	r.owners[ref] = to
	hook := r.hook
	r.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, ref.collection, from, to, ref.assetID); err != nil {
			r.mu.Lock()
			if r.owners[ref] == to {
				r.owners[ref] = from
				if hadApproval {
					r.approvals[ref] = priorApproval
				}
			}
			r.mu.Unlock()
			return err
		}
	}

	r.logger.Info("asset transferred",
		"event", "memory_registry_transferred",
		"module", application.ModuleName,
		"layer", "adapter",
		"collection", ref.collection,
		"asset_id", ref.assetID,
		"from", from,
		"to", to,
		"operator", operator,
	)
	return nil
}

func newAssetRef(collection string, assetID string) assetRef {
	key := entities.NewListingKey(collection, assetID)
	return assetRef{collection: key.Collection, assetID: key.AssetID}
}
