package httptransport

// Amounts are decimal strings, e.g. "0.01".

type ListItemRequest struct {
	Collection string `json:"collection"`
	AssetID    string `json:"asset_id"`
	Price      string `json:"price"`
}

type UpdateListingRequest struct {
	NewPrice string `json:"new_price"`
}

type BuyItemRequest struct {
	Payment string `json:"payment"`
}

type ListListingsRequest struct {
	Collection string `json:"collection,omitempty"`
	Seller     string `json:"seller,omitempty"`
	Cursor     string `json:"cursor,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

type ListingDTO struct {
	Collection string `json:"collection"`
	AssetID    string `json:"asset_id"`
	Seller     string `json:"seller,omitempty"`
	Price      string `json:"price"`
	Listed     bool   `json:"listed"`
	ListedAt   string `json:"listed_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

type ListingResponse struct {
	Item ListingDTO `json:"item"`
}

type ListListingsResponse struct {
	Items      []ListingDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

type BuyItemResponse struct {
	Collection string `json:"collection"`
	AssetID    string `json:"asset_id"`
	Seller     string `json:"seller"`
	Buyer      string `json:"buyer"`
	Price      string `json:"price"`
	Credited   string `json:"credited"`
}

type CancelListingResponse struct {
	Collection string `json:"collection"`
	AssetID    string `json:"asset_id"`
	Canceled   bool   `json:"canceled"`
}

type ProceedsResponse struct {
	Seller  string `json:"seller"`
	Balance string `json:"balance"`
}

type WithdrawProceedsResponse struct {
	Payee  string `json:"payee"`
	Amount string `json:"amount"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Registry routes are mounted only when the process runs the in-memory
// asset registry.

type MintAssetRequest struct {
	To string `json:"to,omitempty"`
}

type ApproveAssetRequest struct {
	Approved string `json:"approved"`
}

type ApprovalForAllRequest struct {
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

type AssetResponse struct {
	Collection string `json:"collection"`
	AssetID    string `json:"asset_id"`
	Owner      string `json:"owner"`
	Approved   string `json:"approved,omitempty"`
}

type ApprovalForAllResponse struct {
	Collection string `json:"collection"`
	Owner      string `json:"owner"`
	Operator   string `json:"operator"`
	Approved   bool   `json:"approved"`
}
