package ports

import "encoding/json"

const SourceService = "nft-marketplace-service"

// EventData is the JSON payload carried in EventEnvelope.Data.
type EventData struct {
	Seller     string `json:"seller,omitempty"`
	Buyer      string `json:"buyer,omitempty"`
	Payee      string `json:"payee,omitempty"`
	Collection string `json:"collection,omitempty"`
	AssetID    string `json:"asset_id,omitempty"`
	Price      string `json:"price,omitempty"`
	Amount     string `json:"amount,omitempty"`
}

// BuildEnvelope renders a ledger event into the canonical envelope shared by
// every outbox adapter.
func BuildEnvelope(event MarketEvent) (EventEnvelope, error) {
	data := EventData{
		Collection: event.Collection,
		AssetID:    event.AssetID,
	}
	partitionPath := "collection:asset_id"
	switch event.EventType {
	case EventItemListed:
		data.Seller = event.Actor
		data.Price = event.Amount.String()
	case EventItemBought:
		data.Buyer = event.Actor
		data.Price = event.Amount.String()
	case EventItemCanceled:
		data.Seller = event.Actor
	case EventProceedsWithdrawn:
		data.Payee = event.Actor
		data.Amount = event.Amount.String()
		partitionPath = "payee"
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return EventEnvelope{}, err
	}
	return EventEnvelope{
		EventID:          event.EventID,
		EventType:        string(event.EventType),
		OccurredAt:       event.OccurredAt.UTC(),
		SourceService:    SourceService,
		SchemaVersion:    1,
		PartitionKeyPath: partitionPath,
		PartitionKey:     event.PartitionKey,
		Data:             raw,
	}, nil
}

// DecodeEventData extracts the ledger payload from an envelope.
func DecodeEventData(envelope EventEnvelope) (EventData, error) {
	var data EventData
	if len(envelope.Data) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return EventData{}, err
	}
	return data, nil
}
