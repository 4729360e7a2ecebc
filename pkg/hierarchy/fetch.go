package hierarchy

import (
	"context"
	"encoding/json"
	"fmt"
)

// HubClient is the transport collaborator the hierarchy needs: one
// paginated fetch and one single-call path. *hub.Client satisfies it.
type HubClient interface {
	Call(ctx context.Context, method, cmd string, payload any) (json.RawMessage, error)
	CallPaginated(ctx context.Context, cmd, key string) ([]json.RawMessage, error)
}

// Documented query contracts with the hub. The node listing projects
// type, parent and instrumentation associations; the instrumentation
// listing projects type, assets+product, specifications, values and
// thresholds.
const (
	nodesQuery            = "nodes?include=type%2Cinstrumentations%2Cinstrumentations.type%2Cparent%2Cparent.type"
	instrumentationsQuery = "instrumentations?include=type%2Cassets%2Cassets.product%2Cparent%2Cspecifications%2Cvalues%2Cthresholds"
)

// productFallback replaces missing product names/codes in embedded
// asset summaries
const productFallback = "n.a."

// Wire shapes of the hub responses

type apiNode struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type struct {
		Code string `json:"code"`
	} `json:"type"`
	Parent *struct {
		ID int `json:"id"`
	} `json:"parent"`
	Instrumentations struct {
		Items []struct {
			ID int `json:"id"`
		} `json:"items"`
	} `json:"instrumentations"`
}

type apiInstrumentation struct {
	ID   int    `json:"id"`
	Tag  string `json:"tag"`
	Type struct {
		Code string `json:"code"`
	} `json:"type"`
	Assets struct {
		Items []struct {
			ID           int    `json:"id"`
			SerialNumber string `json:"serial_number"`
			Product      struct {
				Name        string `json:"name"`
				ProductCode string `json:"product_code"`
			} `json:"product"`
		} `json:"items"`
	} `json:"assets"`
	Specifications struct {
		PrimaryKey *struct {
			Value string `json:"value"`
		} `json:"eh_nni_primary_key"`
	} `json:"specifications"`
	Values []struct {
		Key string `json:"key"`
	} `json:"values"`
	Thresholds struct {
		Items []struct {
			Key           string  `json:"key"`
			Name          string  `json:"name"`
			ThresholdType string  `json:"threshold_type"`
			Value         float64 `json:"value"`
		} `json:"items"`
	} `json:"thresholds"`
}

// fetchNodeRecords retrieves the flat node listing from the hub
func fetchNodeRecords(ctx context.Context, hub HubClient) ([]NodeRecord, error) {
	raws, err := hub.CallPaginated(ctx, nodesQuery, "nodes")
	if err != nil {
		return nil, fmt.Errorf("fetch nodes: %w", err)
	}

	records := make([]NodeRecord, 0, len(raws))
	for _, raw := range raws {
		rec, err := parseNodeRecord(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseNodeRecord decodes one node listing entry
func parseNodeRecord(raw json.RawMessage) (NodeRecord, error) {
	var n apiNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return NodeRecord{}, fmt.Errorf("decode node record: %w", err)
	}

	rec := NodeRecord{
		ID:   n.ID,
		Name: n.Name,
		Type: n.Type.Code,
	}
	if n.Parent != nil {
		pid := n.Parent.ID
		rec.ParentID = &pid
	}
	for _, item := range n.Instrumentations.Items {
		rec.InstrumentationIDs = append(rec.InstrumentationIDs, item.ID)
	}
	return rec, nil
}

// fetchInstrumentationRecords retrieves the flat instrumentation
// listing, with asset summaries embedded per record.
func fetchInstrumentationRecords(ctx context.Context, hub HubClient) ([]InstrumentationRecord, error) {
	raws, err := hub.CallPaginated(ctx, instrumentationsQuery, "instrumentations")
	if err != nil {
		return nil, fmt.Errorf("fetch instrumentations: %w", err)
	}

	records := make([]InstrumentationRecord, 0, len(raws))
	for _, raw := range raws {
		rec, err := parseInstrumentationRecord(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseInstrumentationRecord decodes one instrumentation listing entry
func parseInstrumentationRecord(raw json.RawMessage) (InstrumentationRecord, error) {
	var in apiInstrumentation
	if err := json.Unmarshal(raw, &in); err != nil {
		return InstrumentationRecord{}, fmt.Errorf("decode instrumentation record: %w", err)
	}

	rec := InstrumentationRecord{
		ID:   in.ID,
		Tag:  in.Tag,
		Type: in.Type.Code,
	}
	if in.Specifications.PrimaryKey != nil {
		rec.PrimaryValueKey = in.Specifications.PrimaryKey.Value
	}
	for _, v := range in.Values {
		rec.ValueKeys = append(rec.ValueKeys, v.Key)
	}
	for _, a := range in.Assets.Items {
		summary := AssetSummary{
			ID:           a.ID,
			SerialNumber: a.SerialNumber,
			ProductName:  a.Product.Name,
			ProductCode:  a.Product.ProductCode,
		}
		if summary.ProductName == "" {
			summary.ProductName = productFallback
		}
		if summary.ProductCode == "" {
			summary.ProductCode = productFallback
		}
		rec.Assets = append(rec.Assets, summary)
	}
	for _, t := range in.Thresholds.Items {
		rec.Thresholds = append(rec.Thresholds, ThresholdRecord{
			Key:   t.Key,
			Name:  t.Name,
			Kind:  t.ThresholdType,
			Value: t.Value,
		})
	}
	return rec, nil
}
