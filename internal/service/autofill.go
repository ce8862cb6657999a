package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"tradeflow/internal/domain"
)

// AutofillResult reports which shipment fields were filled from a document.
type AutofillResult struct {
	DocumentID      uuid.UUID              `json:"document_id"`
	ShipmentID      uuid.UUID              `json:"shipment_id"`
	UpdatedFields   []string               `json:"updated_fields"`
	Confidence      float64                `json:"confidence"`
	ExtractedValues map[string]interface{} `json:"extracted_values"`
}

// autofillRule maps one shipment field to the extracted-data keys that can
// fill it, in priority order, plus the setter that coerces and applies the
// value. Adding a field is one new row.
type autofillRule struct {
	Field   string
	Aliases []string
	Set     func(s *domain.Shipment, v interface{}) bool
}

var autofillRules = []autofillRule{
	{
		Field:   "gross_weight_kg",
		Aliases: []string{"total_weight_kg", "gross_weight", "weight_kg"},
		Set: func(s *domain.Shipment, v interface{}) bool {
			f, ok := toFloat(v)
			if !ok {
				return false
			}
			s.GrossWeightKg = &f
			return true
		},
	},
	{
		Field:   "net_weight_kg",
		Aliases: []string{"net_weight", "net_weight_kg"},
		Set: func(s *domain.Shipment, v interface{}) bool {
			f, ok := toFloat(v)
			if !ok {
				return false
			}
			s.NetWeightKg = &f
			return true
		},
	},
	{
		Field:   "volume_cbm",
		Aliases: []string{"volume_cbm", "volume", "total_volume"},
		Set: func(s *domain.Shipment, v interface{}) bool {
			f, ok := toFloat(v)
			if !ok {
				return false
			}
			s.VolumeCbm = &f
			return true
		},
	},
	{
		Field:   "total_packages",
		Aliases: []string{"total_packages", "packages", "quantity"},
		Set: func(s *domain.Shipment, v interface{}) bool {
			n, ok := toInt(v)
			if !ok {
				return false
			}
			s.TotalPackages = &n
			return true
		},
	},
	{
		Field:   "hs_code",
		Aliases: []string{"hs_code", "hscode", "harmonized_code"},
		Set: func(s *domain.Shipment, v interface{}) bool {
			str, ok := toString(v)
			if !ok {
				return false
			}
			s.HSCode = str
			return true
		},
	},
	{
		Field:   "goods_description",
		Aliases: []string{"description", "goods_description", "item_description"},
		Set: func(s *domain.Shipment, v interface{}) bool {
			str, ok := toString(v)
			if !ok {
				return false
			}
			s.GoodsDescription = str
			return true
		},
	},
}

// DefaultAutofillFields lists the shipment fields filled when the request
// names none.
func DefaultAutofillFields() []string {
	fields := make([]string, len(autofillRules))
	for i, rule := range autofillRules {
		fields[i] = rule.Field
	}
	return fields
}

func (s *documentService) Autofill(ctx context.Context, documentID uuid.UUID, fields []string) (*AutofillResult, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	extracted := map[string]interface{}{}
	if len(doc.ExtractedData) > 0 {
		if err := json.Unmarshal(doc.ExtractedData, &extracted); err != nil {
			return nil, domain.ErrNoExtractedData
		}
	}
	if len(extracted) == 0 {
		return nil, domain.ErrNoExtractedData
	}

	shipment, err := s.shipmentRepo.GetByID(ctx, doc.ShipmentID)
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		fields = DefaultAutofillFields()
	}
	requested := make(map[string]bool, len(fields))
	for _, f := range fields {
		requested[f] = true
	}

	updatedFields := []string{}
	extractedValues := map[string]interface{}{}
	for _, rule := range autofillRules {
		if !requested[rule.Field] {
			continue
		}
		for _, alias := range rule.Aliases {
			value, present := extracted[alias]
			if !present || isEmptyValue(value) {
				continue
			}
			if rule.Set(shipment, value) {
				updatedFields = append(updatedFields, rule.Field)
				extractedValues[rule.Field] = value
				break
			}
		}
	}

	if err := s.shipmentRepo.Update(ctx, shipment); err != nil {
		return nil, err
	}

	return &AutofillResult{
		DocumentID:      doc.ID,
		ShipmentID:      shipment.ID,
		UpdatedFields:   updatedFields,
		Confidence:      doc.ConfidenceScore,
		ExtractedValues: extractedValues,
	}, nil
}

// isEmptyValue mirrors the falsy check extraction consumers rely on: nil,
// empty strings, and zero numbers never auto-fill.
func isEmptyValue(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case float64:
		return val == 0
	case int:
		return val == 0
	case bool:
		return !val
	default:
		return false
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case float64:
		return int(val), true
	case int:
		return val, true
	case json.Number:
		n, err := val.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		return n, err == nil
	default:
		return 0, false
	}
}

func toString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case json.Number:
		return val.String(), true
	default:
		return "", false
	}
}
