package openai

import (
	"fmt"

	"tradeflow/internal/domain"
)

const systemPrompt = `You are a trade-document data extraction engine for a freight
forwarding platform. You receive one shipping document (invoice, packing list,
bill of lading, etc.) and return ONLY a single JSON object, no markdown fences
and no commentary, shaped as:

{
  "fields": { ... flat key/value pairs extracted from the document ... },
  "confidence": 0.0
}

"confidence" is your overall confidence in the extraction, between 0.0 and 1.0.
Use null for any field you cannot find. Numbers must be plain JSON numbers
without units or thousands separators. Dates use YYYY-MM-DD.`

// fieldSchemas lists the field keys to request per document type. Keys match
// what downstream consumers (shipment auto-fill, invoice metadata) look up.
var fieldSchemas = map[domain.DocumentType]string{
	domain.DocumentTypeInvoice: `"invoice_number", "date", "due_date", "po_number",
"seller_name", "buyer_name", "company_name", "payment_terms",
"amount", "tax_amount", "currency", "hs_code",
"gross_weight", "net_weight", "volume_cbm", "total_packages",
"description", "items" (array of {description, quantity, unit_price, amount}),
"summary", "notes"`,
	domain.DocumentTypeCommercialInvoice: `"invoice_number", "date", "seller_name", "buyer_name",
"amount", "tax_amount", "currency", "hs_code", "incoterms",
"country_of_origin", "gross_weight", "net_weight", "total_packages",
"description", "items" (array of {description, quantity, unit_price, amount})`,
	domain.DocumentTypePackingList: `"packing_list_number", "date", "seller_name", "buyer_name",
"total_packages", "gross_weight", "net_weight", "volume_cbm",
"package_type", "marks_and_numbers", "description"`,
	domain.DocumentTypeCertificateOfOrigin: `"certificate_number", "date", "exporter_name", "consignee_name",
"country_of_origin", "hs_code", "description", "gross_weight", "total_packages"`,
	domain.DocumentTypeBillOfLading: `"bl_number", "date", "shipper_name", "consignee_name", "notify_party",
"vessel_name", "voyage_number", "port_of_loading", "port_of_discharge",
"container_numbers", "gross_weight", "net_weight", "volume_cbm",
"total_packages", "hs_code", "description", "freight_terms"`,
	domain.DocumentTypeHouseBL: `"bl_number", "date", "shipper_name", "consignee_name", "notify_party",
"vessel_name", "voyage_number", "port_of_loading", "port_of_discharge",
"gross_weight", "volume_cbm", "total_packages", "description"`,
	domain.DocumentTypeMasterBL: `"bl_number", "date", "carrier_name", "shipper_name", "consignee_name",
"vessel_name", "voyage_number", "port_of_loading", "port_of_discharge",
"container_numbers", "gross_weight", "volume_cbm", "total_packages", "description"`,
	domain.DocumentTypeTelexRelease: `"bl_number", "date", "carrier_name", "shipper_name", "consignee_name",
"release_confirmation", "port_of_discharge"`,
	domain.DocumentTypeOther: `any clearly labeled key facts: parties, dates, reference numbers,
"amount", "currency", "gross_weight", "net_weight", "volume_cbm",
"total_packages", "hs_code", "description"`,
}

func buildPrompt(docType domain.DocumentType) string {
	schema, ok := fieldSchemas[docType]
	if !ok {
		schema = fieldSchemas[domain.DocumentTypeOther]
	}
	return fmt.Sprintf(
		"The attached document is of type %q. Extract the following fields into the \"fields\" object:\n%s",
		docType, schema)
}
