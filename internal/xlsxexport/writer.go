package xlsxexport

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"tradeflow/internal/domain"
)

const sheetName = "Accepted Quotes"

var headers = []string{
	"Shipment ID", "Origin", "Destination", "Status",
	"Quote Amount", "Gross Weight (kg)", "Net Weight (kg)", "Volume (cbm)",
	"Total Packages", "HS Code", "Goods Description",
	"Supplier", "Supplier Company", "Supplier Email", "Supplier Phone",
	"Booked At",
}

// WriteAcceptedQuotes renders the forwarder's won shipments as an XLSX
// workbook.
func WriteAcceptedQuotes(shipments []domain.ShipmentWithSupplier) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}

	for i, s := range shipments {
		row := []interface{}{
			s.ID.String(), s.Origin, s.Destination, string(s.Status),
			derefFloat(s.QuoteAmount), derefFloat(s.GrossWeightKg), derefFloat(s.NetWeightKg), derefFloat(s.VolumeCbm),
			derefInt(s.TotalPackages), s.HSCode, s.GoodsDescription,
			"", "", "", "",
			s.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if s.SupplierDetails != nil {
			row[11] = s.SupplierDetails.Name
			row[12] = s.SupplierDetails.CompanyName
			row[13] = s.SupplierDetails.Email
			row[14] = s.SupplierDetails.Phone
		}

		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("row cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("writing row %d: %w", i+2, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func derefFloat(f *float64) interface{} {
	if f == nil {
		return ""
	}
	return *f
}

func derefInt(n *int) interface{} {
	if n == nil {
		return ""
	}
	return *n
}
