// Package spreadsheet handles the Excel bulk-import and template
// surface. Templates carry a single header row; imports read rows
// below it, so row numbers in error messages are offset by the header.
package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

var (
	CustomerHeaders = []string{"Name", "Reference Name", "Contact Number", "Email"}

	LeadHeaders = []string{
		"Customer Name", "Proforma Number", "Lead Date",
		"Product Name", "Part Number", "Category", "Quantity", "Unit Price",
		"Follow-up Date", "Remark",
	}

	PurchaseOrderHeaders = []string{
		"Order Number", "Order Date", "Vendor Name", "Purpose", "Proforma Number",
		"Product Name", "Part Number", "Category", "Quantity", "Unit Price",
	}

	GemBidHeaders = []string{
		"Firm Name", "Bid Number", "Details", "Start Date", "End Date",
		"EMD Amount", "Quantity", "City", "Department", "Item Category", "Status",
	}
)

// WriteTemplate writes an empty workbook carrying only the header row
func WriteTemplate(w io.Writer, headers []string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to set header: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	return nil
}

// ParseCustomers reads one customer per row
func ParseCustomers(r io.Reader) ([]domain.CustomerRequest, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	reqs := make([]domain.CustomerRequest, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, domain.CustomerRequest{
			Name:          cell(row, 0),
			ReferenceName: cell(row, 1),
			ContactNumber: cell(row, 2),
			Email:         cell(row, 3),
		})
	}
	return reqs, nil
}

// ParseLeads reads product rows grouped into leads: rows sharing a
// proforma number become the lines of one lead, and rows without one
// group by customer name instead. Customers are resolved by name
// during import.
func ParseLeads(r io.Reader) ([]domain.LeadImportRequest, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	var reqs []domain.LeadImportRequest
	byKey := map[string]int{}

	for i, row := range rows {
		customerName := cell(row, 0)
		if customerName == "" {
			return nil, fmt.Errorf("row %d: missing customer name", i+2)
		}
		proformaNumber := cell(row, 1)

		quantity, err := cellFloat(row, 6)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		unitPrice, err := cellFloat(row, 7)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		line := domain.ProductLineRequest{
			ProductName: cell(row, 3),
			PartNumber:  cell(row, 4),
			Category:    cell(row, 5),
			Quantity:    quantity,
			UnitPrice:   unitPrice,
		}

		key := proformaNumber
		if key == "" {
			key = strings.ToLower(customerName)
		}
		if idx, ok := byKey[key]; ok {
			reqs[idx].Products = append(reqs[idx].Products, line)
			continue
		}

		byKey[key] = len(reqs)
		reqs = append(reqs, domain.LeadImportRequest{
			CustomerName:   customerName,
			ProformaNumber: proformaNumber,
			LeadDate:       cell(row, 2),
			FollowUpDate:   cell(row, 8),
			Remark:         cell(row, 9),
			Products:       []domain.ProductLineRequest{line},
		})
	}
	return reqs, nil
}

// ParsePurchaseOrders reads product rows grouped by order number:
// consecutive rows sharing an order number become the lines of one
// order. An empty purpose cell means stock-in-sale; linked rows name
// their invoice by proforma number and are resolved during import.
func ParsePurchaseOrders(r io.Reader) ([]domain.PurchaseOrderImportRequest, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	var reqs []domain.PurchaseOrderImportRequest
	byNumber := map[string]int{}

	for i, row := range rows {
		orderNumber := cell(row, 0)
		if orderNumber == "" {
			return nil, fmt.Errorf("row %d: missing order number", i+2)
		}

		quantity, err := cellFloat(row, 8)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		unitPrice, err := cellFloat(row, 9)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		line := domain.ProductLineRequest{
			ProductName: cell(row, 5),
			PartNumber:  cell(row, 6),
			Category:    cell(row, 7),
			Quantity:    quantity,
			UnitPrice:   unitPrice,
		}

		if idx, ok := byNumber[orderNumber]; ok {
			reqs[idx].Products = append(reqs[idx].Products, line)
			continue
		}

		purpose := domain.PurchaseOrderPurpose(strings.ToLower(cell(row, 3)))
		if purpose == "" {
			purpose = domain.PurposeStockInSale
		}

		byNumber[orderNumber] = len(reqs)
		reqs = append(reqs, domain.PurchaseOrderImportRequest{
			OrderNumber:    orderNumber,
			OrderDate:      cell(row, 1),
			VendorName:     cell(row, 2),
			Purpose:        purpose,
			ProformaNumber: cell(row, 4),
			Products:       []domain.ProductLineRequest{line},
		})
	}
	return reqs, nil
}

// ParseGemBids reads one bid per row. An empty status cell is left
// blank; the service applies the workflow's starting status.
func ParseGemBids(r io.Reader) ([]domain.GemBidRequest, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	reqs := make([]domain.GemBidRequest, 0, len(rows))
	for i, row := range rows {
		emdAmount, err := cellFloat(row, 5)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		quantity, err := cellFloat(row, 6)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		reqs = append(reqs, domain.GemBidRequest{
			FirmName:     cell(row, 0),
			BidNumber:    cell(row, 1),
			Details:      cell(row, 2),
			StartDate:    cell(row, 3),
			EndDate:      cell(row, 4),
			EMDAmount:    emdAmount,
			Quantity:     quantity,
			City:         cell(row, 7),
			Department:   cell(row, 8),
			ItemCategory: cell(row, 9),
			Status:       domain.BidStatus(cell(row, 10)),
		})
	}
	return reqs, nil
}

// readRows opens the workbook and returns the data rows below the
// header, skipping rows that are entirely empty.
func readRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		empty := true
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				empty = false
				break
			}
		}
		if !empty {
			data = append(data, row)
		}
	}
	return data, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func cellFloat(row []string, idx int) (float64, error) {
	raw := cell(row, idx)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}
