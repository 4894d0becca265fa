package domain

import (
	"github.com/google/uuid"
)

// Request payloads. Dates travel as "2006-01-02" strings and are parsed
// in the service layer; amounts are recomputed server-side.

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Realm       Realm  `json:"realm"`
}

type CustomerRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	ReferenceName string `json:"referenceName" validate:"max=200"`
	ContactNumber string `json:"contactNumber" validate:"max=50"`
	Email         string `json:"email" validate:"omitempty,email"`
}

type ProductLineRequest struct {
	ProductName string  `json:"productName" validate:"required,max=200"`
	PartNumber  string  `json:"partNumber" validate:"max=100"`
	Category    string  `json:"category" validate:"max=100"`
	Quantity    float64 `json:"quantity" validate:"gte=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
}

type LeadRequest struct {
	CustomerID     uuid.UUID            `json:"customerId" validate:"required"`
	ProformaNumber string               `json:"proformaNumber" validate:"max=100"`
	LeadDate       string               `json:"leadDate" validate:"omitempty,datetime=2006-01-02"`
	Products       []ProductLineRequest `json:"products" validate:"required,min=1,dive"`
	FollowUpDate   string               `json:"followUpDate" validate:"omitempty,datetime=2006-01-02"`
	Remark         string               `json:"remark" validate:"max=1000"`
}

type ConvertLeadRequest struct {
	ProformaNumber string `json:"proformaNumber" validate:"max=100"`
}

type UpdateInvoiceProductsRequest struct {
	Products []ProductLineRequest `json:"products" validate:"required,min=1,dive"`
}

type PurchaseOrderRequest struct {
	OrderNumber       string               `json:"orderNumber" validate:"required,max=100"`
	OrderDate         string               `json:"orderDate" validate:"omitempty,datetime=2006-01-02"`
	VendorName        string               `json:"vendorName" validate:"max=200"`
	Purpose           PurchaseOrderPurpose `json:"purpose" validate:"omitempty,oneof=linked stock_in_sale"`
	ProformaInvoiceID *uuid.UUID           `json:"proformaInvoiceId"`
	Products          []ProductLineRequest `json:"products" validate:"required,min=1,dive"`
}

type FreightOverrideRequest struct {
	ProformaInvoiceID uuid.UUID `json:"proformaInvoiceId" validate:"required"`
	PurchaseOrderID   uuid.UUID `json:"purchaseOrderId" validate:"required"`
	FreightAmount     float64   `json:"freightAmount" validate:"gte=0"`
}

type GemBidRequest struct {
	FirmName     string    `json:"firmName" validate:"max=200"`
	BidNumber    string    `json:"bidNumber" validate:"required,max=100"`
	Details      string    `json:"details" validate:"max=2000"`
	StartDate    string    `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string    `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	EMDAmount    float64   `json:"emdAmount" validate:"gte=0"`
	Quantity     float64   `json:"quantity" validate:"gte=0"`
	City         string    `json:"city" validate:"max=100"`
	Department   string    `json:"department" validate:"max=200"`
	ItemCategory string    `json:"itemCategory" validate:"max=200"`
	EPBGPercent  *float64  `json:"epbgPercent" validate:"omitempty,gte=0"`
	EPBGMonths   *int      `json:"epbgMonths" validate:"omitempty,gte=0"`
	Status       BidStatus `json:"status" validate:"required"`
}

type SetBidStatusRequest struct {
	Status BidStatus `json:"status" validate:"required"`
}

type GemOrderItemRequest struct {
	SKU          string  `json:"sku" validate:"required,max=200"`
	Vendor       string  `json:"vendor" validate:"max=200"`
	Price        float64 `json:"price" validate:"gte=0"`
	Quantity     float64 `json:"quantity" validate:"gte=0"`
	InvoiceValue float64 `json:"invoiceValue" validate:"gte=0"`
	AdvancePaid  float64 `json:"advancePaid" validate:"gte=0"`
	OrderDate    string  `json:"orderDate" validate:"omitempty,datetime=2006-01-02"`
	DeliveryDate string  `json:"deliveryDate" validate:"omitempty,datetime=2006-01-02"`
}

type GemOrderRequest struct {
	BidNumber string                `json:"bidNumber" validate:"required,max=100"`
	Items     []GemOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// Spreadsheet import payloads. Rows are grouped into one request per
// lead or order before they reach the service layer; references travel
// by name or number and are resolved during import.

type LeadImportRequest struct {
	CustomerName   string
	ProformaNumber string
	LeadDate       string
	FollowUpDate   string
	Remark         string
	Products       []ProductLineRequest
}

type PurchaseOrderImportRequest struct {
	OrderNumber    string
	OrderDate      string
	VendorName     string
	Purpose        PurchaseOrderPurpose
	ProformaNumber string
	Products       []ProductLineRequest
}

// Response DTOs. Timestamps are ISO 8601, business dates "2006-01-02".

type CustomerDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ReferenceName string    `json:"referenceName,omitempty"`
	ContactNumber string    `json:"contactNumber,omitempty"`
	Email         string    `json:"email,omitempty"`
	CreatedAt     string    `json:"createdAt"`
}

type CustomerListDTO struct {
	Items []CustomerDTO `json:"items"`
	Total int64         `json:"total"`
}

type LeadDTO struct {
	ID             uuid.UUID     `json:"id"`
	CustomerID     uuid.UUID     `json:"customerId"`
	CustomerName   string        `json:"customerName"`
	ProformaNumber string        `json:"proformaNumber,omitempty"`
	LeadDate       string        `json:"leadDate,omitempty"`
	Products       []ProductLine `json:"products"`
	TotalAmount    float64       `json:"totalAmount"`
	FollowUpDate   string        `json:"followUpDate,omitempty"`
	Remark         string        `json:"remark,omitempty"`
	TenderDocument *string       `json:"tenderDocument,omitempty"`
	WorkingSheet   *string       `json:"workingSheet,omitempty"`
	IsConverted    bool          `json:"isConverted"`
	CreatedAt      string        `json:"createdAt"`
}

type ProformaInvoiceDTO struct {
	ID             uuid.UUID     `json:"id"`
	ProformaNumber string        `json:"proformaNumber"`
	CustomerID     uuid.UUID     `json:"customerId"`
	CustomerName   string        `json:"customerName"`
	InvoiceDate    string        `json:"invoiceDate,omitempty"`
	Products       []ProductLine `json:"products"`
	TotalAmount    float64       `json:"totalAmount"`
	TenderDocument *string       `json:"tenderDocument,omitempty"`
	WorkingSheet   *string       `json:"workingSheet,omitempty"`
	LeadID         *uuid.UUID    `json:"leadId,omitempty"`
	CreatedAt      string        `json:"createdAt"`
}

type PurchaseOrderDTO struct {
	ID                uuid.UUID            `json:"id"`
	OrderNumber       string               `json:"orderNumber"`
	OrderDate         string               `json:"orderDate,omitempty"`
	VendorName        string               `json:"vendorName,omitempty"`
	Purpose           PurchaseOrderPurpose `json:"purpose"`
	ProformaInvoiceID *uuid.UUID           `json:"proformaInvoiceId,omitempty"`
	ProformaNumber    string               `json:"proformaNumber,omitempty"`
	Products          []ProductLine        `json:"products"`
	TotalAmount       float64              `json:"totalAmount"`
	CreatedAt         string               `json:"createdAt"`
}

type MarginEntryDTO struct {
	ProformaInvoiceID uuid.UUID `json:"proformaInvoiceId"`
	ProformaNumber    string    `json:"proformaNumber"`
	CustomerName      string    `json:"customerName,omitempty"`
	PurchaseOrderID   uuid.UUID `json:"purchaseOrderId"`
	OrderNumber       string    `json:"orderNumber"`
	ProformaTotal     float64   `json:"proformaTotal"`
	OrderTotal        float64   `json:"orderTotal"`
	RemainingAmount   float64   `json:"remainingAmount"`
	FreightAmount     float64   `json:"freightAmount"`
	MarginAmount      float64   `json:"marginAmount"`
}

type DashboardKPIDTO struct {
	CustomerCount   int64   `json:"customerCount"`
	ActiveLeadCount int64   `json:"activeLeadCount"`
	InvoiceCount    int64   `json:"invoiceCount"`
	OrderCount      int64   `json:"orderCount"`
	MarginSummary   float64 `json:"marginSummary"`
}

type GemBidDTO struct {
	ID             uuid.UUID      `json:"id"`
	FirmName       string         `json:"firmName,omitempty"`
	BidNumber      string         `json:"bidNumber"`
	Details        string         `json:"details,omitempty"`
	StartDate      string         `json:"startDate,omitempty"`
	EndDate        string         `json:"endDate,omitempty"`
	EMDAmount      float64        `json:"emdAmount"`
	Quantity       float64        `json:"quantity"`
	City           string         `json:"city,omitempty"`
	Department     string         `json:"department,omitempty"`
	ItemCategory   string         `json:"itemCategory,omitempty"`
	EPBGPercent    *float64       `json:"epbgPercent,omitempty"`
	EPBGMonths     *int           `json:"epbgMonths,omitempty"`
	Status         BidStatus      `json:"status"`
	StatusHistory  []StatusChange `json:"statusHistory"`
	Documents      []BidDocument  `json:"documents"`
	ReminderSent   bool           `json:"reminderSent"`
	ReminderSentAt string         `json:"reminderSentAt,omitempty"`
	CreatedAt      string         `json:"createdAt"`
}

type GemOrderDTO struct {
	ID        uuid.UUID      `json:"id"`
	BidNumber string         `json:"bidNumber"`
	Items     []GemOrderItem `json:"items"`
	CreatedAt string         `json:"createdAt"`
}

// ReminderRunSummaryDTO reports one reminder scan
type ReminderRunSummaryDTO struct {
	Matched int    `json:"matched"`
	Sent    int    `json:"sent"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
	RanAt   string `json:"ranAt"`
}

// ReminderStatusDTO reports the scheduler state for the status endpoint
type ReminderStatusDTO struct {
	Enabled  bool                   `json:"enabled"`
	CronExpr string                 `json:"cronExpr"`
	LastRun  *ReminderRunSummaryDTO `json:"lastRun,omitempty"`
}

// BulkUploadResultDTO summarizes a spreadsheet import
type BulkUploadResultDTO struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// DocumentUploadDTO reports a stored document reference
type DocumentUploadDTO struct {
	Filename    string `json:"filename"`
	StoragePath string `json:"storagePath"`
	Size        int64  `json:"size"`
}
