package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields. IDs are assigned in BeforeCreate so the
// same models work on the primary postgres store and the in-memory
// fallback store, which has no gen_random_uuid().
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns a UUID primary key if one is not already set
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Realm identifies one of the two independent credential realms
type Realm string

const (
	RealmCRM    Realm = "crm"
	RealmGemBid Realm = "gem_bid"
)

// IsValid checks whether the realm is one of the known realms
func (r Realm) IsValid() bool {
	return r == RealmCRM || r == RealmGemBid
}

// User represents a login identity within a single realm
type User struct {
	BaseModel
	Email    string `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email_realm"`
	Password string `gorm:"type:varchar(255);not null"`
	Name     string `gorm:"type:varchar(200)"`
	Realm    Realm  `gorm:"type:varchar(20);not null;uniqueIndex:idx_users_email_realm"`
}

// Customer represents a customer of the business
type Customer struct {
	BaseModel
	Name          string `gorm:"type:varchar(200);not null;index"`
	ReferenceName string `gorm:"type:varchar(200)"`
	ContactNumber string `gorm:"type:varchar(50)"`
	Email         string `gorm:"type:varchar(255)"`
}

// ProductLine is one row of a lead, invoice or purchase order.
// Amount is quantity x unit price rounded to 2 decimals, computed
// server-side and never trusted from the client.
type ProductLine struct {
	SrNo        int     `json:"srNo,omitempty"`
	ProductName string  `json:"productName"`
	PartNumber  string  `json:"partNumber,omitempty"`
	Category    string  `json:"category,omitempty"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Amount      float64 `json:"amount"`
}

// ProductLines is stored as a single JSON column so the row shape is
// identical on postgres and the sqlite fallback.
type ProductLines []ProductLine

func (p ProductLines) Value() (driver.Value, error) { return jsonValue(p) }
func (p *ProductLines) Scan(src interface{}) error  { return jsonScan(p, src) }

// GormDataType keeps GORM from guessing a column type for the slice
func (ProductLines) GormDataType() string { return "jsonb" }

// Lead represents a sales lead. Once converted to a proforma invoice its
// core fields become immutable through the update path; only document
// attachment and removal remain permitted.
type Lead struct {
	BaseModel
	CustomerID     uuid.UUID    `gorm:"type:uuid;index"`
	CustomerName   string       `gorm:"type:varchar(200)"`
	ProformaNumber string       `gorm:"type:varchar(100)"`
	LeadDate       *time.Time
	Products       ProductLines
	TotalAmount    float64
	FollowUpDate   *time.Time
	Remark         string `gorm:"type:varchar(1000)"`
	TenderDocument *string `gorm:"type:varchar(500)"`
	WorkingSheet   *string `gorm:"type:varchar(500)"`
	IsConverted    bool    `gorm:"not null;default:false;index"`
}

// ProformaInvoice is created from a lead by the conversion engine.
// Products, totals and document references are a cache of the source
// lead's state, refreshed on every read while the lead exists.
type ProformaInvoice struct {
	BaseModel
	ProformaNumber string    `gorm:"type:varchar(100);index"`
	CustomerID     uuid.UUID `gorm:"type:uuid;index"`
	CustomerName   string    `gorm:"type:varchar(200)"`
	InvoiceDate    *time.Time
	Products       ProductLines
	TotalAmount    float64
	TenderDocument *string `gorm:"type:varchar(500)"`
	WorkingSheet   *string `gorm:"type:varchar(500)"`
	// LeadID is the exclusive back-reference to the originating lead;
	// a lead converts to at most one invoice.
	LeadID *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
}

// PurchaseOrderPurpose distinguishes orders placed against an invoice
// from stock purchases made for resale.
type PurchaseOrderPurpose string

const (
	PurposeLinked      PurchaseOrderPurpose = "linked"
	PurposeStockInSale PurchaseOrderPurpose = "stock_in_sale"
)

// IsValid checks whether the purpose is one of the known values
func (p PurchaseOrderPurpose) IsValid() bool {
	return p == PurposeLinked || p == PurposeStockInSale
}

// PurchaseOrder is an order placed with a vendor. Legacy records carry a
// single flat product in the legacy columns instead of a products array;
// they are normalized at the repository read boundary.
type PurchaseOrder struct {
	BaseModel
	OrderNumber       string               `gorm:"type:varchar(100);index"`
	OrderDate         *time.Time
	VendorName        string               `gorm:"type:varchar(200)"`
	Purpose           PurchaseOrderPurpose `gorm:"type:varchar(50);not null;default:'linked'"`
	ProformaInvoiceID *uuid.UUID           `gorm:"type:uuid;index"`
	ProformaNumber    string               `gorm:"type:varchar(100)"`
	Products          ProductLines
	TotalAmount       float64

	// Legacy single-product columns (pre line-array records)
	LegacyProduct  *string  `gorm:"type:varchar(200);column:product"`
	LegacyCategory *string  `gorm:"type:varchar(100);column:category"`
	LegacyQuantity *float64 `gorm:"column:quantity"`
	LegacyPrice    *float64 `gorm:"column:price"`
	LegacyAmount   *float64 `gorm:"column:amount"`
}

// FreightOverride is the side-table of freight amounts keyed by an
// (invoice, order) pair. Absent rows mean freight 0; rows may be set
// before the pair exists as a real linked relationship.
type FreightOverride struct {
	BaseModel
	ProformaInvoiceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_freight_pair"`
	PurchaseOrderID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_freight_pair"`
	FreightAmount     float64
}

// MarginEntry is one computed margin row for an (invoice, linked order)
// pair. It is derived on demand and never stored.
type MarginEntry struct {
	ProformaInvoiceID uuid.UUID
	ProformaNumber    string
	CustomerName      string
	PurchaseOrderID   uuid.UUID
	OrderNumber       string
	ProformaTotal     float64
	OrderTotal        float64
	RemainingAmount   float64
	FreightAmount     float64
	MarginAmount      float64
}

// BidStatus is one of the nine GEM bid workflow statuses. The order
// below is the canonical lifecycle, but transitions are not restricted
// to adjacency; any status may be set from any other.
type BidStatus string

const (
	BidStatusShortlisted         BidStatus = "Shortlisted"
	BidStatusParticipated        BidStatus = "Participated"
	BidStatusTechnicalEvaluation BidStatus = "Technical Evaluation"
	BidStatusRA                  BidStatus = "RA"
	BidStatusRejected            BidStatus = "Rejected"
	BidStatusAwarded             BidStatus = "Bid Awarded"
	BidStatusSupplyOrderReceived BidStatus = "Supply Order Received"
	BidStatusMaterialProcurement BidStatus = "Material Procurement"
	BidStatusOrderComplete       BidStatus = "Order Complete"
)

// AllBidStatuses returns the nine statuses in canonical lifecycle order
func AllBidStatuses() []BidStatus {
	return []BidStatus{
		BidStatusShortlisted,
		BidStatusParticipated,
		BidStatusTechnicalEvaluation,
		BidStatusRA,
		BidStatusRejected,
		BidStatusAwarded,
		BidStatusSupplyOrderReceived,
		BidStatusMaterialProcurement,
		BidStatusOrderComplete,
	}
}

// IsValid checks membership in the nine-status set
func (s BidStatus) IsValid() bool {
	for _, known := range AllBidStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// IsCompleted reports whether the status belongs to the terminal set
// that moves a bid from the "new" view to the "completed" view.
func (s BidStatus) IsCompleted() bool {
	switch s {
	case BidStatusAwarded, BidStatusSupplyOrderReceived, BidStatusMaterialProcurement, BidStatusOrderComplete:
		return true
	}
	return false
}

// CompletedBidStatuses returns the terminal status set
func CompletedBidStatuses() []BidStatus {
	return []BidStatus{
		BidStatusAwarded,
		BidStatusSupplyOrderReceived,
		BidStatusMaterialProcurement,
		BidStatusOrderComplete,
	}
}

// StatusChange is one entry of a bid's status audit trail
type StatusChange struct {
	Status    BidStatus `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
}

// StatusHistory is the append-only status audit trail, stored as JSON
type StatusHistory []StatusChange

func (h StatusHistory) Value() (driver.Value, error) { return jsonValue(h) }
func (h *StatusHistory) Scan(src interface{}) error  { return jsonScan(h, src) }
func (StatusHistory) GormDataType() string           { return "jsonb" }

// BidDocument is a file attached to a bid
type BidDocument struct {
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storagePath"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// BidDocuments is the ordered attachment list, stored as JSON
type BidDocuments []BidDocument

func (d BidDocuments) Value() (driver.Value, error) { return jsonValue(d) }
func (d *BidDocuments) Scan(src interface{}) error  { return jsonScan(d, src) }
func (BidDocuments) GormDataType() string           { return "jsonb" }

// GemBid represents a tracked GEM tender bid
type GemBid struct {
	BaseModel
	FirmName       string `gorm:"type:varchar(200)"`
	BidNumber      string `gorm:"type:varchar(100);index"`
	Details        string `gorm:"type:varchar(2000)"`
	StartDate      *time.Time
	EndDate        *time.Time `gorm:"index"`
	EMDAmount      float64    `gorm:"column:emd_amount"`
	Quantity       float64
	City           string   `gorm:"type:varchar(100)"`
	Department     string   `gorm:"type:varchar(200)"`
	ItemCategory   string   `gorm:"type:varchar(200)"`
	EPBGPercent    *float64 `gorm:"column:epbg_percent"`
	EPBGMonths     *int     `gorm:"column:epbg_months"`
	Status         BidStatus `gorm:"type:varchar(50);index"`
	StatusHistory  StatusHistory
	Documents      BidDocuments
	ReminderSent   bool `gorm:"not null;default:false;index"`
	ReminderSentAt *time.Time
}

// GemOrderItem is one line of a GEM order. RemainingAmount is always
// invoice value minus advance paid, computed server-side.
type GemOrderItem struct {
	SKU             string     `json:"sku"`
	Vendor          string     `json:"vendor,omitempty"`
	Price           float64    `json:"price"`
	Quantity        float64    `json:"quantity"`
	InvoiceValue    float64    `json:"invoiceValue"`
	AdvancePaid     float64    `json:"advancePaid"`
	RemainingAmount float64    `json:"remainingAmount"`
	OrderDate       *time.Time `json:"orderDate,omitempty"`
	DeliveryDate    *time.Time `json:"deliveryDate,omitempty"`
}

// GemOrderItems is stored as a single JSON column
type GemOrderItems []GemOrderItem

func (i GemOrderItems) Value() (driver.Value, error) { return jsonValue(i) }
func (i *GemOrderItems) Scan(src interface{}) error  { return jsonScan(i, src) }
func (GemOrderItems) GormDataType() string           { return "jsonb" }

// GemOrder is an order received against a bid. Legacy records carry a
// single flat SKU in the legacy columns; they are normalized at read.
type GemOrder struct {
	BaseModel
	BidNumber string `gorm:"type:varchar(100);index"`
	Items     GemOrderItems

	// Legacy single-SKU columns
	LegacySKU          *string  `gorm:"type:varchar(200);column:sku"`
	LegacyVendor       *string  `gorm:"type:varchar(200);column:vendor"`
	LegacyPrice        *float64 `gorm:"column:price"`
	LegacyQuantity     *float64 `gorm:"column:quantity"`
	LegacyInvoiceValue *float64 `gorm:"column:invoice_value"`
	LegacyAdvancePaid  *float64 `gorm:"column:advance_paid"`
}

// MaxUploadSize caps document uploads for leads and bids
const MaxUploadSize = 25 << 20 // 25 MB

var allowedDocumentExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".xls":  {},
	".xlsx": {},
	".png":  {},
}

// IsAllowedDocument reports whether the filename carries one of the
// permitted document extensions.
func IsAllowedDocument(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	_, ok := allowedDocumentExtensions[ext]
	return ok
}

// AllowedDocumentExtensions lists the permitted extensions without dots
func AllowedDocumentExtensions() []string {
	return []string{"pdf", "doc", "docx", "xls", "xlsx", "png"}
}

func jsonValue(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func jsonScan(dest interface{}, src interface{}) error {
	if src == nil {
		return nil
	}
	var data []byte
	switch s := src.(type) {
	case []byte:
		data = s
	case string:
		data = []byte(s)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}
