package domain

import "time"

// Product is the catalog entity the jobs and handlers operate on.
type Product struct {
	ID          string     `bson:"_id" json:"id"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description" json:"description"`
	CategoryID  string     `bson:"categoryId" json:"category_id"`
	Colour      string     `bson:"colour" json:"colour"`
	Style       string     `bson:"style" json:"style"`
	Finish      string     `bson:"finish" json:"finish"`
	Range       string     `bson:"range" json:"range"`
	Price       float64    `bson:"price" json:"price"`
	IsActive    bool       `bson:"isActive" json:"is_active"`
	CreatedAt   time.Time  `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updated_at"`
	DeletedAt   *time.Time `bson:"deletedAt,omitempty" json:"deleted_at,omitempty"`
}

// Inventory tracks stock for a single product.
type Inventory struct {
	ID                string    `bson:"_id" json:"id"`
	ProductID         string    `bson:"productId" json:"product_id"`
	AvailableStock    int       `bson:"availableStock" json:"available_stock"`
	ReservedStock     int       `bson:"reservedStock" json:"reserved_stock"`
	LowStockThreshold int       `bson:"lowStockThreshold" json:"low_stock_threshold"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updated_at"`
}

// PriceHistory is an append-only record of a price change.
type PriceHistory struct {
	ID            string    `bson:"_id" json:"id"`
	ProductID     string    `bson:"productId" json:"product_id"`
	OldPrice      float64   `bson:"oldPrice" json:"old_price"`
	NewPrice      float64   `bson:"newPrice" json:"new_price"`
	PercentChange float64   `bson:"percentChange" json:"percent_change"`
	Reason        string    `bson:"reason" json:"reason"`
	ChangedAt     time.Time `bson:"changedAt" json:"changed_at"`
}

// ProductArchive is the snapshot written before a product is soft-deleted.
type ProductArchive struct {
	ID         string    `bson:"_id" json:"id"`
	ProductID  string    `bson:"productId" json:"product_id"`
	Snapshot   Product   `bson:"snapshot" json:"snapshot"`
	Reason     string    `bson:"reason" json:"reason"`
	ArchivedAt time.Time `bson:"archivedAt" json:"archived_at"`
}
