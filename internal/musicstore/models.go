package musicstore

import "time"

// The music-store catalog. Tables are singular and snake_case (track,
// invoice_line, ...) so the exercises read like the classic sample schema.

type Genre struct {
	GenreID uint `gorm:"primaryKey"`
	Name    string
}

type Album struct {
	AlbumID uint `gorm:"primaryKey"`
	Title   string
}

type Track struct {
	TrackID      uint `gorm:"primaryKey"`
	Name         string
	AlbumID      uint `gorm:"index"`
	GenreID      uint `gorm:"index"`
	Milliseconds int64
	UnitPrice    float64
}

type Employee struct {
	EmployeeID uint `gorm:"primaryKey"`
	FirstName  string
	LastName   string
	Title      string
}

type Customer struct {
	CustomerID   uint `gorm:"primaryKey"`
	FirstName    string
	LastName     string
	Country      string
	SupportRepID uint `gorm:"index"`
}

type Invoice struct {
	InvoiceID   uint `gorm:"primaryKey"`
	CustomerID  uint `gorm:"index"`
	InvoiceDate time.Time
	Total       float64
}

type InvoiceLine struct {
	InvoiceLineID uint `gorm:"primaryKey"`
	InvoiceID     uint `gorm:"index"`
	TrackID       uint `gorm:"index"`
	UnitPrice     float64
	Quantity      int
}

// Tables lists the catalog tables, parents before children.
var Tables = []string{"genre", "album", "track", "employee", "customer", "invoice", "invoice_line"}

// Dataset is a full set of rows for every catalog table.
type Dataset struct {
	Genres       []Genre
	Albums       []Album
	Tracks       []Track
	Employees    []Employee
	Customers    []Customer
	Invoices     []Invoice
	InvoiceLines []InvoiceLine
}

func allModels() []any {
	return []any{
		&Genre{},
		&Album{},
		&Track{},
		&Employee{},
		&Customer{},
		&Invoice{},
		&InvoiceLine{},
	}
}
