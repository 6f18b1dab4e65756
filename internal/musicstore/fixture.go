package musicstore

import "time"

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// Fixture is a small catalog whose exercise answers can be checked by hand.
//
//   - Rock tracks last 600,000 ms in total, Jazz tracks 420,000 ms.
//   - Invoices 1, 3 and 6 each buy a whole album; 2, 4 and 5 do not.
//   - Customers 1, 2 and 3 buy in 2022; customers 2 and 4 buy after 2022.
func Fixture() Dataset {
	return Dataset{
		Genres: []Genre{
			{GenreID: 1, Name: "Rock"},
			{GenreID: 2, Name: "Jazz"},
			{GenreID: 3, Name: "Metal"},
			{GenreID: 4, Name: "Blues"},
		},
		Albums: []Album{
			{AlbumID: 1, Title: "For Those About To Rock"},
			{AlbumID: 2, Title: "Kind of Blue"},
			{AlbumID: 3, Title: "Master of Puppets"},
		},
		Tracks: []Track{
			{TrackID: 1, Name: "For Those About To Rock", AlbumID: 1, GenreID: 1, Milliseconds: 200000, UnitPrice: 0.99},
			{TrackID: 2, Name: "Put The Finger On You", AlbumID: 1, GenreID: 1, Milliseconds: 250000, UnitPrice: 0.99},
			{TrackID: 3, Name: "Let's Get It Up", AlbumID: 1, GenreID: 1, Milliseconds: 150000, UnitPrice: 0.99},
			{TrackID: 4, Name: "So What", AlbumID: 2, GenreID: 2, Milliseconds: 300000, UnitPrice: 0.99},
			{TrackID: 5, Name: "Blue in Green", AlbumID: 2, GenreID: 2, Milliseconds: 120000, UnitPrice: 0.99},
			{TrackID: 6, Name: "Battery", AlbumID: 3, GenreID: 3, Milliseconds: 400000, UnitPrice: 1.99},
			{TrackID: 7, Name: "Master of Puppets", AlbumID: 3, GenreID: 3, Milliseconds: 350000, UnitPrice: 1.99},
		},
		Employees: []Employee{
			{EmployeeID: 1, FirstName: "Jane", LastName: "Peacock", Title: "Sales Support Agent"},
			{EmployeeID: 2, FirstName: "Margaret", LastName: "Park", Title: "Sales Support Agent"},
			{EmployeeID: 3, FirstName: "Steve", LastName: "Johnson", Title: "Sales Support Agent"},
		},
		Customers: []Customer{
			{CustomerID: 1, FirstName: "Luís", LastName: "Gonçalves", Country: "Brazil", SupportRepID: 1},
			{CustomerID: 2, FirstName: "Leonie", LastName: "Köhler", Country: "Germany", SupportRepID: 1},
			{CustomerID: 3, FirstName: "François", LastName: "Tremblay", Country: "Canada", SupportRepID: 2},
			{CustomerID: 4, FirstName: "Bjørn", LastName: "Hansen", Country: "Norway", SupportRepID: 3},
		},
		Invoices: []Invoice{
			{InvoiceID: 1, CustomerID: 1, InvoiceDate: day(2021, time.March, 4), Total: 2.97},
			{InvoiceID: 2, CustomerID: 2, InvoiceDate: day(2022, time.January, 10), Total: 2.98},
			{InvoiceID: 3, CustomerID: 3, InvoiceDate: day(2022, time.June, 15), Total: 3.98},
			{InvoiceID: 4, CustomerID: 1, InvoiceDate: day(2022, time.November, 20), Total: 0.99},
			{InvoiceID: 5, CustomerID: 2, InvoiceDate: day(2023, time.February, 1), Total: 0.99},
			{InvoiceID: 6, CustomerID: 4, InvoiceDate: day(2024, time.May, 5), Total: 1.98},
		},
		InvoiceLines: []InvoiceLine{
			{InvoiceLineID: 1, InvoiceID: 1, TrackID: 1, UnitPrice: 0.99, Quantity: 1},
			{InvoiceLineID: 2, InvoiceID: 1, TrackID: 2, UnitPrice: 0.99, Quantity: 1},
			{InvoiceLineID: 3, InvoiceID: 1, TrackID: 3, UnitPrice: 0.99, Quantity: 1},
			{InvoiceLineID: 4, InvoiceID: 2, TrackID: 4, UnitPrice: 0.99, Quantity: 1},
			{InvoiceLineID: 5, InvoiceID: 2, TrackID: 6, UnitPrice: 1.99, Quantity: 1},
			{InvoiceLineID: 6, InvoiceID: 3, TrackID: 6, UnitPrice: 1.99, Quantity: 1},
			{InvoiceLineID: 7, InvoiceID: 3, TrackID: 7, UnitPrice: 1.99, Quantity: 1},
			{InvoiceLineID: 8, InvoiceID: 4, TrackID: 5, UnitPrice: 0.99, Quantity: 1},
			{InvoiceLineID: 9, InvoiceID: 5, TrackID: 2, UnitPrice: 0.99, Quantity: 1},
			{InvoiceLineID: 10, InvoiceID: 6, TrackID: 4, UnitPrice: 0.99, Quantity: 1},
			{InvoiceLineID: 11, InvoiceID: 6, TrackID: 5, UnitPrice: 0.99, Quantity: 1},
		},
	}
}
