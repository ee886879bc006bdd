package services

import (
	"context"
	"io"

	"github.com/tealeg/xlsx"
)

const timeLayout = "2006-01-02 15:04:05"

func addRow(sheet *xlsx.Sheet, values ...any) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetValue(v)
	}
}

// ExportProducts writes the whole catalog, inactive products included, as an
// xlsx workbook.
func (s *ShopService) ExportProducts(ctx context.Context, adminID uint64, w io.Writer) error {
	if err := s.requireInventory(ctx, adminID); err != nil {
		return err
	}
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}
	addRow(sheet, "ID", "SKU", "Name", "Price", "Stock", "Active", "Description", "ImageURL", "UpdatedAt")
	for _, p := range products {
		addRow(sheet, p.ID, p.SKU, p.Name, p.Price.StringFixed(2), p.Stock, p.Active, p.Description, p.ImageURL, p.UpdatedAt.Format(timeLayout))
	}
	return file.Write(w)
}

// ExportOrders writes one sheet of orders and one of their lines.
func (s *ShopService) ExportOrders(ctx context.Context, adminID uint64, w io.Writer) error {
	u, err := s.requireAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if !u.CanViewAllOrders() {
		return errViewOrders
	}
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	head, err := file.AddSheet("Orders")
	if err != nil {
		return err
	}
	lines, err := file.AddSheet("Lines")
	if err != nil {
		return err
	}

	addRow(head, "OrderID", "CustomerID", "OrderDate", "Status", "Total", "Items")
	addRow(lines, "OrderID", "ProductID", "SKU", "Name", "Quantity", "UnitPrice", "LineTotal")
	for _, o := range orders {
		var items int64
		for _, l := range o.Lines {
			items += l.Quantity
			addRow(lines, o.ID, l.ProductID, l.SKU, l.ProductName, l.Quantity, l.UnitPrice.StringFixed(2), l.LineTotal().StringFixed(2))
		}
		addRow(head, o.ID, o.CustomerID, o.CreatedAt.Format(timeLayout), string(o.Status), o.Total.StringFixed(2), items)
	}
	return file.Write(w)
}
