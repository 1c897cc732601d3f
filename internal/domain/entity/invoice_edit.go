package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// clone copies the invoice including its item slice, so edits on the copy
// never reach the original.
func (inv Invoice) clone() Invoice {
	out := inv
	out.Items = make([]LineItem, len(inv.Items))
	copy(out.Items, inv.Items)
	return out
}

// WithNumber returns a copy with a new invoice number.
func (inv Invoice) WithNumber(number string) Invoice {
	out := inv.clone()
	out.InvoiceNumber = strings.TrimSpace(number)
	return out
}

// WithIssueDate returns a copy with a new issue date.
func (inv Invoice) WithIssueDate(d Date) Invoice {
	out := inv.clone()
	out.IssueDate = d
	return out
}

// WithDueDate returns a copy with a new due date.
func (inv Invoice) WithDueDate(d Date) Invoice {
	out := inv.clone()
	out.DueDate = d
	return out
}

// WithIssuer returns a copy with the issuer replaced.
func (inv Invoice) WithIssuer(p Party) Invoice {
	out := inv.clone()
	out.Issuer = p
	return out
}

// WithRecipient returns a copy with the recipient replaced.
func (inv Invoice) WithRecipient(p Party) Invoice {
	out := inv.clone()
	out.Recipient = p
	return out
}

// WithTaxRate returns a copy using a different tax percentage.
func (inv Invoice) WithTaxRate(percent decimal.Decimal) Invoice {
	out := inv.clone()
	out.TaxRatePercent = percent
	return out
}

// WithNotes returns a copy with new notes.
func (inv Invoice) WithNotes(notes string) Invoice {
	out := inv.clone()
	out.Notes = notes
	return out
}

// WithItem replaces the item at index.
func (inv Invoice) WithItem(index int, item LineItem) (Invoice, error) {
	if index < 0 || index >= len(inv.Items) {
		return inv, ErrItemIndex
	}
	out := inv.clone()
	item.ID = out.Items[index].ID
	item.InvoiceID = out.Items[index].InvoiceID
	out.Items[index] = item
	return out, nil
}

// AddItem appends a blank row.
func (inv Invoice) AddItem() Invoice {
	out := inv.clone()
	out.Items = append(out.Items, NewLineItem())
	return out
}

// RemoveItem drops the row at index. The last remaining row cannot be
// removed; the original invoice is returned with ErrLastItem.
func (inv Invoice) RemoveItem(index int) (Invoice, error) {
	if index < 0 || index >= len(inv.Items) {
		return inv, ErrItemIndex
	}
	if len(inv.Items) <= 1 {
		return inv, ErrLastItem
	}
	out := inv.clone()
	out.Items = append(out.Items[:index], out.Items[index+1:]...)
	return out, nil
}

// MoveItem moves the row at from so that it ends up at index to.
func (inv Invoice) MoveItem(from, to int) (Invoice, error) {
	n := len(inv.Items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return inv, ErrItemIndex
	}
	out := inv.clone()
	item := out.Items[from]
	out.Items = append(out.Items[:from], out.Items[from+1:]...)
	out.Items = append(out.Items[:to], append([]LineItem{item}, out.Items[to:]...)...)
	return out, nil
}
