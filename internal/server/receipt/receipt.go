// Package receipt renders purchase receipts as PDF documents carrying a
// Code128 barcode, and optionally archives them in S3-compatible storage.
package receipt

import (
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/clickstore/internal/common"
)

// Receipt is what gets printed for one cart item.
type Receipt struct {
	ItemID  int64
	Product string
	Amount  string
	Wave    string
}

// Code is the barcode reference, e.g. "COMPRA42".
func (r Receipt) Code() string {
	return common.ReceiptCodePrefix + strconv.FormatInt(r.ItemID, 10)
}

// Filename is the attachment name offered to the client.
func (r Receipt) Filename() string {
	return fmt.Sprintf("compra_%d.pdf", r.ItemID)
}

// Renderer turns a Receipt into a finished document.
type Renderer interface {
	Render(r Receipt) ([]byte, error)
}
