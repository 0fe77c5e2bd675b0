package services

import (
	"context"

	"github.com/dmitrijs2005/clickstore/internal/logging"
	"github.com/dmitrijs2005/clickstore/internal/server/receipt"
)

// ExportedReceipt is a rendered receipt ready for download.
type ExportedReceipt struct {
	Filename   string
	Data       []byte
	ArchiveKey string
}

type ReceiptService struct {
	cart     *CartService
	renderer receipt.Renderer
	archive  receipt.Archiver
	logger   logging.Logger
}

// NewReceiptService wires export. archive may be nil.
func NewReceiptService(cart *CartService, renderer receipt.Renderer, archive receipt.Archiver, logger logging.Logger) *ReceiptService {
	return &ReceiptService{cart: cart, renderer: renderer, archive: archive, logger: logger}
}

// Export renders the receipt for one of the user's cart lines. A failed
// archive upload is logged and does not fail the export.
func (s *ReceiptService) Export(ctx context.Context, userID, itemID int64) (*ExportedReceipt, error) {
	item, err := s.cart.GetByID(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	r := receipt.Receipt{ItemID: item.ID, Product: item.Product, Amount: item.Amount, Wave: item.Wave}

	data, err := s.renderer.Render(r)
	if err != nil {
		return nil, internalUnless(err)
	}

	out := &ExportedReceipt{Filename: r.Filename(), Data: data}

	if s.archive != nil {
		key, err := s.archive.Store(ctx, data)
		if err != nil {
			logging.FromContext(ctx, s.logger).Warn(ctx, "receipt archive failed", "item_id", item.ID, "error", err)
		} else {
			out.ArchiveKey = key
		}
	}

	return out, nil
}
