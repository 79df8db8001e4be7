package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func orderXML(body string) string {
	return "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<orders>\n" + body + "</orders>\n"
}

func orderRecord(orderID, mobile, skuID, skuCount, amount, dateTime string) string {
	return "<order>" +
		"<order_id>" + orderID + "</order_id>" +
		"<mobile_number>" + mobile + "</mobile_number>" +
		"<sku_id>" + skuID + "</sku_id>" +
		"<sku_count>" + skuCount + "</sku_count>" +
		"<total_amount>" + amount + "</total_amount>" +
		"<order_date_time>" + dateTime + "</order_date_time>" +
		"</order>\n"
}

func TestOrderXMLReader(t *testing.T) {
	t.Run("Reads all line items", func(t *testing.T) {
		path := writeTempFile(t, "orders.xml", orderXML(
			orderRecord("O001", "1234567890", "SKU1", "2", "500.00", "2024-01-15 10:30:00")+
				orderRecord("O001", "1234567890", "SKU2", "1", "500.00", "2024-01-15 10:30:00")+
				orderRecord("O002", "9876543210", "SKU1", "3", "300.00", "2024-02-01 14:00:00")))
		reader := NewOrderXMLReader(path, 100, zap.NewNop())

		items, skipped, err := reader.Read(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, skipped)
		require.Len(t, items, 3)
		assert.Equal(t, "O001", items[0].OrderID)
		assert.Equal(t, "SKU2", items[1].SkuID)
		assert.Equal(t, "300.00", items[2].TotalAmount)
		assert.Equal(t, "2024-02-01 14:00:00", items[2].OrderDateTime)
	})

	t.Run("Record missing an element is skipped", func(t *testing.T) {
		noSkuID := "<order>" +
			"<order_id>O002</order_id>" +
			"<mobile_number>9876543210</mobile_number>" +
			"<sku_count>1</sku_count>" +
			"<total_amount>100.00</total_amount>" +
			"<order_date_time>2024-02-01 14:00:00</order_date_time>" +
			"</order>\n"
		path := writeTempFile(t, "orders.xml", orderXML(
			orderRecord("O001", "1234567890", "SKU1", "2", "500.00", "2024-01-15 10:30:00")+noSkuID))
		reader := NewOrderXMLReader(path, 100, zap.NewNop())

		items, skipped, err := reader.Read(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, skipped)
		require.Len(t, items, 1)
		assert.Equal(t, "O001", items[0].OrderID)
	})

	t.Run("Empty element is kept as empty string", func(t *testing.T) {
		path := writeTempFile(t, "orders.xml", orderXML(
			orderRecord("O001", "1234567890", "SKU1", "", "500.00", "")))
		reader := NewOrderXMLReader(path, 100, zap.NewNop())

		items, skipped, err := reader.Read(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, skipped)
		require.Len(t, items, 1)
		assert.Equal(t, "", items[0].SkuCount)
		assert.Equal(t, "", items[0].OrderDateTime)
	})

	t.Run("Values keep surrounding whitespace", func(t *testing.T) {
		path := writeTempFile(t, "orders.xml", orderXML(
			orderRecord(" O001 ", "1234567890", "SKU1", " 2 ", "500.00", "2024-01-15 10:30:00")))
		reader := NewOrderXMLReader(path, 100, zap.NewNop())

		items, _, err := reader.Read(context.Background())

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, " O001 ", items[0].OrderID)
		assert.Equal(t, " 2 ", items[0].SkuCount)
	})

	t.Run("Non-order elements are ignored", func(t *testing.T) {
		path := writeTempFile(t, "orders.xml", orderXML(
			"<generated_at>2024-03-01</generated_at>\n"+
				orderRecord("O001", "1234567890", "SKU1", "2", "500.00", "2024-01-15 10:30:00")))
		reader := NewOrderXMLReader(path, 100, zap.NewNop())

		items, skipped, err := reader.Read(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, skipped)
		assert.Len(t, items, 1)
	})

	t.Run("Unknown child elements are ignored", func(t *testing.T) {
		withExtra := "<order>" +
			"<order_id>O001</order_id>" +
			"<mobile_number>1234567890</mobile_number>" +
			"<sku_id>SKU1</sku_id>" +
			"<sku_count>2</sku_count>" +
			"<total_amount>500.00</total_amount>" +
			"<order_date_time>2024-01-15 10:30:00</order_date_time>" +
			"<channel>web</channel>" +
			"</order>\n"
		path := writeTempFile(t, "orders.xml", orderXML(withExtra))
		reader := NewOrderXMLReader(path, 100, zap.NewNop())

		items, skipped, err := reader.Read(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, skipped)
		assert.Len(t, items, 1)
	})

	t.Run("Malformed XML fails", func(t *testing.T) {
		path := writeTempFile(t, "orders.xml", "<orders><order><order_id>O001</order>")
		reader := NewOrderXMLReader(path, 100, zap.NewNop())

		_, _, err := reader.Read(context.Background())

		assert.Error(t, err)
	})

	t.Run("Empty file fails", func(t *testing.T) {
		path := writeTempFile(t, "orders.xml", "")
		reader := NewOrderXMLReader(path, 100, zap.NewNop())

		_, _, err := reader.Read(context.Background())

		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Declaration without root fails", func(t *testing.T) {
		path := writeTempFile(t, "orders.xml", "<?xml version=\"1.0\"?>\n")
		reader := NewOrderXMLReader(path, 100, zap.NewNop())

		_, _, err := reader.Read(context.Background())

		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Missing file fails", func(t *testing.T) {
		reader := NewOrderXMLReader(filepath.Join(t.TempDir(), "absent.xml"), 100, zap.NewNop())

		_, _, err := reader.Read(context.Background())

		assert.Error(t, err)
	})

	t.Run("Skip count exceeds detail cap", func(t *testing.T) {
		bad := "<order><order_id>O1</order_id></order>\n"
		path := writeTempFile(t, "orders.xml", orderXML(bad+bad+bad))
		reader := NewOrderXMLReader(path, 2, zap.NewNop())

		items, skipped, err := reader.Read(context.Background())

		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Equal(t, 3, skipped)
	})
}
