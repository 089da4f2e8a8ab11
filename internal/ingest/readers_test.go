package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/olist-data/refinery/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadGeoSamples(t *testing.T) {
	path := writeCSV(t, "geolocation.csv",
		"geolocation_zip_code_prefix,geolocation_lat,geolocation_lng,geolocation_city,geolocation_state\n"+
			"01310,-23.56,-46.63,Sao Paulo,SP\n"+
			"01310,-23.55,-46.64,São Paulo,SP\n"+
			",-1.0,-1.0,Nowhere,XX\n"+
			"20040,bad,-43.18,Rio de Janeiro,RJ\n")

	samples, skipped, err := LoadGeoSamples(path)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 2, skipped)

	assert.Equal(t, "01310", samples[0].PostalPrefix)
	assert.Equal(t, "Sao Paulo", samples[0].CityRaw)
	assert.InDelta(t, -23.56, samples[0].Lat, 1e-9)
	assert.Equal(t, "São Paulo", samples[1].CityRaw)
}

func TestLoadCustomersAndSellers(t *testing.T) {
	customers := writeCSV(t, "customers.csv",
		"customer_id,customer_unique_id,customer_zip_code_prefix,customer_city,customer_state\n"+
			"c1,u1,01310,sao paulo,SP\n"+
			"c2,u2,,limbo,SP\n")

	got, skipped, err := LoadCustomers(customers)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, model.EntityCustomer, got[0].Type)
	assert.Equal(t, "u1", got[0].UniqueID)

	sellers := writeCSV(t, "sellers.csv",
		"seller_id,seller_zip_code_prefix,seller_city,seller_state\n"+
			"s1,20040,rio de janeiro,RJ\n")

	gotSellers, skipped, err := LoadSellers(sellers)
	require.NoError(t, err)
	require.Len(t, gotSellers, 1)
	assert.Zero(t, skipped)
	assert.Equal(t, model.EntitySeller, gotSellers[0].Type)
}

func TestLoadOrders(t *testing.T) {
	path := writeCSV(t, "orders.csv",
		"order_id,customer_id,order_status,order_purchase_timestamp,order_approved_at,order_delivered_customer_date\n"+
			"o1,c1,delivered,2018-01-05 10:00:00,2018-01-05 11:00:00,2018-01-10 15:30:00\n"+
			"o2,c2,created,2018-02-01 09:00:00,,\n"+
			"o3,c3,delivered,,,\n")

	orders, skipped, err := LoadOrders(path)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 1, skipped)

	assert.Equal(t, "o1", orders[0].ID)
	require.NotNil(t, orders[0].DeliveredAt)
	// Absent timestamps are status-dependent, not an error.
	assert.Nil(t, orders[1].ApprovedAt)
	assert.Nil(t, orders[1].DeliveredAt)
}

func TestLoadOrderItemsAndPayments(t *testing.T) {
	items := writeCSV(t, "order_items.csv",
		"order_id,order_item_id,product_id,seller_id,shipping_limit_date,price,freight_value\n"+
			"o1,1,p1,s1,2018-01-07 00:00:00,120.50,19.90\n"+
			"o1,2,p2,s1,2018-01-07 00:00:00,30.00,5.10\n")

	gotItems, skipped, err := LoadOrderItems(items)
	require.NoError(t, err)
	require.Len(t, gotItems, 2)
	assert.Zero(t, skipped)
	assert.InDelta(t, 140.40, gotItems[0].Total(), 1e-9)

	payments := writeCSV(t, "payments.csv",
		"order_id,payment_sequential,payment_type,payment_installments,payment_value\n"+
			"o1,1,credit_card,3,175.50\n"+
			"o1,2,voucher,1,0.00\n")

	gotPayments, skipped, err := LoadPayments(payments)
	require.NoError(t, err)
	require.Len(t, gotPayments, 2)
	assert.Zero(t, skipped)
	assert.Equal(t, model.PaymentCreditCard, gotPayments[0].Type)
	assert.Equal(t, 3, gotPayments[0].Installments)
}

func TestLoadProducts(t *testing.T) {
	path := writeCSV(t, "products.csv",
		"product_id,product_category_name,product_photos_qty,product_weight_g,product_length_cm,product_height_cm,product_width_cm\n"+
			"p1,cama_mesa_banho,3,500,10,10,10\n"+
			"p2,,,,,,\n")

	products, skipped, err := LoadProducts(path)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Zero(t, skipped)
	assert.InDelta(t, 0.5, products[0].Density(), 1e-9)
	assert.Zero(t, products[1].VolumeCm3())
}

func TestLoadReviews(t *testing.T) {
	path := writeCSV(t, "reviews.csv",
		"review_id,order_id,review_score,review_comment_title,review_comment_message,review_creation_date,review_answer_timestamp\n"+
			"r1,o1,5,,chegou rapido,2018-01-12 00:00:00,2018-01-13 10:00:00\n"+
			"r2,o2,1,,,2018-02-01 00:00:00,\n")

	reviews, skipped, err := LoadReviews(path)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Zero(t, skipped)
	assert.False(t, reviews[0].Silent())
	assert.True(t, reviews[1].Silent())
	assert.Nil(t, reviews[1].AnsweredAt)
}

func TestLoadCategoryTranslations(t *testing.T) {
	path := writeCSV(t, "translations.csv",
		"product_category_name,product_category_name_english\n"+
			"cama_mesa_banho,bed_bath_table\n"+
			"beleza_saude,health_beauty\n")

	translations, skipped, err := LoadCategoryTranslations(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Equal(t, "bed_bath_table", translations["cama_mesa_banho"])
}

func TestReadTable_MissingFile(t *testing.T) {
	_, _, err := LoadGeoSamples(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}
