package ingest

import (
	"github.com/olist-data/refinery/internal/model"
)

// LoadGeoSamples reads the raw geolocation dataset. Rows without a postal
// prefix or with unparsable coordinates are skipped and counted.
func LoadGeoSamples(path string) ([]model.GeoSample, int, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, 0, err
	}

	bar := t.progress("loading geolocation samples")
	samples := make([]model.GeoSample, 0, len(t.rows))
	skipped := 0

	for _, row := range t.rows {
		_ = bar.Add(1)

		prefix := t.field(row, "geolocation_zip_code_prefix")
		lat, okLat := parseFloat(t.field(row, "geolocation_lat"))
		lon, okLon := parseFloat(t.field(row, "geolocation_lng"))
		if prefix == "" || !okLat || !okLon {
			skipped++
			continue
		}

		samples = append(samples, model.GeoSample{
			PostalPrefix: prefix,
			CityRaw:      t.field(row, "geolocation_city"),
			State:        t.field(row, "geolocation_state"),
			Lat:          lat,
			Lon:          lon,
		})
	}

	return samples, skipped, nil
}

// LoadCustomers reads the raw customer dataset into entities.
func LoadCustomers(path string) ([]model.Entity, int, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, 0, err
	}

	bar := t.progress("loading customers")
	entities := make([]model.Entity, 0, len(t.rows))
	skipped := 0

	for _, row := range t.rows {
		_ = bar.Add(1)

		id := t.field(row, "customer_id")
		prefix := t.field(row, "customer_zip_code_prefix")
		if id == "" || prefix == "" {
			skipped++
			continue
		}

		entities = append(entities, model.Entity{
			ID:           id,
			UniqueID:     t.field(row, "customer_unique_id"),
			Type:         model.EntityCustomer,
			PostalPrefix: prefix,
			CityRaw:      t.field(row, "customer_city"),
			State:        t.field(row, "customer_state"),
		})
	}

	return entities, skipped, nil
}

// LoadSellers reads the raw seller dataset into entities.
func LoadSellers(path string) ([]model.Entity, int, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, 0, err
	}

	bar := t.progress("loading sellers")
	entities := make([]model.Entity, 0, len(t.rows))
	skipped := 0

	for _, row := range t.rows {
		_ = bar.Add(1)

		id := t.field(row, "seller_id")
		prefix := t.field(row, "seller_zip_code_prefix")
		if id == "" || prefix == "" {
			skipped++
			continue
		}

		entities = append(entities, model.Entity{
			ID:           id,
			Type:         model.EntitySeller,
			PostalPrefix: prefix,
			CityRaw:      t.field(row, "seller_city"),
			State:        t.field(row, "seller_state"),
		})
	}

	return entities, skipped, nil
}

// LoadOrders reads the raw order headers. Absent approval and delivery
// timestamps are status-dependent, not errors.
func LoadOrders(path string) ([]model.Order, int, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, 0, err
	}

	bar := t.progress("loading orders")
	orders := make([]model.Order, 0, len(t.rows))
	skipped := 0

	for _, row := range t.rows {
		_ = bar.Add(1)

		id := t.field(row, "order_id")
		purchased, ok := parseTime(t.field(row, "order_purchase_timestamp"))
		if id == "" || !ok {
			skipped++
			continue
		}

		orders = append(orders, model.Order{
			ID:          id,
			CustomerID:  t.field(row, "customer_id"),
			Status:      t.field(row, "order_status"),
			PurchasedAt: purchased,
			ApprovedAt:  parseTimePtr(t.field(row, "order_approved_at")),
			DeliveredAt: parseTimePtr(t.field(row, "order_delivered_customer_date")),
		})
	}

	return orders, skipped, nil
}

// LoadOrderItems reads the raw order item lines.
func LoadOrderItems(path string) ([]model.OrderItem, int, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, 0, err
	}

	bar := t.progress("loading order items")
	items := make([]model.OrderItem, 0, len(t.rows))
	skipped := 0

	for _, row := range t.rows {
		_ = bar.Add(1)

		orderID := t.field(row, "order_id")
		seq, okSeq := parseInt(t.field(row, "order_item_id"))
		price, okPrice := parseFloat(t.field(row, "price"))
		if orderID == "" || !okSeq || !okPrice {
			skipped++
			continue
		}

		freight, _ := parseFloat(t.field(row, "freight_value"))
		items = append(items, model.OrderItem{
			OrderID:   orderID,
			ItemSeq:   seq,
			ProductID: t.field(row, "product_id"),
			SellerID:  t.field(row, "seller_id"),
			Price:     price,
			Freight:   freight,
		})
	}

	return items, skipped, nil
}

// LoadPayments reads the raw payment rows.
func LoadPayments(path string) ([]model.Payment, int, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, 0, err
	}

	bar := t.progress("loading payments")
	payments := make([]model.Payment, 0, len(t.rows))
	skipped := 0

	for _, row := range t.rows {
		_ = bar.Add(1)

		orderID := t.field(row, "order_id")
		seq, okSeq := parseInt(t.field(row, "payment_sequential"))
		value, okValue := parseFloat(t.field(row, "payment_value"))
		if orderID == "" || !okSeq || !okValue {
			skipped++
			continue
		}

		installments, _ := parseInt(t.field(row, "payment_installments"))
		payments = append(payments, model.Payment{
			OrderID:      orderID,
			Seq:          seq,
			Type:         t.field(row, "payment_type"),
			Installments: installments,
			Value:        value,
		})
	}

	return payments, skipped, nil
}

// LoadProducts reads the raw product catalog. Missing dimensions stay zero;
// the analyzer decides whether that is anomalous.
func LoadProducts(path string) ([]model.Product, int, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, 0, err
	}

	bar := t.progress("loading products")
	products := make([]model.Product, 0, len(t.rows))
	skipped := 0

	for _, row := range t.rows {
		_ = bar.Add(1)

		id := t.field(row, "product_id")
		if id == "" {
			skipped++
			continue
		}

		length, _ := parseFloat(t.field(row, "product_length_cm"))
		height, _ := parseFloat(t.field(row, "product_height_cm"))
		width, _ := parseFloat(t.field(row, "product_width_cm"))
		weight, _ := parseFloat(t.field(row, "product_weight_g"))
		photos, _ := parseInt(t.field(row, "product_photos_qty"))

		products = append(products, model.Product{
			ID:         id,
			Category:   t.field(row, "product_category_name"),
			LengthCm:   length,
			HeightCm:   height,
			WidthCm:    width,
			WeightG:    weight,
			PhotoCount: photos,
		})
	}

	return products, skipped, nil
}

// LoadReviews reads the raw review dataset.
func LoadReviews(path string) ([]model.Review, int, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, 0, err
	}

	bar := t.progress("loading reviews")
	reviews := make([]model.Review, 0, len(t.rows))
	skipped := 0

	for _, row := range t.rows {
		_ = bar.Add(1)

		id := t.field(row, "review_id")
		created, ok := parseTime(t.field(row, "review_creation_date"))
		if id == "" || !ok {
			skipped++
			continue
		}

		score, _ := parseInt(t.field(row, "review_score"))
		reviews = append(reviews, model.Review{
			ID:             id,
			OrderID:        t.field(row, "order_id"),
			Score:          score,
			CommentTitle:   t.field(row, "review_comment_title"),
			CommentMessage: t.field(row, "review_comment_message"),
			CreatedAt:      created,
			AnsweredAt:     parseTimePtr(t.field(row, "review_answer_timestamp")),
		})
	}

	return reviews, skipped, nil
}

// LoadCategoryTranslations reads the category translation table into a map
// from source category to its English name.
func LoadCategoryTranslations(path string) (map[string]string, int, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, 0, err
	}

	translations := make(map[string]string, len(t.rows))
	skipped := 0
	for _, row := range t.rows {
		name := t.field(row, "product_category_name")
		english := t.field(row, "product_category_name_english")
		if name == "" || english == "" {
			skipped++
			continue
		}
		translations[name] = english
	}

	return translations, skipped, nil
}
