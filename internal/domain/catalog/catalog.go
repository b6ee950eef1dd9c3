// Package catalog holds the structured records behind deterministic fact
// computation: products, delivery rules and area codes parsed from tabular
// sources into in-memory slices.
//
// Lookups are linear scans; the data is a few hundred rows at most and scan
// order doubles as the tie-break, so first match in source row order wins.
package catalog

import (
	"fmt"
	"strings"

	"github.com/0xcro3dile/catalogchat-go/internal/domain/entities"
)

// Column names required in each source table.
const (
	colProductName = "product_name"
	colWeight      = "weight"
	colPrice       = "price"

	colAreaCode     = "area_code"
	colAreaName     = "area_orginal"
	colAreaMethod   = "delivery_method"
	colAreaCharge   = "areacode_charge"
	colDeliveryDate = "delivery_date"

	colRuleLocation = "location"
	colRuleText     = "rules"
	colRuleWeight   = "weight-dl"
	colRuleOperator = "operator"
	colRulePrice    = "deliveryPrice"
)

// Weight-based shipping surcharge columns look like
// "weight_based_shipping - Shipping - Urban_delivery"; the delivery method is
// the middle part, lower-cased with the "shipping - " prefix stripped.
const (
	shippingColPrefix = "weight_based_shipping - "
	shippingColSuffix = "_delivery"
)

// Table is a parsed tabular source: a named header row plus data rows in
// source order. Rows map column name to the raw cell value.
type Table struct {
	Name    string
	Columns []string
	Rows    []map[string]string
}

// Documents renders each row as a retrieval document of "column: value"
// lines in header order, one document per row.
func (t Table) Documents() []string {
	docs := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		var sb strings.Builder
		for i, col := range t.Columns {
			if i > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(col)
			sb.WriteString(": ")
			sb.WriteString(row[col])
		}
		docs = append(docs, sb.String())
	}
	return docs
}

func (t Table) require(columns ...string) error {
	present := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		present[c] = true
	}
	for _, c := range columns {
		if !present[c] {
			return fmt.Errorf("%w: table %q is missing column %q", entities.ErrMalformedRecord, t.Name, c)
		}
	}
	return nil
}

// Store is the in-memory record set. Records are immutable once loaded and
// owned by the store for the process lifetime.
type Store struct {
	products []entities.Product
	areas    []entities.AreaCode
	rules    []entities.DeliveryRule
}

// Load parses the three source tables into a Store. It fails only when a
// required column is absent; cell contents are taken verbatim, so malformed
// numbers surface later as NaN during fact computation, not here.
func Load(products, areas, rules Table) (*Store, error) {
	s := &Store{}

	if err := products.require(colProductName, colWeight, colPrice); err != nil {
		return nil, err
	}
	methods := shippingMethods(products.Columns)
	for _, row := range products.Rows {
		p := entities.Product{
			Name:     row[colProductName],
			Weight:   row[colWeight],
			Price:    row[colPrice],
			Shipping: make(map[string]string, len(methods)),
		}
		for col, method := range methods {
			p.Shipping[method] = row[col]
		}
		s.products = append(s.products, p)
	}

	if err := areas.require(colAreaCode, colAreaName, colAreaMethod, colAreaCharge, colDeliveryDate); err != nil {
		return nil, err
	}
	for _, row := range areas.Rows {
		s.areas = append(s.areas, entities.AreaCode{
			Code:          strings.TrimSpace(row[colAreaCode]),
			Name:          strings.TrimSpace(row[colAreaName]),
			Method:        strings.TrimSpace(row[colAreaMethod]),
			Charge:        row[colAreaCharge],
			DeliveryDates: splitDates(row[colDeliveryDate]),
		})
	}

	if err := rules.require(colRuleLocation, colRuleText, colRuleWeight, colRuleOperator, colRulePrice); err != nil {
		return nil, err
	}
	for _, row := range rules.Rows {
		s.rules = append(s.rules, entities.DeliveryRule{
			Location: row[colRuleLocation],
			Rules:    row[colRuleText],
			Weight:   row[colRuleWeight],
			Operator: row[colRuleOperator],
			Price:    row[colRulePrice],
		})
	}

	return s, nil
}

// shippingMethods maps surcharge column name -> delivery method key.
func shippingMethods(columns []string) map[string]string {
	methods := make(map[string]string)
	for _, col := range columns {
		if !strings.HasPrefix(col, shippingColPrefix) || !strings.HasSuffix(col, shippingColSuffix) {
			continue
		}
		method := strings.TrimSuffix(strings.TrimPrefix(col, shippingColPrefix), shippingColSuffix)
		method = strings.ToLower(method)
		method = strings.TrimPrefix(method, "shipping - ")
		methods[col] = strings.TrimSpace(method)
	}
	return methods
}

func splitDates(raw string) []string {
	var dates []string
	for _, d := range strings.Split(raw, ",") {
		if d = strings.TrimSpace(d); d != "" {
			dates = append(dates, d)
		}
	}
	return dates
}

// ProductMentionedIn returns the first product (in source row order) whose
// name appears as a substring of the text. Matching is case-insensitive.
func (s *Store) ProductMentionedIn(text string) (entities.Product, bool) {
	lower := strings.ToLower(text)
	for _, p := range s.products {
		if p.Name != "" && strings.Contains(lower, strings.ToLower(p.Name)) {
			return p, true
		}
	}
	return entities.Product{}, false
}

// AreaByCode returns the area whose code equals the given code exactly.
func (s *Store) AreaByCode(code string) (entities.AreaCode, bool) {
	code = strings.TrimSpace(code)
	for _, a := range s.areas {
		if a.Code == code {
			return a, true
		}
	}
	return entities.AreaCode{}, false
}

// AreaByName returns the area whose canonical name equals the given text,
// ignoring surrounding whitespace and case.
func (s *Store) AreaByName(text string) (entities.AreaCode, bool) {
	text = strings.TrimSpace(text)
	for _, a := range s.areas {
		if strings.EqualFold(a.Name, text) {
			return a, true
		}
	}
	return entities.AreaCode{}, false
}

// ShippingSurcharge returns the product's raw weight-based surcharge for the
// given delivery method.
func (s *Store) ShippingSurcharge(p entities.Product, method string) (string, bool) {
	v, ok := p.Shipping[strings.ToLower(strings.TrimSpace(method))]
	return v, ok
}

// Products returns the loaded products in source row order.
func (s *Store) Products() []entities.Product { return s.products }

// Areas returns the loaded area codes in source row order.
func (s *Store) Areas() []entities.AreaCode { return s.areas }

// Rules returns the loaded delivery rules in source row order.
func (s *Store) Rules() []entities.DeliveryRule { return s.rules }
