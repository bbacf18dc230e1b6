package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

var (
	leaseYearsRe  = regexp.MustCompile(`(?i)(\d+)\s*years?`)
	leaseMonthsRe = regexp.MustCompile(`(?i)(\d+)\s*months?`)
	storeyRe      = regexp.MustCompile(`(?i)(\d+)\s*TO\s*(\d+)`)
	roomCountRe   = regexp.MustCompile(`(\d+)\s*ROOM`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// cleanString trims, collapses internal whitespace and uppercases, matching
// how every dimension value is stored.
func cleanString(s string) string {
	return spaceRe.ReplaceAllString(strings.ToUpper(strings.TrimSpace(s)), " ")
}

// parseRemainingLease parses "61 years 04 months", "61 years" or
// "4 months". Missing components are zero.
func parseRemainingLease(s string) (years, months int) {
	if m := leaseYearsRe.FindStringSubmatch(s); m != nil {
		years, _ = strconv.Atoi(m[1])
	}
	if m := leaseMonthsRe.FindStringSubmatch(s); m != nil {
		months, _ = strconv.Atoi(m[1])
	}
	return years, months
}

// parseStoreyRange parses "07 TO 09" and single-storey values like "25".
func parseStoreyRange(s string) (min, max int) {
	if m := storeyRe.FindStringSubmatch(s); m != nil {
		min, _ = strconv.Atoi(m[1])
		max, _ = strconv.Atoi(m[2])
		return min, max
	}
	if single, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return single, single
	}
	return 0, 0
}

// typicalRooms extracts the room count from flat type names like "4 ROOM".
// Types without a numeric room count (EXECUTIVE, MULTI-GENERATION) have no
// typical room count.
func typicalRooms(flatType string) *int {
	m := roomCountRe.FindStringSubmatch(flatType)
	if m == nil {
		return nil
	}
	n, _ := strconv.Atoi(m[1])
	return &n
}

// parseRecord turns one CSV row into a ResaleRecord. Price per sqm is
// computed with decimal arithmetic so repeated imports of the same row
// always produce the same stored value.
func parseRecord(get func(column string) string) (models.ResaleRecord, error) {
	month := strings.TrimSpace(get("month"))
	town := cleanString(get("town"))
	flatType := cleanString(get("flat_type"))
	if month == "" || town == "" || flatType == "" {
		return models.ResaleRecord{}, fmt.Errorf("missing month, town or flat_type")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(get("resale_price")))
	if err != nil {
		return models.ResaleRecord{}, fmt.Errorf("invalid resale_price %q: %w", get("resale_price"), err)
	}
	area, err := decimal.NewFromString(strings.TrimSpace(get("floor_area_sqm")))
	if err != nil {
		return models.ResaleRecord{}, fmt.Errorf("invalid floor_area_sqm %q: %w", get("floor_area_sqm"), err)
	}
	if !price.IsPositive() || !area.IsPositive() {
		return models.ResaleRecord{}, fmt.Errorf("non-positive price or floor area")
	}

	commenceYear, err := strconv.Atoi(strings.TrimSpace(get("lease_commence_date")))
	if err != nil {
		return models.ResaleRecord{}, fmt.Errorf("invalid lease_commence_date %q", get("lease_commence_date"))
	}

	leaseYears, leaseMonths := parseRemainingLease(get("remaining_lease"))
	storeyRange := cleanString(get("storey_range"))
	storeyMin, storeyMax := parseStoreyRange(storeyRange)

	return models.ResaleRecord{
		Month:                month,
		Town:                 town,
		FlatType:             flatType,
		TypicalRooms:         typicalRooms(flatType),
		Block:                cleanString(get("block")),
		StreetName:           cleanString(get("street_name")),
		StoreyRange:          storeyRange,
		StoreyMin:            storeyMin,
		StoreyMax:            storeyMax,
		FloorAreaSqm:         area.InexactFloat64(),
		FlatModel:            cleanString(get("flat_model")),
		LeaseCommenceYear:    commenceYear,
		RemainingLeaseYears:  leaseYears,
		RemainingLeaseMonths: leaseMonths,
		Price:                price.InexactFloat64(),
		PricePerSqm:          price.Div(area).Round(2).InexactFloat64(),
	}, nil
}
