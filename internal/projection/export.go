package projection

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rvmarket-lab/rv-intel/internal/core/aggregation"
)

var exportHeader = []string{
	"stock_number", "title", "year", "make", "model", "floorplan", "rv_class", "condition",
	"price", "days_on_lot", "dealership", "dealer_group", "city", "county", "state", "region", "location",
}

// writeCSV streams records as CSV with a header row. Null values are empty cells.
func writeCSV(w io.Writer, records []aggregation.InventoryRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	row := make([]string, len(exportHeader))
	for _, r := range records {
		row[0] = r.StockNumber
		row[1] = r.Title
		row[2] = intCell(r.ModelYear)
		row[3] = strCell(r.Manufacturer)
		row[4] = strCell(r.Model)
		row[5] = strCell(r.Floorplan)
		row[6] = strCell(r.RVType)
		row[7] = strCell(r.Condition)
		row[8] = floatCell(r.Price)
		row[9] = intCell(r.DaysOnLot)
		row[10] = strCell(r.Dealership)
		row[11] = strCell(r.DealerGroup)
		row[12] = strCell(r.City)
		row[13] = strCell(r.County)
		row[14] = strCell(r.State)
		row[15] = strCell(r.Region)
		row[16] = r.Location
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func strCell(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
