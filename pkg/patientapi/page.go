package patientapi

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/riskwatch/platform/pkg/common/models"
)

// page is one decoded response from the list endpoint. Pagination fields are
// pointers so that "absent" and "zero" stay distinguishable.
type page struct {
	records    []models.PatientRecord
	hasNext    *bool
	totalPages *int
}

// decodePage parses a list response. Missing or malformed parts default to
// empty; only a body that is not a JSON object at all returns an error.
func decodePage(body []byte) (page, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return page{}, err
	}

	raw, ok := top["data"]
	if !ok {
		raw = top["patients"]
	}

	p := page{records: decodeRecords(raw)}

	var pagination map[string]interface{}
	if len(top["pagination"]) > 0 && json.Unmarshal(top["pagination"], &pagination) == nil {
		p.hasNext = boolField(pagination, "hasNext")
		p.totalPages = intField(pagination, "totalPages")
	}

	return p, nil
}

func decodeRecords(raw json.RawMessage) []models.PatientRecord {
	if len(raw) == 0 {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	records := make([]models.PatientRecord, 0, len(items))
	for _, item := range items {
		var rec map[string]interface{}
		if err := json.Unmarshal(item, &rec); err != nil || rec == nil {
			continue
		}
		records = append(records, models.PatientRecord(rec))
	}
	return records
}

func boolField(m map[string]interface{}, key string) *bool {
	switch v := m[key].(type) {
	case bool:
		return &v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return &b
		}
	}
	return nil
}

func intField(m map[string]interface{}, key string) *int {
	var f float64
	switch v := m[key].(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil
	}
	n := int(f)
	return &n
}

// next decides whether another page should be requested after pageNum:
// an explicit hasNext wins, then totalPages, then "non-empty and under the ceiling".
func (p page) next(pageNum, maxPages int) bool {
	if p.hasNext != nil {
		return *p.hasNext
	}
	if p.totalPages != nil {
		return pageNum < *p.totalPages
	}
	return len(p.records) > 0 && pageNum < maxPages
}
