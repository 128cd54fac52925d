package fields

import (
	"regexp"
	"strings"

	"vpnvalidator/internal/domain"
)

// Schema field names (ordered as on the VPN-request form).
const (
	FieldNIK        = "NIK"
	FieldName       = "Name"
	FieldPhone      = "Phone"
	FieldEmail      = "Email"
	FieldDepartment = "Department"
	FieldManager    = "Manager"
	FieldDateRange  = "DateRange"
	FieldTimeRange  = "TimeRange"
	FieldApprovedBy = "ApprovedBy"
	FieldVPNUser    = "VPNUser"
)

// patterns maps each schema field to its label-and-capture pattern. The
// forms come in both Indonesian and English, so each label alternation
// accepts both. The capture runs until a natural boundary for the value
// kind (letters for names, digits/punctuation for phones, and so on).
var patterns = map[string]*regexp.Regexp{
	FieldNIK:        regexp.MustCompile(`(?im)(?:NIK|Nomor Induk Karyawan)[ \t:]*([A-Z0-9]+)`),
	FieldName:       regexp.MustCompile(`(?im)(?:Nama|Name)[ \t:]*([A-Za-z][A-Za-z \t]*)`),
	FieldPhone:      regexp.MustCompile(`(?im)(?:No\.?[ \t]*Tel|Telepon|Phone)[ \t:]*([0-9][0-9 \t\-\+\(\)]*)`),
	FieldEmail:      regexp.MustCompile(`(?im)(?:Email|E-mail)[ \t:]*([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`),
	FieldDepartment: regexp.MustCompile(`(?im)(?:Departement|Department|Dept)[ \t:]*([A-Za-z][A-Za-z \t]*)`),
	FieldManager:    regexp.MustCompile(`(?im)(?:Manager|Atasan)[ \t:]*([A-Za-z][A-Za-z \t]*)`),
	FieldDateRange:  regexp.MustCompile(`(?im)(?:Range Tanggal|Date Range)[ \t:]*([0-9][0-9A-Za-z \t\x{2013}\-\/]*)`),
	FieldTimeRange:  regexp.MustCompile(`(?im)(?:Range Waktu|Time Range)[ \t:]*([0-9][0-9 \t\-:]*)`),
	FieldApprovedBy: regexp.MustCompile(`(?im)(?:Approved by|Disetujui oleh)[ \t:]*([A-Za-z][A-Za-z \t]*)`),
	FieldVPNUser:    regexp.MustCompile(`(?im)(?:User VPN|VPN User)[ \t:]*([A-Za-z0-9][A-Za-z0-9 \t]*)`),
}

// Extractor scrapes the fixed field schema out of raw document text.
// First match wins per field; this is a heuristic and downstream code
// must tolerate partial or malformed field sets.
type Extractor struct {
	schema []string
}

// NewExtractor creates an Extractor for the given ordered schema. Fields
// without a known pattern are skipped (they can only come back absent).
func NewExtractor(schema []string) *Extractor {
	return &Extractor{schema: schema}
}

// Schema returns the ordered field schema.
func (e *Extractor) Schema() []string {
	return e.schema
}

// Extract applies each field pattern to the whole text. A field with no
// match is absent from the result, not empty. Matched values are
// whitespace-trimmed; a value that trims to nothing counts as no match.
func (e *Extractor) Extract(rawText string) domain.FieldSet {
	set := make(domain.FieldSet, len(e.schema))
	for _, name := range e.schema {
		re, ok := patterns[name]
		if !ok {
			continue
		}
		m := re.FindStringSubmatch(rawText)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[1])
		if value == "" {
			continue
		}
		set[name] = value
	}
	return set
}
