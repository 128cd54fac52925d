package rules

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"vpnvalidator/internal/domain"
	"vpnvalidator/internal/fields"
)

const (
	dateLayout = "02 Jan 2006"
	timeLayout = "15:04:05"

	// En dash, the separator used between the start and end dates in
	// the request forms.
	dateRangeSeparator = "–"
	timeRangeSeparator = "-"

	minNIKDigits = 5
)

// Engine runs the deterministic pre-checks on scraped form fields. The
// checks are ordered and their issue order is stable, so the same field
// set always yields the same verdict.
type Engine struct {
	requiredFields []string
	emailDomain    string
	minSignatures  int
}

// NewEngine creates an Engine. requiredFields is evaluated in the given
// order; emailDomain is the corporate domain every requester email must
// carry.
func NewEngine(requiredFields []string, emailDomain string, minSignatures int) *Engine {
	return &Engine{
		requiredFields: requiredFields,
		emailDomain:    emailDomain,
		minSignatures:  minSignatures,
	}
}

// Evaluate applies all checks against the scraped fields and the
// signature evidence. It never errors: malformed values become issues.
func (e *Engine) Evaluate(fs domain.FieldSet, signatures *domain.SignatureEvidence) *domain.RuleVerdict {
	verdict := &domain.RuleVerdict{}

	e.checkRequired(fs, verdict)
	e.checkEmailDomain(fs, verdict)
	e.checkNIK(fs, verdict)
	e.checkDateRange(fs, verdict)
	e.checkTimeRange(fs, verdict)
	e.checkNameMatchesVPNUser(fs, verdict)
	e.checkSignatures(signatures, verdict)

	verdict.PreliminaryValid = len(verdict.Issues) == 0 && signatures.Valid
	return verdict
}

func (e *Engine) checkRequired(fs domain.FieldSet, v *domain.RuleVerdict) {
	for _, name := range e.requiredFields {
		if !fs.NonBlank(name) {
			v.MissingFields = append(v.MissingFields, name)
			v.Issues = append(v.Issues, domain.Issue{
				Field:   name,
				Message: fmt.Sprintf("field %s is missing", name),
			})
		}
	}
}

func (e *Engine) checkEmailDomain(fs domain.FieldSet, v *domain.RuleVerdict) {
	email, ok := fs.Get(fields.FieldEmail)
	if !ok || email == "" {
		return
	}
	if !strings.Contains(strings.ToLower(email), strings.ToLower(e.emailDomain)) {
		v.Issues = append(v.Issues, domain.Issue{
			Field:   fields.FieldEmail,
			Message: fmt.Sprintf("email %s is not on the %s domain", email, e.emailDomain),
		})
	}
}

func (e *Engine) checkNIK(fs domain.FieldSet, v *domain.RuleVerdict) {
	nik, ok := fs.Get(fields.FieldNIK)
	if !ok || nik == "" {
		return
	}
	if !allDigits(nik) || len(nik) < minNIKDigits {
		v.Issues = append(v.Issues, domain.Issue{
			Field:   fields.FieldNIK,
			Message: fmt.Sprintf("NIK %q must be numeric with at least %d digits", nik, minNIKDigits),
		})
	}
}

func (e *Engine) checkDateRange(fs domain.FieldSet, v *domain.RuleVerdict) {
	raw, ok := fs.Get(fields.FieldDateRange)
	if !ok || raw == "" {
		return
	}

	start, end, ok := splitRange(raw, dateRangeSeparator)
	if !ok {
		v.Issues = append(v.Issues, domain.Issue{
			Field:   fields.FieldDateRange,
			Message: fmt.Sprintf("date range %q is not in the form <start> %s <end>", raw, dateRangeSeparator),
		})
		return
	}

	startDate, err1 := time.Parse(dateLayout, start)
	endDate, err2 := time.Parse(dateLayout, end)
	if err1 != nil || err2 != nil {
		v.Issues = append(v.Issues, domain.Issue{
			Field:   fields.FieldDateRange,
			Message: fmt.Sprintf("date range %q has unparseable dates, expected layout like 01 Jan 2025", raw),
		})
		return
	}

	if !startDate.Before(endDate) {
		v.Issues = append(v.Issues, domain.Issue{
			Field:   fields.FieldDateRange,
			Message: fmt.Sprintf("date range %q start date must be before end date", raw),
		})
	}
}

func (e *Engine) checkTimeRange(fs domain.FieldSet, v *domain.RuleVerdict) {
	raw, ok := fs.Get(fields.FieldTimeRange)
	if !ok || raw == "" {
		return
	}

	start, end, ok := splitRange(raw, timeRangeSeparator)
	if !ok {
		v.Issues = append(v.Issues, domain.Issue{
			Field:   fields.FieldTimeRange,
			Message: fmt.Sprintf("time range %q is not in the form HH:MM:SS%sHH:MM:SS", raw, timeRangeSeparator),
		})
		return
	}

	_, err1 := time.Parse(timeLayout, start)
	_, err2 := time.Parse(timeLayout, end)
	if err1 != nil || err2 != nil {
		v.Issues = append(v.Issues, domain.Issue{
			Field:   fields.FieldTimeRange,
			Message: fmt.Sprintf("time range %q has unparseable times, expected HH:MM:SS", raw),
		})
	}
}

func (e *Engine) checkNameMatchesVPNUser(fs domain.FieldSet, v *domain.RuleVerdict) {
	name, nameOK := fs.Get(fields.FieldName)
	vpnUser, userOK := fs.Get(fields.FieldVPNUser)
	if !nameOK || !userOK || name == "" || vpnUser == "" {
		return
	}
	if !strings.Contains(strings.ToLower(vpnUser), strings.ToLower(name)) {
		v.Issues = append(v.Issues, domain.Issue{
			Field:   fields.FieldVPNUser,
			Message: fmt.Sprintf("requester name %q does not appear in the VPN user entry %q", name, vpnUser),
		})
	}
}

func (e *Engine) checkSignatures(signatures *domain.SignatureEvidence, v *domain.RuleVerdict) {
	if signatures.Valid {
		return
	}
	v.Issues = append(v.Issues, domain.Issue{
		Field:   "Signatures",
		Message: fmt.Sprintf("insufficient signatures: %d/%d required", signatures.Count, e.minSignatures),
	})
}

// MinSignatures returns the configured signature minimum, used when
// composing rejection messages.
func (e *Engine) MinSignatures() int { return e.minSignatures }

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

// splitRange splits a range value on the first occurrence of sep and
// trims both halves. Both halves must be non-empty.
func splitRange(raw, sep string) (start, end string, ok bool) {
	before, after, found := strings.Cut(raw, sep)
	if !found {
		return "", "", false
	}
	start = strings.TrimSpace(before)
	end = strings.TrimSpace(after)
	return start, end, start != "" && end != ""
}
