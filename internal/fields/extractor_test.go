package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vpnvalidator/internal/config"
)

const sampleForm = `FORMULIR PERMOHONAN VPN BARU
NIK : 123456
Nama : Budi Santoso
No Tel : 081234567890
Email : budi.santoso@infomedia.co.id
Departement : IT Operations
Manager : Siti Rahayu
Range Tanggal : 01 Jan 2025 ` + "–" + ` 31 Mar 2025
Range Waktu : 08:00:00-17:00:00
Approved by : Agus Wibowo
User VPN : Budi Santoso
`

func TestExtractCompleteForm(t *testing.T) {
	set := NewExtractor(config.DefaultRequiredFields).Extract(sampleForm)

	expected := map[string]string{
		FieldNIK:        "123456",
		FieldName:       "Budi Santoso",
		FieldPhone:      "081234567890",
		FieldEmail:      "budi.santoso@infomedia.co.id",
		FieldDepartment: "IT Operations",
		FieldManager:    "Siti Rahayu",
		FieldDateRange:  "01 Jan 2025 – 31 Mar 2025",
		FieldTimeRange:  "08:00:00-17:00:00",
		FieldApprovedBy: "Agus Wibowo",
		FieldVPNUser:    "Budi Santoso",
	}
	for name, want := range expected {
		got, ok := set.Get(name)
		require.True(t, ok, "field %s not extracted", name)
		assert.Equal(t, want, got, "field %s", name)
	}
	assert.InDelta(t, 1.0, set.Completeness(config.DefaultRequiredFields), 1e-9)
}

func TestExtractEnglishLabels(t *testing.T) {
	text := `New VPN Request
Name: John Doe
Phone: 0812-3456
E-mail: john.doe@infomedia.co.id
Department: Finance
Date Range: 05 Feb 2025 ` + "–" + ` 05 Mar 2025
Time Range: 09:00:00-18:00:00
VPN User: John Doe
`
	set := NewExtractor(config.DefaultRequiredFields).Extract(text)

	name, _ := set.Get(FieldName)
	assert.Equal(t, "John Doe", name)
	email, _ := set.Get(FieldEmail)
	assert.Equal(t, "john.doe@infomedia.co.id", email)
	date, _ := set.Get(FieldDateRange)
	assert.Equal(t, "05 Feb 2025 – 05 Mar 2025", date)
}

func TestExtractAbsentFieldsStayAbsent(t *testing.T) {
	set := NewExtractor(config.DefaultRequiredFields).Extract("Nama : Budi\n")

	_, ok := set.Get(FieldEmail)
	assert.False(t, ok, "absent field must not be present as empty string")
	assert.Len(t, set, 1)
}

func TestExtractDoesNotCrossLines(t *testing.T) {
	text := "Nama :\nDepartement : IT\n"
	set := NewExtractor(config.DefaultRequiredFields).Extract(text)

	// The Name label has no value on its line; the capture must not
	// swallow the following line.
	if v, ok := set.Get(FieldName); ok {
		assert.NotContains(t, v, "IT")
		assert.NotContains(t, v, "Departement")
	}
	dept, ok := set.Get(FieldDepartment)
	require.True(t, ok)
	assert.Equal(t, "IT", dept)
}

func TestExtractFirstMatchWins(t *testing.T) {
	text := "NIK : 111111\nNIK : 222222\n"
	set := NewExtractor(config.DefaultRequiredFields).Extract(text)

	nik, _ := set.Get(FieldNIK)
	assert.Equal(t, "111111", nik)
}

func TestExtractTrimsWhitespace(t *testing.T) {
	set := NewExtractor(config.DefaultRequiredFields).Extract("NIK :   98765   \n")

	nik, _ := set.Get(FieldNIK)
	assert.Equal(t, "98765", nik)
}

func TestSchemaOrderPreserved(t *testing.T) {
	e := NewExtractor([]string{FieldEmail, FieldNIK})
	assert.Equal(t, []string{FieldEmail, FieldNIK}, e.Schema())
}
