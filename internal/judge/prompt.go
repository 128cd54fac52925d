package judge

import (
	"encoding/json"
	"fmt"

	"vpnvalidator/internal/port"
)

// BuildValidationPrompt renders the evaluation prompt shown to the LLM
// judge. The instructions are in Indonesian to match the language of the
// request forms; the answer contract is strict JSON.
func BuildValidationPrompt(input port.JudgeInput, minSignatures int, emailDomain string) string {
	payload := map[string]interface{}{
		"fields":          input.Fields,
		"signature_count": input.Signatures.Count,
		"signature_valid": input.Signatures.Valid,
		"document_type":   string(input.DocType.Label),
	}
	if len(input.RuleIssues) > 0 {
		msgs := make([]string, 0, len(input.RuleIssues))
		for _, issue := range input.RuleIssues {
			msgs = append(msgs, issue.Message)
		}
		payload["rule_findings"] = msgs
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		// Only unmarshalable values can fail here, and the payload is
		// built from plain strings and ints.
		data = []byte("{}")
	}

	return fmt.Sprintf(`Anda adalah seorang AI Judge yang bertugas mengevaluasi dokumen permohonan VPN.
Tugas Anda adalah menganalisis data yang diekstrak dari PDF dan memberikan keputusan final.

DATA YANG DIEKSTRAK:
%s

KRITERIA EVALUASI:
1. KELENGKAPAN DATA:
   - NIK harus diisi dan berupa angka
   - Nama lengkap harus diisi
   - Nomor telepon harus diisi
   - Email harus diisi dan menggunakan domain %s
   - Departement harus diisi
   - Manager/Atasan harus diisi
   - Range Tanggal harus diisi dengan format yang benar
   - Range Waktu harus diisi dengan format yang benar
   - Approved by harus diisi
   - User VPN harus diisi

2. VALIDASI TANDA TANGAN:
   - Dokumen harus memiliki minimal %d tanda tangan
   - Tanda tangan harus dari: pemohon, atasan, dan pihak IT
   - Jumlah tanda tangan saat ini: %d

3. JENIS DOKUMEN:
   - Tipe dokumen terdeteksi: %s
   - Pastikan dokumen adalah permohonan VPN baru atau perpanjangan VPN

4. KONSISTENSI DATA:
   - Nama di form harus konsisten dengan User VPN
   - Tanggal dan waktu harus logis
   - Email harus sesuai format perusahaan

TUGAS ANDA:
Berdasarkan analisis di atas, berikan evaluasi dalam format JSON dengan struktur berikut:

{
    "is_valid": boolean,
    "status": "approved_for_processing" atau "rejected_with_reason",
    "confidence": float (0.0 - 1.0),
    "issues": [list of issues found],
    "reasoning": "penjelasan singkat keputusan",
    "missing_fields": [list of missing required fields],
    "signature_analysis": {
        "count": number,
        "sufficient": boolean,
        "description": "analisis tanda tangan"
    },
    "document_type_analysis": {
        "detected_type": string,
        "confidence": float,
        "description": "analisis jenis dokumen"
    },
    "recommendations": [list of recommendations for improvement]
}

PENTING:
- Jika ada field yang kosong atau tidak valid, set is_valid = false
- Jika tanda tangan kurang dari %d, set is_valid = false
- Jika email tidak menggunakan domain %s, set is_valid = false
- Berikan reasoning yang jelas dan spesifik
- Confidence harus mencerminkan tingkat kepastian evaluasi

Jawab hanya dengan JSON, tanpa teks tambahan.`,
		string(data), emailDomain, minSignatures, input.Signatures.Count,
		input.DocType.Label, minSignatures, emailDomain)
}
