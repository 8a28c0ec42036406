package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionFinding describes a parameter value that libinjection flagged as a
// likely SQL injection payload.
type InjectionFinding struct {
	ParamName   string
	Fingerprint string
	Value       string
}

// ScanParameters runs libinjection over every string parameter value and
// returns the findings. Parameters always bind through placeholders, so a
// finding is a signal for the security audit log, not grounds for rejection.
// Non-string values cannot carry injection payloads and are skipped.
func ScanParameters(params map[string]any) []InjectionFinding {
	var findings []InjectionFinding
	for name, value := range params {
		strValue, ok := value.(string)
		if !ok {
			continue
		}
		isSQLi, fingerprint := libinjection.IsSQLi(strValue)
		if isSQLi {
			findings = append(findings, InjectionFinding{
				ParamName:   name,
				Fingerprint: string(fingerprint),
				Value:       strValue,
			})
		}
	}
	return findings
}
