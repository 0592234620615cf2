package protocol

import "testing"

func TestValidateRequest_Samples(t *testing.T) {
	ok := []string{
		`{"type":"HELLO","protocol_version":"1.0","client_name":"bot1"}`,
		`{"type":"HELLO","protocol_version":"1.0"}`,
		`{"type":"QUERY_INFO","protocol_version":"1.0","req_id":"R1","kind":"CASTLE","civilisation":"ROMANS"}`,
		`{"type":"QUERY_INFO","protocol_version":"1.0","req_id":"R2","kind":"COALMINE"}`,
		`{"type":"QUERY_STRATEGY","protocol_version":"1.0","req_id":"R3","kind":"SAWMILL","civilisation":"ASIANS"}`,
		`{"type":"VALIDATE","protocol_version":"1.0","req_id":"R4"}`,
	}
	for _, s := range ok {
		if err := ValidateRequest([]byte(s)); err != nil {
			t.Fatalf("expected %s valid, got %v", s, err)
		}
	}
}

func TestValidateRequest_Rejects(t *testing.T) {
	bad := []string{
		`not json`,
		`{"type":"OBS","protocol_version":"1.0"}`,
		`{"type":"HELLO"}`,
		`{"type":"QUERY_INFO","protocol_version":"1.0","req_id":"R1"}`,
		`{"type":"QUERY_INFO","protocol_version":"1.0","req_id":"R1","kind":"castle"}`,
		`{"type":"QUERY_STRATEGY","protocol_version":"1.0","req_id":"R3","kind":"SAWMILL"}`,
		`{"type":"VALIDATE","protocol_version":"1.0","req_id":"","extra":1}`,
	}
	for _, s := range bad {
		if err := ValidateRequest([]byte(s)); err == nil {
			t.Fatalf("expected %s rejected", s)
		}
	}
}
