package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	Catalogs        CatalogDigests `json:"catalogs"`
	Kinds           []string       `json:"kinds"`
	Civilisations   []string       `json:"civilisations"`
}

type CatalogDigests struct {
	Buildings    DigestRef `json:"buildings"`
	TuningDigest string    `json:"tuning_digest,omitempty"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	// Count is the number of eligible (kind, civilisation) pairs.
	Count int `json:"count"`
}

// QUERY_INFO (client -> server)
type QueryInfoMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
	Kind            string `json:"kind"`
	// Civilisation may be empty for kind-level queries, which resolve the
	// first eligible civilisation.
	Civilisation string `json:"civilisation,omitempty"`
}

// INFO (server -> client)
type InfoMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
	Info            any    `json:"info"`
}

// QUERY_STRATEGY (client -> server)
type QueryStrategyMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
	Kind            string `json:"kind"`
	Civilisation    string `json:"civilisation"`
}

// STRATEGY (server -> client)
type StrategyMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
	Kind            string `json:"kind"`
	Civilisation    string `json:"civilisation"`
	Strategy        string `json:"strategy"`
	Prerequisite    string `json:"prerequisite,omitempty"`
	Resource        string `json:"resource,omitempty"`
}

// VALIDATE (client -> server)
type ValidateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
}

// VALIDATION (server -> client)
type ValidationMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	ReqID           string         `json:"req_id"`
	Digest          string         `json:"digest"`
	Checked         int            `json:"checked"`
	Violations      []ViolationRef `json:"violations"`
}

type ViolationRef struct {
	Kind         string `json:"kind"`
	Civilisation string `json:"civilisation"`
	Rule         string `json:"rule"`
	Detail       string `json:"detail"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}

func NewError(reqID, code, message string) ErrorMsg {
	return ErrorMsg{
		Type:            TypeError,
		ProtocolVersion: Version,
		ReqID:           reqID,
		Code:            code,
		Message:         message,
	}
}
