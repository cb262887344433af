// internal/models/api.go
package models

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the success payload of POST /ask. Method is "rule-based"
// when the SQL came from the pattern table and "model-generated" when it came
// from the extraction of model output.
type AskResponse struct {
	Question     string                   `json:"question"`
	GeneratedSQL string                   `json:"generated_sql"`
	Results      []map[string]interface{} `json:"results"`
	Method       string                   `json:"method"`
}

// HealthResponse is the payload of GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// SchemaResponse is the payload of GET /schema.
type SchemaResponse struct {
	Schema string `json:"schema"`
}
