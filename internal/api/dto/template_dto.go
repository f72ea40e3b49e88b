package dto

// TemplatePayload tolerates both template shapes.
type TemplatePayload struct {
	ID           FlexID `json:"id"`
	Name         string `json:"name"`
	CategoryID   FlexID `json:"category_id"`
	CategoryName string `json:"category_name"`
	Category     string `json:"category"`
	Content      string `json:"content"`
	Text         string `json:"text"`
	Language     string `json:"language"`
	IsActive     *bool  `json:"is_active"`
}

// TemplateWriteRequest is the POST/PUT /templates payload.
type TemplateWriteRequest struct {
	Name       string  `json:"name,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
	Content    string  `json:"content,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

// IntegrationPayload is one entry of GET /integrations.
type IntegrationPayload struct {
	ID      FlexID `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Enabled *bool  `json:"enabled"`
	Active  *bool  `json:"is_active"`
	Status  string `json:"status"`
}
