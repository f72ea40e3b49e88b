package domain

// Template is a canned operator reply.
type Template struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Content  string `json:"text"`
	Language string `json:"language"`
	IsActive bool   `json:"is_active"`
}

// TemplateInput is the writable part of a template.
type TemplateInput struct {
	Name       string `json:"name"`
	CategoryID string `json:"category_id,omitempty"`
	Content    string `json:"content"`
	IsActive   *bool  `json:"is_active,omitempty"`
}

// Integration is an external channel connected to the helpdesk.
type Integration struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
	Status  string `json:"status"`
}
