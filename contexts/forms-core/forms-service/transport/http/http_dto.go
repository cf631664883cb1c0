package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateFormRequest struct {
	Name            string   `json:"name"`
	RetentionDays   int      `json:"retention_days"`
	EncryptPayloads bool     `json:"encrypt_payloads"`
	AlertEmails     []string `json:"alert_emails,omitempty"`
}

type UpdateFormRequest struct {
	Name            *string   `json:"name,omitempty"`
	Enabled         *bool     `json:"enabled,omitempty"`
	RetentionDays   *int      `json:"retention_days,omitempty"`
	EncryptPayloads *bool     `json:"encrypt_payloads,omitempty"`
	AlertEmails     *[]string `json:"alert_emails,omitempty"`
}

type FormDTO struct {
	FormID          string   `json:"form_id"`
	Name            string   `json:"name"`
	Key             string   `json:"key"`
	Enabled         bool     `json:"enabled"`
	RetentionDays   int      `json:"retention_days"`
	EncryptPayloads bool     `json:"encrypt_payloads"`
	AlertEmails     []string `json:"alert_emails,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

type CreateFormResponse struct {
	Form FormDTO `json:"form"`
}

type GetFormResponse struct {
	Form FormDTO `json:"form"`
}

type ListFormsResponse struct {
	Items []FormDTO `json:"items"`
}
