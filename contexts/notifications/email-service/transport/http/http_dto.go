package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SendTestMailRequest asks for a probe message to one recipient.
type SendTestMailRequest struct {
	Recipient string `json:"recipient"`
}

type SendTestMailResponse struct {
	Accepted int `json:"accepted"`
}
