package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateResponseRequest struct {
	Payload string         `json:"payload"`
	Labels  []string       `json:"labels,omitempty"`
	Files   []IncomingFile `json:"files,omitempty"`
}

type IncomingFile struct {
	TempKey     string `json:"temp_key"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

type UpdateFlagsRequest struct {
	ResponseIDs []string `json:"response_ids"`
	Flag        string   `json:"flag"`
	Value       bool     `json:"value"`
}

type LifecycleRequest struct {
	ResponseIDs []string `json:"response_ids"`
}

type SetLabelsRequest struct {
	Labels []string `json:"labels"`
}

type AddNoteRequest struct {
	Body string `json:"body"`
}

type ResponseDTO struct {
	ResponseID string           `json:"response_id"`
	FormID     string           `json:"form_id"`
	Payload    string           `json:"payload"`
	Encrypted  bool             `json:"encrypted"`
	Read       bool             `json:"read"`
	Starred    bool             `json:"starred"`
	Spam       bool             `json:"spam"`
	Deleted    bool             `json:"deleted"`
	Labels     []string         `json:"labels,omitempty"`
	Logs       []ResponseLogDTO `json:"logs,omitempty"`
	CreatedAt  string           `json:"created_at"`
	UpdatedAt  string           `json:"updated_at"`
	DeletedAt  string           `json:"deleted_at,omitempty"`
	ExpiresAt  string           `json:"expires_at,omitempty"`
}

type ResponseLogDTO struct {
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
	At      string `json:"at"`
}

type NoteDTO struct {
	NoteID     string `json:"note_id"`
	ResponseID string `json:"response_id"`
	AuthorID   string `json:"author_id"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at"`
}

type FileDTO struct {
	FileID      string `json:"file_id"`
	ResponseID  string `json:"response_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	StorageKey  string `json:"storage_key"`
	CreatedAt   string `json:"created_at"`
}

type CreateResponseResponse struct {
	Response ResponseDTO `json:"response"`
}

type GetResponseResponse struct {
	Response ResponseDTO `json:"response"`
}

type ListResponsesResponse struct {
	Items  []ResponseDTO `json:"items"`
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
}

type BulkUpdateResponse struct {
	Processed      int `json:"processed"`
	SucceededCount int `json:"succeeded_count"`
	FailedCount    int `json:"failed_count"`
}

type CountsResponse struct {
	Total   int64 `json:"total"`
	Read    int64 `json:"read"`
	Spam    int64 `json:"spam"`
	Starred int64 `json:"starred"`
	Unread  int64 `json:"unread"`
}

type AddNoteResponse struct {
	Note NoteDTO `json:"note"`
}

type ListNotesResponse struct {
	Items []NoteDTO `json:"items"`
}

type ListFilesResponse struct {
	Items []FileDTO `json:"items"`
}
