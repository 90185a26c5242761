package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// InvalidationDTO is one server-sent event on the change stream.
type InvalidationDTO struct {
	Collection string `json:"collection"`
	Kind       string `json:"kind"`
	RowID      string `json:"row_id,omitempty"`
	Reason     string `json:"reason"`
}
