package apperror

// Context carries correlation fields for a single error. A Context belongs
// to exactly one AppError; it has no identity of its own.
type Context struct {
	UserID         string                 `json:"user_id,omitempty"`
	ProjectID      int64                  `json:"project_id,omitempty"`
	FileID         int64                  `json:"file_id,omitempty"`
	TemplateID     int64                  `json:"template_id,omitempty"`
	RequestID      string                 `json:"request_id,omitempty"`
	SessionID      string                 `json:"session_id,omitempty"`
	AdditionalData map[string]interface{} `json:"additional_data,omitempty"`
}

// WithData returns the context with an additional key/value pair set,
// allocating the map on first use.
func (c *Context) WithData(key string, value interface{}) *Context {
	if c.AdditionalData == nil {
		c.AdditionalData = make(map[string]interface{})
	}
	c.AdditionalData[key] = value
	return c
}
