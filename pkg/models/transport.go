package models

// AnalysisRequest asks for the health report of one photo reference.
// URL accepts http(s)://, azblob:// and file:// references.
type AnalysisRequest struct {
	URL                 string `json:"url" binding:"required"`
	Strategy            string `json:"strategy,omitempty"`
	IncludeColorProfile bool   `json:"include_color_profile,omitempty"`
}

// BatchAnalysisRequest asks for several photos in one call
type BatchAnalysisRequest struct {
	URLs                []string `json:"urls" binding:"required,min=1"`
	Strategy            string   `json:"strategy,omitempty"`
	IncludeColorProfile bool     `json:"include_color_profile,omitempty"`
}

// BatchItem is the outcome for one reference of a batch, in request order.
type BatchItem struct {
	URL    string        `json:"url"`
	Report *HealthReport `json:"report,omitempty"`
	Error  *ErrorDetail  `json:"error,omitempty"`
}

// BatchAnalysisResponse wraps per-item results of a batch request
type BatchAnalysisResponse struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// ErrorDetail describes a failed item without aborting the whole batch
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
