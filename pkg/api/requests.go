package api

// ParseNameRequest asks the grammar to decompose one model name.
type ParseNameRequest struct {
	// name must carry a non-empty base model name once parsed
	Name string `json:"name" binding:"required,modelname"`
}

// CreateKeyRequest provisions a new admin API key.
type CreateKeyRequest struct {
	Name string `json:"name" binding:"required,min=3,max=64"`
	Role string `json:"role" binding:"omitempty,oneof=admin viewer"`
}
