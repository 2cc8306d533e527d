package items

import "time"

// ===== Requests =====

type CreateItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	Category    *string `json:"category,omitempty"`
}

type UpdateItemRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
	Category    *string `json:"category,omitempty"`
	IsAvailable *bool   `json:"is_available,omitempty"`
}

// ===== Responses =====

type ItemResponse struct {
	ItemID      int64     `json:"item_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	Category    string    `json:"category"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func buildItemResponse(m *Item) ItemResponse {
	return ItemResponse{
		ItemID:      m.ItemID,
		Name:        m.Name,
		Description: m.Description,
		Quantity:    m.Quantity,
		Category:    m.Category,
		IsAvailable: m.IsAvailable,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
