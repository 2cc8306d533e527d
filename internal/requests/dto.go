package requests

import "time"

// Request creation payload. Quantity defaults to 1 and is forced to 1 for
// document requests.
type CreateRequestInput struct {
	Type     string `json:"type" binding:"required"`
	TargetID int64  `json:"target_id" binding:"required"`
	Quantity int    `json:"quantity"`
	Duration string `json:"duration" binding:"required"`
}

// Admin decision payload. Reason is only meaningful for "declined".
type DecideRequestInput struct {
	Decision string  `json:"decision" binding:"required"`
	Reason   *string `json:"reason,omitempty"`
}

type RequestResponse struct {
	RequestULID       string     `json:"request_ulid"`
	Type              string     `json:"type"`
	TargetID          int64      `json:"target_id"`
	TargetName        string     `json:"target_name,omitempty"`
	RequesterID       string     `json:"requester_id"`
	Status            string     `json:"status"`
	QuantityRequested int        `json:"quantity_requested"`
	Duration          string     `json:"duration"`
	Issued            bool       `json:"issued"`
	Returned          bool       `json:"returned"`
	DeclineReason     *string    `json:"decline_reason,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

func buildResponse(r *Request) RequestResponse {
	resp := RequestResponse{
		RequestULID:       r.RequestULID,
		Type:              string(r.Type),
		TargetID:          r.TargetID,
		TargetName:        r.TargetName,
		RequesterID:       r.RequesterID,
		Status:            string(r.Status),
		QuantityRequested: r.QuantityRequested,
		Duration:          r.Duration,
		Issued:            r.Issued,
		Returned:          r.Returned,
		CreatedAt:         r.CreatedAt,
	}
	if r.DeclineReason.Valid {
		val := r.DeclineReason.String
		resp.DeclineReason = &val
	}
	if !r.UpdatedAt.IsZero() {
		val := r.UpdatedAt
		resp.UpdatedAt = &val
	}
	return resp
}

func buildResponses(rs []Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(rs))
	for i := range rs {
		out = append(out, buildResponse(&rs[i]))
	}
	return out
}
