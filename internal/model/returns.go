package model

// ReturnType is the kind of post-delivery request a customer can file.
type ReturnType string

const (
	ReturnTypeReturn      ReturnType = "Return"
	ReturnTypeReplacement ReturnType = "Replacement"
)

// ReturnRequest is a customer's return or replacement submission.
// Images are data URLs ("data:image/png;base64,...") transmitted inline.
type ReturnRequest struct {
	TrackingNumber string     `json:"trackingNumber" validate:"required,max=64"`
	OrderID        string     `json:"orderId,omitempty" validate:"max=64"`
	Type           ReturnType `json:"type" validate:"required,oneof=Return Replacement"`
	Reason         string     `json:"reason" validate:"required,max=200"`
	Comments       string     `json:"comments,omitempty" validate:"max=2000"`
	Images         []string   `json:"images,omitempty" validate:"max=5,dive,image_data_url"`
	CustomerName   string     `json:"customerName,omitempty" validate:"max=120"`
	CustomerEmail  string     `json:"customerEmail,omitempty" validate:"omitempty,email"`
	CustomerPhone  string     `json:"customerPhone,omitempty" validate:"max=32"`
}

// ReturnReceipt acknowledges an accepted submission.
type ReturnReceipt struct {
	RequestID string `json:"request_id"`
}

// ReturnStatus lists earlier requests filed for a tracking number.
type ReturnStatus struct {
	HasRequest bool           `json:"has_request"`
	Requests   []ReturnRecord `json:"requests"`
}

// ReturnRecord is one previously filed request, rendered read-only.
type ReturnRecord struct {
	ID          FlexString `json:"id"`
	RequestType ReturnType `json:"request_type"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	RequestDate string     `json:"request_date"`
}
