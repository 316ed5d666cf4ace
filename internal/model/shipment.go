package model

import "regexp"

// Milestones is the fixed, ordered shipment progress sequence rendered by the storefront.
var Milestones = []string{
	"Shipment Info Received",
	"Picked Up",
	"Arrived Facility",
	"With Delivery Courier",
	"Out for Delivery",
	"Delivered",
}

// LastMilestone is the index of the "Delivered" milestone.
var LastMilestone = len(Milestones) - 1

// TrackingState distinguishes how much the carrier knows about an identifier.
type TrackingState string

const (
	StateHasTrackingData TrackingState = "has_tracking_data"
	StateOrderExistsOnly TrackingState = "order_exists_only"
	StateNoData          TrackingState = "no_data"
)

// NoDataMessage is shown instead of a progress bar when nothing is known.
const NoDataMessage = "We don't have information for this tracking number yet. Please check back later."

// ShipmentTrack is one carrier airway-bill record.
// Field names follow the carrier payload.
type ShipmentTrack struct {
	AirWayBillNo       string        `json:"AirWayBillNo"`
	ShipmentProgress   FlexInt       `json:"ShipmentProgress"`
	Origin             string        `json:"Origin,omitempty"`
	Destination        string        `json:"Destination,omitempty"`
	ChargeableWeight   FlexString    `json:"ChargeableWeight,omitempty"`
	OrderNo            FlexString    `json:"OrderNo,omitempty"`
	Reference          FlexString    `json:"Reference,omitempty"`
	TrackingLogDetails []TrackingLog `json:"TrackingLogDetails"`
}

// TrackingLog is one timestamped carrier activity.
type TrackingLog struct {
	ActivityDate string `json:"ActivityDate,omitempty"`
	ActivityTime string `json:"ActivityTime,omitempty"`
	Location     string `json:"Location,omitempty"`
	Remarks      string `json:"Remarks,omitempty"`
	Activity     string `json:"Activity,omitempty"`
}

// Text returns the free-text field used for delivered detection.
// Remarks wins; Activity is the fallback.
func (l TrackingLog) Text() string {
	if l.Remarks != "" {
		return l.Remarks
	}
	return l.Activity
}

// OrderReference returns the store order id the carrier booked the shipment under.
func (s *ShipmentTrack) OrderReference() string {
	if s.OrderNo != "" {
		return string(s.OrderNo)
	}
	return string(s.Reference)
}

// Projection is the tracking view derived for one identifier.
type Projection struct {
	Identifier     string         `json:"identifier"`
	State          TrackingState  `json:"state"`
	ProgressIndex  *int           `json:"progress_index,omitempty"` // nil when no data
	Milestones     []string       `json:"milestones"`
	Track          *ShipmentTrack `json:"track,omitempty"`
	Delivered      bool           `json:"delivered"`
	ReturnEligible bool           `json:"return_eligible"`
	Message        string         `json:"message,omitempty"`
	Returns        *ReturnStatus  `json:"returns,omitempty"`
}

var deliveredPattern = regexp.MustCompile(`(?i)delivered`)

// IsDelivered reports whether a shipment reached its destination.
// Either signal suffices: the numeric progress or a log entry mentioning delivery.
// The two can disagree on carrier data, so neither is required.
func IsDelivered(progress int, logs []TrackingLog) bool {
	if progress >= LastMilestone {
		return true
	}
	for _, l := range logs {
		if deliveredPattern.MatchString(l.Text()) {
			return true
		}
	}
	return false
}

// ClampProgress maps a carrier progress value into the milestone range.
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > LastMilestone {
		return LastMilestone
	}
	return p
}
