package models

import (
	"time"
)

// RideStatus constants. Transitions are forward-only and are applied
// exclusively by the dispatch service.
const (
	RideStatusPending   = "pending"
	RideStatusAccepted  = "accepted"
	RideStatusArrived   = "driver_arrived"
	RideStatusStarted   = "ride_started"
	RideStatusCompleted = "completed"
	RideStatusCancelled = "cancelled"
)

// TerminalStatus reports whether no further transition is defined from status.
func TerminalStatus(status string) bool {
	return status == RideStatusCompleted || status == RideStatusCancelled
}

// Ride is the aggregate root for one trip request, from creation until
// completion or cancellation.
type Ride struct {
	ID     string `json:"rideId" gorm:"primaryKey"`
	Status string `json:"status" gorm:"not null;default:'pending'"`

	PickupLat  float64 `json:"pickupLat" gorm:"not null"`
	PickupLng  float64 `json:"pickupLng" gorm:"not null"`
	PickupAddr string  `json:"pickupAddress"`
	DestLat    float64 `json:"destLat" gorm:"not null"`
	DestLng    float64 `json:"destLng" gorm:"not null"`
	DestAddr   string  `json:"destAddress"`

	DistanceKm   float64 `json:"distanceKm"`
	TrafficDelay int     `json:"trafficDelay"` // estimated delay in minutes
	VehicleType  string  `json:"vehicleType"`
	UserPrice    float64 `json:"userPrice"`

	RiderPhone  string `json:"riderPhone,omitempty"`
	DriverPhone string `json:"driverPhone,omitempty"`

	// AcceptedBidID is set exactly once, when the rider accepts a bid, and
	// always references a row in Bids.
	AcceptedBidID *string `json:"acceptedBidId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`

	Bids     []Bid     `json:"bids" gorm:"foreignKey:RideID;references:ID"`
	Messages []Message `json:"messages,omitempty" gorm:"foreignKey:RideID;references:ID"`
}

// TableName specifies the table name
func (Ride) TableName() string {
	return "rides"
}

// Bid is a driver's price offer against a pending ride. Bids are immutable
// once recorded; a counter-bid is a new row, never an update.
type Bid struct {
	ID          string    `json:"bidId" gorm:"primaryKey"`
	RideID      string    `json:"rideId" gorm:"index;not null"`
	DriverID    string    `json:"driverId"`
	DriverName  string    `json:"driverName"`
	Vehicle     string    `json:"vehicle"`
	Price       float64   `json:"price"`
	Rating      float64   `json:"rating"`
	DriverPhone string    `json:"driverPhone"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName specifies the table name
func (Bid) TableName() string {
	return "bids"
}

// Message sender roles.
const (
	MessageFromUser   = "user"
	MessageFromDriver = "driver"
)

// Message is one chat line on a ride. Append-only; never edited or deleted.
type Message struct {
	ID     uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	RideID string    `json:"-" gorm:"index;not null"`
	From   string    `json:"from" gorm:"column:sender"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"timestamp"`
}

// TableName specifies the table name
func (Message) TableName() string {
	return "messages"
}
