package domain

import "time"

const MetersPerMile = 1609.344

// LocationType tags a waypoint with the reason the truck stops there.
type LocationType string

const (
	LocationPickup  LocationType = "pickup"
	LocationDropoff LocationType = "dropoff"
	LocationRest    LocationType = "rest"
	LocationFuel    LocationType = "fuel"
)

// A Leg is one resolved origin->destination hop of a trip.
// Legs are immutable once the segmenter has produced them.
type Leg struct {
	Origin      string
	Destination string
	Miles       float64
	Duration    time.Duration
}

// Hours returns the nominal driving time of the leg in hours.
func (l Leg) Hours() float64 { return l.Duration.Hours() }

// Waypoint is a stop along the route. Sequence is 1-based and unique per trip.
// DurationHours is the time spent at the stop.
type Waypoint struct {
	Sequence             int
	Location             string
	Type                 LocationType
	DurationHours        float64
	DistanceFromPrevious float64
	ArriveAt             time.Time
}

// Segmentation is the output of the route segmenter: the ordered legs of the trip
// and the fixed handling stops at pickup and dropoff. The first LegsBeforePickup
// legs bring the truck to the pickup; the rest of the legs follow it.
type Segmentation struct {
	Legs             []Leg
	LegsBeforePickup int
	Pickup           Waypoint
	Dropoff          Waypoint
	TotalMiles       float64
}

// DrivingDuration is the sum of the nominal driving time of all legs.
func (s Segmentation) DrivingDuration() time.Duration {
	var total time.Duration
	for _, l := range s.Legs {
		total += l.Duration
	}
	return total
}
