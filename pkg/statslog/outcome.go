package statslog

// ScenarioOutcome is the result of evaluating one candidate against one scenario.
type ScenarioOutcome struct {
	ProblemClass string        `json:"problem_class"`
	InstanceID   string        `json:"instance_id"`
	Seed         int64         `json:"seed"`
	Stats        Stats         `json:"stats"`
	Auction      *AuctionStats `json:"auction,omitempty"`
}

// ScenarioID joins problem class and instance with a dash.
func (o ScenarioOutcome) ScenarioID() string {
	return o.ProblemClass + "-" + o.InstanceID
}

// Stats is the simulator's statistics payload for a single scenario.
type Stats struct {
	TotalParcels      int     `json:"total_parcels"`
	TotalVehicles     int     `json:"total_vehicles"`
	TotalPickups      int     `json:"total_pickups"`
	TotalDeliveries   int     `json:"total_deliveries"`
	VehiclesAtDepot   int     `json:"vehicles_at_depot"`
	SimFinished       bool    `json:"sim_finished"`
	TotalTravelTime   float64 `json:"total_travel_time"`
	PickupTardiness   float64 `json:"pickup_tardiness"`
	DeliveryTardiness float64 `json:"delivery_tardiness"`
	OverTime          float64 `json:"over_time"`
}

// AuctionStats is only present when the run used reauctioning.
type AuctionStats struct {
	NumReauctions             int `json:"num_reauctions"`
	NumUnsuccessfulReauctions int `json:"num_unsuccessful_reauctions"`
	NumFailedReauctions       int `json:"num_failed_reauctions"`
}

// Objective turns a statistics payload into the logged cost figures.
type Objective interface {
	IsValid(s Stats) bool
	Cost(s Stats) float64
	TravelTime(s Stats) float64
	Tardiness(s Stats) float64
	OverTime(s Stats) float64
}

// DefaultObjective sums travel time, tardiness and over time. A result is
// valid when the simulation finished with every parcel picked up and
// delivered and every vehicle back at the depot.
type DefaultObjective struct{}

var _ Objective = DefaultObjective{}

func (DefaultObjective) IsValid(s Stats) bool {
	return s.SimFinished &&
		s.TotalPickups == s.TotalParcels &&
		s.TotalDeliveries == s.TotalParcels &&
		s.VehiclesAtDepot == s.TotalVehicles
}

func (o DefaultObjective) Cost(s Stats) float64 {
	return o.TravelTime(s) + o.Tardiness(s) + o.OverTime(s)
}

func (DefaultObjective) TravelTime(s Stats) float64 { return s.TotalTravelTime }

func (DefaultObjective) Tardiness(s Stats) float64 {
	return s.PickupTardiness + s.DeliveryTardiness
}

func (DefaultObjective) OverTime(s Stats) float64 { return s.OverTime }
