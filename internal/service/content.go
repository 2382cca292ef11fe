package service

// ContentService serves the static catalog content shown on the landing
// pages: featured vehicles, offered services, and maintenance tips.
// The data is compiled into the binary; there is nothing to persist.
type ContentService struct{}

// NewContentService creates a new content service.
func NewContentService() *ContentService {
	return &ContentService{}
}

// FeaturedVehicle is one entry in the showcase carousel.
type FeaturedVehicle struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// OfferedService describes one service the garage offers.
type OfferedService struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

// MaintenanceTip is a single piece of upkeep advice.
type MaintenanceTip struct {
	Title string `json:"title"`
	Tip   string `json:"tip"`
}

var featuredVehicles = []FeaturedVehicle{
	{
		Name:        "Classic Roadster",
		Description: "A fully restored two-seater, back on the road after a frame-off rebuild.",
		ImageURL:    "/static/featured/roadster.jpg",
	},
	{
		Name:        "City Hatchback",
		Description: "Daily driver tuned for economy, fresh from its 60,000 km service.",
		ImageURL:    "/static/featured/hatchback.jpg",
	},
	{
		Name:        "Adventure Pickup",
		Description: "Lifted suspension, all-terrain tires, and a full underbody inspection.",
		ImageURL:    "/static/featured/pickup.jpg",
	},
}

var offeredServices = []OfferedService{
	{
		Name:        "Oil change",
		Description: "Full synthetic oil and filter replacement.",
		Price:       "from $45",
	},
	{
		Name:        "Brake inspection",
		Description: "Pads, discs, and fluid checked and reported.",
		Price:       "from $30",
	},
	{
		Name:        "Tire rotation",
		Description: "Rotation, balancing, and pressure calibration.",
		Price:       "from $25",
	},
	{
		Name:        "Full revision",
		Description: "Complete multi-point inspection with a written report.",
		Price:       "from $120",
	},
}

// maintenanceTips is keyed by vehicle type. Unknown types fall back to "general".
var maintenanceTips = map[string][]MaintenanceTip{
	"general": {
		{Title: "Check your oil monthly", Tip: "Low oil is the fastest way to turn a cheap service into an engine rebuild."},
		{Title: "Watch the tire pressure", Tip: "Underinflated tires wear faster and raise fuel consumption."},
		{Title: "Keep records", Tip: "A complete maintenance log raises resale value and catches patterns early."},
	},
	"car": {
		{Title: "Rotate tires every 10,000 km", Tip: "Even wear extends tire life and keeps handling predictable."},
		{Title: "Replace cabin filters yearly", Tip: "A clogged filter strains the blower motor and fogs windows."},
	},
	"motorcycle": {
		{Title: "Lubricate the chain", Tip: "Clean and lube the chain every 500 km, more often in the rain."},
		{Title: "Check brake pads often", Tip: "Motorcycle pads are small and wear much faster than car pads."},
	},
	"truck": {
		{Title: "Mind the load rating", Tip: "Chronic overloading wears suspension, brakes, and tires prematurely."},
		{Title: "Grease the fittings", Tip: "Chassis fittings need grease at every oil change interval."},
	},
}

// FeaturedVehicles returns the showcase entries.
func (s *ContentService) FeaturedVehicles() []FeaturedVehicle {
	return featuredVehicles
}

// OfferedServices returns the service catalog.
func (s *ContentService) OfferedServices() []OfferedService {
	return offeredServices
}

// MaintenanceTips returns tips for a vehicle type, falling back to the
// general set for unknown types.
func (s *ContentService) MaintenanceTips(vehicleType string) []MaintenanceTip {
	if tips, ok := maintenanceTips[vehicleType]; ok {
		return tips
	}
	return maintenanceTips["general"]
}
