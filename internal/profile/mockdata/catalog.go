package mockdata

// categoryProfile drives deterministic generation of plausible inventory
// figures for one category of mining consumables.
type categoryProfile struct {
	Name          string
	UnitOfMeasure string
	Descriptions  []string
	MinCost       float64 // unit cost band, local currency
	MaxCost       float64
	MinLeadDays   int
	MaxLeadDays   int
	MaxStock      int64
	MaxDailyUse   int64
}

// catalog covers the part families a mine site warehouse actually stocks.
// A code hashes into one of these; every figure in the generated profile is
// then drawn from the family's bands.
var catalog = []categoryProfile{
	{
		Name:          "Bearings",
		UnitOfMeasure: "EA",
		Descriptions: []string{
			"Deep groove ball bearing",
			"Spherical roller bearing",
			"Tapered roller bearing",
			"Pillow block bearing unit",
		},
		MinCost: 8, MaxCost: 950,
		MinLeadDays: 7, MaxLeadDays: 45,
		MaxStock: 400, MaxDailyUse: 4,
	},
	{
		Name:          "Pumps & Valves",
		UnitOfMeasure: "EA",
		Descriptions: []string{
			"Slurry pump impeller",
			"Knife gate valve",
			"Diaphragm pump repair kit",
			"Check valve DN100",
		},
		MinCost: 120, MaxCost: 18000,
		MinLeadDays: 21, MaxLeadDays: 120,
		MaxStock: 30, MaxDailyUse: 1,
	},
	{
		Name:          "Conveyor Components",
		UnitOfMeasure: "EA",
		Descriptions: []string{
			"Trough idler roller",
			"Return roller assembly",
			"Conveyor belt cleaner blade",
			"Drive pulley lagging segment",
		},
		MinCost: 35, MaxCost: 2400,
		MinLeadDays: 14, MaxLeadDays: 60,
		MaxStock: 250, MaxDailyUse: 6,
	},
	{
		Name:          "Drill Consumables",
		UnitOfMeasure: "EA",
		Descriptions: []string{
			"Retrac drill bit 89mm",
			"Extension rod T45",
			"Shank adapter COP 1838",
			"Coupling sleeve T38",
		},
		MinCost: 60, MaxCost: 1800,
		MinLeadDays: 10, MaxLeadDays: 35,
		MaxStock: 600, MaxDailyUse: 12,
	},
	{
		Name:          "Crusher Wear Parts",
		UnitOfMeasure: "EA",
		Descriptions: []string{
			"Jaw crusher cheek plate",
			"Cone crusher mantle",
			"Impact crusher blow bar",
			"Gyratory concave segment",
		},
		MinCost: 800, MaxCost: 42000,
		MinLeadDays: 45, MaxLeadDays: 180,
		MaxStock: 12, MaxDailyUse: 1,
	},
	{
		Name:          "Hydraulics",
		UnitOfMeasure: "EA",
		Descriptions: []string{
			"Hydraulic hose assembly 25mm",
			"Cylinder seal kit",
			"Piston pump cartridge",
			"Quick coupler half",
		},
		MinCost: 15, MaxCost: 5200,
		MinLeadDays: 5, MaxLeadDays: 40,
		MaxStock: 300, MaxDailyUse: 5,
	},
	{
		Name:          "Electrical",
		UnitOfMeasure: "EA",
		Descriptions: []string{
			"Soft starter 110kW",
			"VSD cooling fan",
			"Flameproof junction box",
			"Trailing cable repair kit",
		},
		MinCost: 25, MaxCost: 26000,
		MinLeadDays: 14, MaxLeadDays: 90,
		MaxStock: 60, MaxDailyUse: 2,
	},
	{
		Name:          "Ground Support",
		UnitOfMeasure: "EA",
		Descriptions: []string{
			"Friction rock bolt 2.4m",
			"Resin grouted rebar bolt",
			"Weld mesh sheet 3x2.4m",
			"Split set plate",
		},
		MinCost: 4, MaxCost: 120,
		MinLeadDays: 7, MaxLeadDays: 28,
		MaxStock: 8000, MaxDailyUse: 60,
	},
	{
		Name:          "Lubricants",
		UnitOfMeasure: "L",
		Descriptions: []string{
			"Open gear grease",
			"Hydraulic oil ISO VG 46",
			"Engine oil 15W-40",
			"EP2 multipurpose grease",
		},
		MinCost: 3, MaxCost: 28,
		MinLeadDays: 3, MaxLeadDays: 21,
		MaxStock: 12000, MaxDailyUse: 150,
	},
	{
		Name:          "Filtration",
		UnitOfMeasure: "EA",
		Descriptions: []string{
			"Engine air filter element",
			"Hydraulic return filter",
			"Fuel water separator element",
			"Cabin HEPA filter",
		},
		MinCost: 12, MaxCost: 420,
		MinLeadDays: 5, MaxLeadDays: 30,
		MaxStock: 900, MaxDailyUse: 10,
	},
}
