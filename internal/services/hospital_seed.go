package services

type hospitalSeed struct {
	Name    string
	Lat     float64
	Lng     float64
	Address string
}

// Built-in directory for the Chandigarh tricity pilot region. Live records
// created through the API take precedence by name; these only fill gaps.
var hospitalDirectorySeed = []hospitalSeed{
	{
		Name:    "PGIMER Chandigarh",
		Lat:     30.7649,
		Lng:     76.7764,
		Address: "Sector 12, Chandigarh",
	},
	{
		Name:    "Government Multi Specialty Hospital Sector 16",
		Lat:     30.7448,
		Lng:     76.7793,
		Address: "Sector 16, Chandigarh",
	},
	{
		Name:    "GMCH Sector 32",
		Lat:     30.7089,
		Lng:     76.7766,
		Address: "Sector 32, Chandigarh",
	},
	{
		Name:    "Fortis Hospital Mohali",
		Lat:     30.7270,
		Lng:     76.7156,
		Address: "Sector 62, Phase 8, Mohali",
	},
	{
		Name:    "Max Super Speciality Hospital Mohali",
		Lat:     30.6797,
		Lng:     76.7221,
		Address: "Phase 6, Mohali",
	},
	{
		Name:    "Alchemist Hospital Panchkula",
		Lat:     30.6942,
		Lng:     76.8606,
		Address: "Sector 21, Panchkula",
	},
	{
		Name:    "Paras Hospital Panchkula",
		Lat:     30.6510,
		Lng:     76.8410,
		Address: "Sector 22, Panchkula",
	},
	{
		Name:    "Civil Hospital Manimajra",
		Lat:     30.7232,
		Lng:     76.8244,
		Address: "Manimajra, Chandigarh",
	},
	{
		Name:    "Healing Hospital Chandigarh",
		Lat:     30.7196,
		Lng:     76.8052,
		Address: "Sector 34-A, Chandigarh",
	},
	{
		Name:    "Chaitanya Hospital Chandigarh",
		Lat:     30.7254,
		Lng:     76.7614,
		Address: "Sector 44-C, Chandigarh",
	},
}
