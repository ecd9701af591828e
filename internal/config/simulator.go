package config

import (
	"time"
)

type SimulatorConfig struct {
	Enabled      bool          `yaml:"enabled"`
	TickInterval time.Duration `yaml:"tick_interval"`

	// Bed/ICU seeding ranges per coarse hospital type.
	GovernmentBedsMin   int `yaml:"government_beds_min"`
	GovernmentBedsMax   int `yaml:"government_beds_max"`
	GovernmentICUMin    int `yaml:"government_icu_min"`
	GovernmentICUMax    int `yaml:"government_icu_max"`
	PrivateSuperBedsMin int `yaml:"private_super_beds_min"`
	PrivateSuperBedsMax int `yaml:"private_super_beds_max"`
	PrivateSuperICUMin  int `yaml:"private_super_icu_min"`
	PrivateSuperICUMax  int `yaml:"private_super_icu_max"`
	PrivateBedsMin      int `yaml:"private_beds_min"`
	PrivateBedsMax      int `yaml:"private_beds_max"`
	PrivateICUMin       int `yaml:"private_icu_min"`
	PrivateICUMax       int `yaml:"private_icu_max"`

	// Initial occupancy bands, in percent.
	BedOccupancyMin int `yaml:"bed_occupancy_min"`
	BedOccupancyMax int `yaml:"bed_occupancy_max"`
	ICUOccupancyMin int `yaml:"icu_occupancy_min"`
	ICUOccupancyMax int `yaml:"icu_occupancy_max"`

	// Upper bound on the incoming-ambulance counter.
	MaxIncoming int `yaml:"max_incoming"`
}

func loadSimulatorConfig() *SimulatorConfig {
	return &SimulatorConfig{
		Enabled:             getEnvAsBool("SIMULATOR_ENABLED", true),
		TickInterval:        getEnvAsDuration("SIMULATOR_TICK_INTERVAL", 15*time.Second),
		GovernmentBedsMin:   getEnvAsInt("SIMULATOR_GOVERNMENT_BEDS_MIN", 200),
		GovernmentBedsMax:   getEnvAsInt("SIMULATOR_GOVERNMENT_BEDS_MAX", 500),
		GovernmentICUMin:    getEnvAsInt("SIMULATOR_GOVERNMENT_ICU_MIN", 30),
		GovernmentICUMax:    getEnvAsInt("SIMULATOR_GOVERNMENT_ICU_MAX", 80),
		PrivateSuperBedsMin: getEnvAsInt("SIMULATOR_PRIVATE_SUPER_BEDS_MIN", 300),
		PrivateSuperBedsMax: getEnvAsInt("SIMULATOR_PRIVATE_SUPER_BEDS_MAX", 800),
		PrivateSuperICUMin:  getEnvAsInt("SIMULATOR_PRIVATE_SUPER_ICU_MIN", 50),
		PrivateSuperICUMax:  getEnvAsInt("SIMULATOR_PRIVATE_SUPER_ICU_MAX", 120),
		PrivateBedsMin:      getEnvAsInt("SIMULATOR_PRIVATE_BEDS_MIN", 50),
		PrivateBedsMax:      getEnvAsInt("SIMULATOR_PRIVATE_BEDS_MAX", 200),
		PrivateICUMin:       getEnvAsInt("SIMULATOR_PRIVATE_ICU_MIN", 10),
		PrivateICUMax:       getEnvAsInt("SIMULATOR_PRIVATE_ICU_MAX", 35),
		BedOccupancyMin:     getEnvAsInt("SIMULATOR_BED_OCCUPANCY_MIN", 40),
		BedOccupancyMax:     getEnvAsInt("SIMULATOR_BED_OCCUPANCY_MAX", 80),
		ICUOccupancyMin:     getEnvAsInt("SIMULATOR_ICU_OCCUPANCY_MIN", 30),
		ICUOccupancyMax:     getEnvAsInt("SIMULATOR_ICU_OCCUPANCY_MAX", 80),
		MaxIncoming:         getEnvAsInt("SIMULATOR_MAX_INCOMING", 10),
	}
}
