package config

// DispatchConfig carries the hospital-recommendation scoring knobs. The
// defaults reproduce the tuning the dispatch desks were calibrated against;
// they are heuristics, so they stay overridable without a code change.
type DispatchConfig struct {
	ExactMatchScore       float64 `yaml:"exact_match_score"`
	TextMatchBonus        float64 `yaml:"text_match_bonus"`
	TraumaCapabilityBonus float64 `yaml:"trauma_capability_bonus"`
	DistanceBonusCeilKM   float64 `yaml:"distance_bonus_ceil_km"`

	// Specialty inference weights and cutoff.
	FacilityTextWeight   int `yaml:"facility_text_weight"`
	UpdateRecordWeight   int `yaml:"update_record_weight"`
	SpecialtyScoreCutoff int `yaml:"specialty_score_cutoff"`
}

func loadDispatchConfig() *DispatchConfig {
	return &DispatchConfig{
		ExactMatchScore:       getEnvAsFloat64("DISPATCH_EXACT_MATCH_SCORE", 100),
		TextMatchBonus:        getEnvAsFloat64("DISPATCH_TEXT_MATCH_BONUS", 20),
		TraumaCapabilityBonus: getEnvAsFloat64("DISPATCH_TRAUMA_BONUS", 10),
		DistanceBonusCeilKM:   getEnvAsFloat64("DISPATCH_DISTANCE_BONUS_CEIL_KM", 50),
		FacilityTextWeight:    getEnvAsInt("SPECIALTY_FACILITY_TEXT_WEIGHT", 2),
		UpdateRecordWeight:    getEnvAsInt("SPECIALTY_UPDATE_RECORD_WEIGHT", 3),
		SpecialtyScoreCutoff:  getEnvAsInt("SPECIALTY_SCORE_CUTOFF", 2),
	}
}
