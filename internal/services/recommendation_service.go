package services

import (
	"fmt"
	"strings"

	"mediroute/internal/config"
	"mediroute/internal/models"
	"mediroute/internal/utils"
	"mediroute/pkg/logger"
)

// referralHospitalPatterns identify large referral/teaching institutes whose
// names alone imply a broad specialty portfolio.
var referralHospitalPatterns = []string{"pgi", "aiims", "institute", "medical college"}

// broadSpecialtySet is assumed for referral hospitals when nothing better is
// stored for them.
var broadSpecialtySet = []string{"Cardiac", "Neuro", "Oncology", "Trauma", "Orthopedics", "Pediatric", "Respiratory"}

// defaultSpecialtySet is the floor: no facility is ever scored with an empty
// specialty list. Trauma is included because any hospital with an emergency
// room takes trauma cases.
var defaultSpecialtySet = []string{"General Medicine", "Trauma"}

// HospitalMatch is one scored candidate.
type HospitalMatch struct {
	Hospital       *models.Hospital `json:"hospital"`
	Specialties    []string         `json:"specialties"`
	MatchScore     float64          `json:"match_score"`
	DistanceMeters float64          `json:"distance_meters"`
	Reason         string           `json:"reason"`
}

// Recommendation pairs the highest-scoring candidate with the plain nearest
// one. Both nil when no facilities were supplied; they may be the same
// facility.
type Recommendation struct {
	Best    *HospitalMatch `json:"best"`
	Nearest *HospitalMatch `json:"nearest"`
}

type RecommendationService interface {
	Recommend(patientLat, patientLng float64, keyword string, hospitals []*models.Hospital) Recommendation
	ResolveSpecialties(hospital *models.Hospital) []string
}

type recommendationService struct {
	specialtySvc SpecialtyService
	cfg          *config.DispatchConfig
	logger       *logger.Logger
}

func NewRecommendationService(specialtySvc SpecialtyService, cfg *config.DispatchConfig, log *logger.Logger) RecommendationService {
	return &recommendationService{
		specialtySvc: specialtySvc,
		cfg:          cfg,
		logger:       log,
	}
}

// ResolveSpecialties applies the fallback chain: stored tags if present,
// else name heuristics, else the general default.
func (s *recommendationService) ResolveSpecialties(hospital *models.Hospital) []string {
	if len(hospital.Specialties) > 0 {
		return hospital.Specialties
	}

	name := strings.ToLower(hospital.Name)
	for _, pattern := range referralHospitalPatterns {
		if strings.Contains(name, pattern) {
			return broadSpecialtySet
		}
	}

	for _, specialty := range s.specialtySvc.Vocabulary() {
		for _, keyword := range s.specialtySvc.KeywordPhrases(specialty) {
			if strings.Contains(name, keyword) {
				return []string{specialty, "Trauma"}
			}
		}
	}

	return defaultSpecialtySet
}

func (s *recommendationService) Recommend(patientLat, patientLng float64, keyword string, hospitals []*models.Hospital) Recommendation {
	if len(hospitals) == 0 {
		return Recommendation{}
	}

	var best, nearest *HospitalMatch
	for _, hospital := range hospitals {
		match := s.scoreHospital(patientLat, patientLng, keyword, hospital)

		// Strict comparisons keep the first facility on ties.
		if best == nil || match.MatchScore > best.MatchScore {
			best = match
		}
		if nearest == nil || match.DistanceMeters < nearest.DistanceMeters {
			nearest = match
		}
	}

	if s.logger != nil {
		s.logger.LogDispatchDecision(keyword, map[string]interface{}{
			"candidates": len(hospitals),
			"best":       best.Hospital.Name,
			"best_score": best.MatchScore,
			"nearest":    nearest.Hospital.Name,
		})
	}

	return Recommendation{Best: best, Nearest: nearest}
}

func (s *recommendationService) scoreHospital(patientLat, patientLng float64, keyword string, hospital *models.Hospital) *HospitalMatch {
	specialties := s.ResolveSpecialties(hospital)
	distance := utils.CalculateDistanceMeters(patientLat, patientLng, hospital.Lat, hospital.Lng)
	text := strings.ToLower(hospital.Name + " " + hospital.Address)

	var score float64
	reason := "General hospital"

	exactMatch := keyword != "" && containsFold(specialties, keyword)
	textHits := 0
	if keyword != "" && !exactMatch {
		for _, phrase := range s.specialtySvc.KeywordPhrases(keyword) {
			if strings.Contains(text, phrase) {
				textHits++
			}
		}
	}
	traumaBonus := keyword != "" && !strings.EqualFold(keyword, "Trauma") && containsFold(specialties, "Trauma")

	if exactMatch {
		score += s.cfg.ExactMatchScore
	}
	score += float64(textHits) * s.cfg.TextMatchBonus
	if traumaBonus {
		score += s.cfg.TraumaCapabilityBonus
	}

	// Closer facilities score higher; the bonus vanishes beyond the ceiling.
	distanceBonus := s.cfg.DistanceBonusCeilKM - distance/1000
	if distanceBonus > 0 {
		score += distanceBonus
	}

	switch {
	case exactMatch:
		reason = fmt.Sprintf("Specialized in %s", keyword)
	case textHits > 0:
		reason = fmt.Sprintf("Name indicates %s capability", keyword)
	case traumaBonus:
		reason = "General trauma capability"
	}

	return &HospitalMatch{
		Hospital:       hospital,
		Specialties:    specialties,
		MatchScore:     score,
		DistanceMeters: distance,
		Reason:         reason,
	}
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}
