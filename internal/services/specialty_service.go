package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"mediroute/internal/config"
	"mediroute/internal/models"
	"mediroute/internal/repositories/interfaces"
	"mediroute/pkg/logger"
)

// Specialty vocabulary. Each specialty maps to the lowercase keywords that
// count as evidence for it in facility text and update-record payloads.
var specialtyKeywords = map[string][]string{
	"Cardiac":     {"cardiac", "cardio", "heart", "cardiology", "cath lab", "angioplasty"},
	"Oncology":    {"oncology", "cancer", "tumor", "tumour", "chemo", "radiotherapy"},
	"Neuro":       {"neuro", "neurology", "neurosurgery", "stroke", "brain", "spine"},
	"Trauma":      {"trauma", "accident", "casualty", "fracture", "burn", "critical care"},
	"Maternity":   {"maternity", "obstetric", "gynae", "gynec", "labour", "delivery", "natal"},
	"Orthopedics": {"ortho", "orthopedic", "orthopaedic", "joint", "knee", "hip"},
	"Pediatric":   {"pediatric", "paediatric", "children", "child", "neonatal", "nicu"},
	"Respiratory": {"respiratory", "pulmo", "lung", "chest", "asthma", "ventilator"},
}

// SpecialtyInference is the outcome of keyword matching for one facility.
// Evidence strings exist for audit display only; they carry no score.
type SpecialtyInference struct {
	Specialties []string `json:"specialties"`
	Evidence    []string `json:"evidence"`
}

type SpecialtyService interface {
	// InferSpecialties scores the vocabulary against a facility's text and
	// its update records. Pure: identical inputs yield identical output.
	InferSpecialties(facilityText string, updates []*models.HospitalUpdate) SpecialtyInference

	// KeywordPhrases exposes the phrase list for one specialty (used by the
	// recommender's text-bonus scoring).
	KeywordPhrases(specialty string) []string

	// Vocabulary lists the known specialties in stable order.
	Vocabulary() []string

	// ReconcileHospital recomputes and persists one hospital's derived
	// specialty tags from its current text and recent updates.
	ReconcileHospital(ctx context.Context, hospital *models.Hospital) error

	// ReconcileAll runs the reconciliation job across the directory.
	ReconcileAll(ctx context.Context) error
}

type specialtyService struct {
	hospitalRepo interfaces.HospitalRepository
	updateRepo   interfaces.HospitalUpdateRepository
	cfg          *config.DispatchConfig
	logger       *logger.Logger
}

func NewSpecialtyService(
	hospitalRepo interfaces.HospitalRepository,
	updateRepo interfaces.HospitalUpdateRepository,
	cfg *config.DispatchConfig,
	log *logger.Logger,
) SpecialtyService {
	return &specialtyService{
		hospitalRepo: hospitalRepo,
		updateRepo:   updateRepo,
		cfg:          cfg,
		logger:       log,
	}
}

func (s *specialtyService) Vocabulary() []string {
	names := make([]string, 0, len(specialtyKeywords))
	for name := range specialtyKeywords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *specialtyService) KeywordPhrases(specialty string) []string {
	return specialtyKeywords[specialty]
}

func (s *specialtyService) InferSpecialties(facilityText string, updates []*models.HospitalUpdate) SpecialtyInference {
	text := strings.ToLower(facilityText)

	// Serialize each update payload once; keyword search runs over the raw
	// JSON so nested fields count as evidence too.
	payloads := make([]string, 0, len(updates))
	for _, u := range updates {
		if u == nil || len(u.Payload) == 0 {
			continue
		}
		raw, err := json.Marshal(u.Payload)
		if err != nil {
			continue
		}
		payloads = append(payloads, strings.ToLower(string(raw)))
	}

	inference := SpecialtyInference{
		Specialties: []string{},
		Evidence:    []string{},
	}

	for _, specialty := range s.Vocabulary() {
		score := 0
		for _, keyword := range specialtyKeywords[specialty] {
			if text != "" && strings.Contains(text, keyword) {
				score += s.cfg.FacilityTextWeight
				inference.Evidence = append(inference.Evidence,
					fmt.Sprintf("%s: %q in facility text", specialty, keyword))
			}
			for _, payload := range payloads {
				if strings.Contains(payload, keyword) {
					score += s.cfg.UpdateRecordWeight
					inference.Evidence = append(inference.Evidence,
						fmt.Sprintf("%s: %q in update record", specialty, keyword))
				}
			}
		}

		if score >= s.cfg.SpecialtyScoreCutoff {
			inference.Specialties = append(inference.Specialties, specialty)
		}
	}

	return inference
}

func (s *specialtyService) ReconcileHospital(ctx context.Context, hospital *models.Hospital) error {
	if hospital.SpecialtiesEdited {
		return nil
	}

	updates, err := s.updateRepo.GetByHospital(ctx, hospital.ID, 50)
	if err != nil {
		return fmt.Errorf("failed to load updates for hospital %s: %w", hospital.ID.Hex(), err)
	}

	inference := s.InferSpecialties(hospital.Name+" "+hospital.Address, updates)
	if err := s.hospitalRepo.UpdateSpecialties(ctx, hospital.ID, inference.Specialties); err != nil {
		return err
	}

	s.logger.WithHospitalID(hospital.ID).
		WithField("specialties", inference.Specialties).
		Debug("Hospital specialties reconciled")

	return nil
}

func (s *specialtyService) ReconcileAll(ctx context.Context) error {
	hospitals, err := s.hospitalRepo.GetAllUnpaged(ctx)
	if err != nil {
		return fmt.Errorf("failed to load hospital directory: %w", err)
	}

	start := time.Now()
	failed := 0
	for _, hospital := range hospitals {
		if err := s.ReconcileHospital(ctx, hospital); err != nil {
			failed++
			s.logger.WithHospitalID(hospital.ID).WithError(err).Warn("Specialty reconciliation failed")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"hospitals": len(hospitals),
		"failed":    failed,
		"took":      time.Since(start).String(),
	}).Info("Specialty reconciliation pass finished")

	return nil
}
