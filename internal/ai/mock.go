package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/plaum/appointment-backend/internal/models"
	"github.com/plaum/appointment-backend/internal/utils"
)

// Mock fabricates deterministic, contract-shaped responses from a hash of
// the input. For local development and tests without a Gemini key.
type Mock struct {
	ModelVersion string
}

var (
	mockDepartments = []string{"dentist", "cardiology", "dermatologist", "physiotherapy", "gp"}
	mockDatePhrases = []string{"tomorrow", "next Friday", "this Monday", "day after tomorrow"}
	mockTimePhrases = []string{"3pm", "10:30 am", "18:00", "9 am"}
)

func (m Mock) ExtractEntities(ctx context.Context, req ExtractRequest) (models.EntityExtraction, error) {
	h := utils.HashStringToUint64(req.RawText)

	department := mockDepartments[h%uint64(len(mockDepartments))]
	datePhrase := mockDatePhrases[(h/7)%uint64(len(mockDatePhrases))]
	timePhrase := mockTimePhrases[(h/13)%uint64(len(mockTimePhrases))]
	confidence := 0.8 + float64(h%15)/100

	return models.EntityExtraction{
		Entities: models.Entities{
			DatePhrase: &datePhrase,
			TimePhrase: &timePhrase,
			Department: &department,
		},
		Confidence: confidence,
	}, nil
}

func (m Mock) Normalize(ctx context.Context, req NormalizeRequest) (models.Normalization, error) {
	ref, err := time.Parse("2006-01-02", req.ReferenceDate)
	if err != nil {
		return models.Normalization{}, fmt.Errorf("mock normalize: bad reference date: %w", err)
	}
	h := utils.HashStringToUint64(req.ReferenceDate + "|" + derefOr(req.Entities.DatePhrase, ""))

	date := ref.AddDate(0, 0, int(h%7)+1).Format("2006-01-02")
	clock := fmt.Sprintf("%02d:%02d", 9+(h/3)%9, 15*((h/11)%4))
	tz := req.Timezone

	return models.Normalization{
		Normalized: models.Normalized{Date: &date, Time: &clock, TZ: &tz},
		Confidence: 0.9,
	}, nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

var _ Adapter = Mock{}
