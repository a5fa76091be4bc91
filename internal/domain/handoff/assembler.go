package handoff

import (
	"github.com/nursehub/nursing-assistant/internal/platform/llm"
)

// AssembleReport turns a validated provider draft plus its usage accounting
// into the persisted report document. Pure: same inputs, same output. Nil
// list fields become empty slices so the serialized report never carries
// JSON nulls.
func AssembleReport(draft *llm.ReportDraft, usage llm.Usage, pricePerToken float64) *ReportDocument {
	return &ReportDocument{
		SbarReport: SbarReport{
			Patient: PatientIdentity{
				Name:          draft.Situation.PatientName,
				MRN:           draft.Situation.MRN,
				Age:           draft.Situation.Age,
				Gender:        draft.Situation.Gender,
				RoomNumber:    draft.Situation.RoomNumber,
				AdmissionDate: draft.Situation.AdmissionDate,
			},
			Situation:      Situation{Feedback: emptyIfNil(draft.Situation.Feedback)},
			Background:     emptyIfNil(draft.Background.Items),
			Assessment:     emptyIfNil(draft.Assessment.Items),
			Recommendation: emptyIfNil(draft.Recommendation.Items),
			ReportedBy: ReportedBy{
				Nurse:         draft.ReportedBy.Nurse,
				LicenseNumber: draft.ReportedBy.LicenseNumber,
			},
		},
		Usage: UsageRecord{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
			CostEstimate:     float64(usage.TotalTokens) * pricePerToken,
		},
	}
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
