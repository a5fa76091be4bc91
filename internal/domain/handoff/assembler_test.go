package handoff

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nursehub/nursing-assistant/internal/platform/llm"
)

func sampleDraft() *llm.ReportDraft {
	return &llm.ReportDraft{
		Situation: &llm.SituationDraft{
			PatientName:   "Maria Santos",
			MRN:           "MRN-2204",
			Age:           63,
			Gender:        "female",
			RoomNumber:    "302B",
			AdmissionDate: "2026-08-20",
			Feedback:      []string{"BP trending down since 14:00"},
		},
		Background:     &llm.BackgroundDraft{Items: []string{"type 2 diabetes"}},
		Assessment:     &llm.AssessmentDraft{Items: []string{"stable, pain controlled"}},
		Recommendation: &llm.RecommendationDraft{Items: []string{"check vitals every 4 hours"}},
		ReportedBy:     &llm.ReportedByDraft{Nurse: "Eva Kim", LicenseNumber: "RN-7781"},
	}
}

func TestAssembleReport(t *testing.T) {
	usage := llm.Usage{PromptTokens: 900, CompletionTokens: 100, TotalTokens: 1000}
	doc := AssembleReport(sampleDraft(), usage, 0.00000015)

	if doc.SbarReport.Patient.Name != "Maria Santos" || doc.SbarReport.Patient.MRN != "MRN-2204" {
		t.Error("patient identity not carried over")
	}
	if len(doc.SbarReport.Situation.Feedback) != 1 {
		t.Error("situation feedback not carried over")
	}
	if doc.SbarReport.ReportedBy.LicenseNumber != "RN-7781" {
		t.Error("reported_by not carried over")
	}
	if doc.Usage.TotalTokens != 1000 {
		t.Errorf("usage total = %d", doc.Usage.TotalTokens)
	}
	want := 1000 * 0.00000015
	if doc.Usage.CostEstimate != want {
		t.Errorf("cost estimate = %v, want %v", doc.Usage.CostEstimate, want)
	}
}

func TestAssembleReportDeterministic(t *testing.T) {
	usage := llm.Usage{TotalTokens: 42}
	a := AssembleReport(sampleDraft(), usage, 0.001)
	b := AssembleReport(sampleDraft(), usage, 0.001)

	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	if string(aj) != string(bj) {
		t.Error("same draft should assemble to identical documents")
	}
}

func TestAssembleReportNilListsSerializeAsEmptyArrays(t *testing.T) {
	draft := sampleDraft()
	draft.Situation.Feedback = nil
	draft.Background.Items = nil

	doc := AssembleReport(draft, llm.Usage{}, 0)
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "null") {
		t.Errorf("serialized report carries JSON null: %s", data)
	}
}

func TestAssembleReportShape(t *testing.T) {
	doc := AssembleReport(sampleDraft(), llm.Usage{TotalTokens: 10}, 0.01)
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["sbar_report"]; !ok {
		t.Error("serialized document must be rooted at sbar_report")
	}
	if _, ok := decoded["usage"]; !ok {
		t.Error("serialized document must carry usage")
	}
}
