package scoring

import (
	"sort"

	"github.com/spboyer/panelscore/internal/models"
)

// DefaultModules returns the built-in classifier configurations for the
// keyword-classification pipeline. A fresh map is returned on every call.
func DefaultModules() map[string]models.ClassifierConfig {
	ownBrand := models.OutcomeLabels{TP: "OB", TN: "Null", FP: "Null→OB", FN: "OB→Null"}
	competitor := models.OutcomeLabels{TP: "CB", TN: "Null", FP: "Null→CB", FN: "CB→Null"}
	nonBranded := models.OutcomeLabels{TP: "NB", TN: "Branded", FP: "Brand→NB", FN: "NB→Brand"}

	modules := []models.ClassifierConfig{
		{ID: "m02", Name: "Classify Own Brand Keywords", Folder: "M02_ClassifyOwnBrandKeywords", Fields: []string{"branding_scope_1"}, Labels: ownBrand},
		{ID: "m02b", Name: "Classify Own Brand (Path B)", Folder: "M02B_ClassifyOwnBrandKeywords_PathB", Fields: []string{"branding_scope_1"}, Labels: ownBrand},
		{ID: "m04", Name: "Classify Competitor Keywords", Folder: "M04_ClassifyCompetitorBrandKeywords", Fields: []string{"branding_scope_2"}, Labels: competitor},
		{ID: "m04b", Name: "Classify Competitor (Path B)", Folder: "M04B_ClassifyCompetitorBrandKeywords_PathB", Fields: []string{"branding_scope_2"}, Labels: competitor},
		{ID: "m05", Name: "Classify Non-Branded Keywords", Folder: "M05_ClassifyNonBrandedKeywords", Fields: []string{"branding_scope_3"}, Labels: nonBranded},
		{ID: "m05b", Name: "Classify Non-Branded (Path B)", Folder: "M05B_ClassifyNonBrandedKeywords_PathB", Fields: []string{"branding_scope_3"}, Labels: nonBranded},
		{
			ID:               "m12",
			Name:             "Hard Constraint Violation Check",
			Folder:           "M12_HardConstraintViolationCheck",
			ExpectedFields:   []string{"relevancy"},
			OutputFields:     []string{"violates_constraint"},
			PositiveExpected: "N",
			PositiveOutput:   true,
			NullIsNegative:   true,
			Labels:           models.OutcomeLabels{TP: "Violates", TN: "OK", FP: "OK→Violates", FN: "Violates→OK"},
		},
		{
			ID:             "m13",
			Name:           "Product Type Check",
			Folder:         "M13_ProductTypeCheck",
			ExpectedFields: []string{"same_type"},
			OutputFields:   []string{"same_product_type", "same_type"},
			Labels:         models.OutcomeLabels{TP: "Match", TN: "Diff", FP: "Diff→Match", FN: "Match→Diff"},
		},
		{
			ID:               "m14",
			Name:             "Primary Use Check (Relevancy)",
			Folder:           "M14_PrimaryUseCheckSameType",
			Fields:           []string{"relevancy"},
			PositiveExpected: "R",
			PositiveOutput:   "R",
			Labels:           models.OutcomeLabels{TP: "R", TN: "N", FP: "N→R", FN: "R→N"},
		},
		{
			ID:               "m15",
			Name:             "Substitute Check (Relevancy)",
			Folder:           "M15_SubstituteCheck",
			Fields:           []string{"relevancy"},
			PositiveExpected: "S",
			PositiveOutput:   "S",
			NullIsNegative:   true,
			Labels:           models.OutcomeLabels{TP: "S", TN: "not-S", FP: "null→S", FN: "S→not-S"},
		},
		{
			ID:               "m16",
			Name:             "Complementary Check (Relevancy)",
			Folder:           "M16_ComplementaryCheck",
			Fields:           []string{"relevancy"},
			PositiveExpected: "C",
			PositiveOutput:   "C",
			Labels:           models.OutcomeLabels{TP: "C", TN: "N", FP: "N→C", FN: "C→N"},
		},
		{
			ID:      "m12b",
			Name:    "Relevancy Classification",
			Folder:  "M12B_CombinedClassification",
			Kind:    models.KindMulticlass,
			Fields:  []string{"relevancy"},
			Classes: []string{"R", "N", "S", "C"},
		},
	}

	out := make(map[string]models.ClassifierConfig, len(modules))
	for _, m := range modules {
		if m.Kind == "" {
			m.Kind = models.KindBinary
		}
		out[m.ID] = m
	}
	return out
}

// ModuleIDs returns the keys of modules in sorted order.
func ModuleIDs(modules map[string]models.ClassifierConfig) []string {
	ids := make([]string, 0, len(modules))
	for id := range modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
