package workflow

import "github.com/buildmarket/engine/internal/models"

// stageTemplate is one entry of a default construction breakdown. Weight is
// the share of the accepted budget allocated to the stage's estimated cost.
type stageTemplate struct {
	name     string
	weight   float64
	duration string
}

var defaultBreakdowns = map[models.ProjectType][]stageTemplate{
	models.ProjectTypeHomebuilding: {
		{"Foundation", 0.20, "4-6 weeks"},
		{"Framing", 0.25, "6-8 weeks"},
		{"Roofing & Exterior", 0.20, "4-5 weeks"},
		{"Mechanical & Interior", 0.25, "8-10 weeks"},
		{"Finishing", 0.10, "3-4 weeks"},
	},
	models.ProjectTypeRenovation: {
		{"Demolition & Prep", 0.25, "1-2 weeks"},
		{"Construction", 0.50, "4-6 weeks"},
		{"Finishing", 0.25, "2-3 weeks"},
	},
	models.ProjectTypeInteriorDesign: {
		{"Design & Procurement", 0.40, "2-4 weeks"},
		{"Installation", 0.40, "2-3 weeks"},
		{"Styling & Handover", 0.20, "1 week"},
	},
}

// DefaultBreakdown builds the stage set created at GC acceptance when the
// contractor does not supply an explicit one. Estimated costs split the
// accepted budget by fixed weights; the last stage absorbs rounding drift.
func DefaultBreakdown(projectType models.ProjectType, budget float64) []models.Stage {
	tmpl, ok := defaultBreakdowns[projectType]
	if !ok {
		tmpl = defaultBreakdowns[models.ProjectTypeRenovation]
	}
	stages := make([]models.Stage, 0, len(tmpl))
	allocated := 0.0
	for i, t := range tmpl {
		cost := budget * t.weight
		if i == len(tmpl)-1 {
			cost = budget - allocated
		}
		allocated += cost
		stages = append(stages, models.Stage{
			Seq:               i + 1,
			Name:              t.name,
			Status:            models.StageNotStarted,
			EstimatedCost:     cost,
			EstimatedDuration: t.duration,
		})
	}
	return stages
}
