// Package matching ranks candidate general contractors for a project.
package matching

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/buildmarket/engine/internal/models"
)

// MaxRequests bounds how many GC requests a single matching run may emit.
const MaxRequests = 5

// Candidate pairs a contractor with its match score for a project.
type Candidate struct {
	Contractor models.Contractor
	Score      float64
}

// Scoring weights. Location dominates, then rating, then verification.
const (
	cityWeight     = 3.0
	stateWeight    = 2.0
	verifiedWeight = 1.5
)

// Rank scores contractors against the project and returns them best-first,
// capped at MaxRequests. Contractors whose specialties exclude the project
// type are dropped.
func Rank(p *models.Project, contractors []models.Contractor) []Candidate {
	out := make([]Candidate, 0, len(contractors))
	for _, c := range contractors {
		if !takesOn(c, p.ProjectType) {
			continue
		}
		out = append(out, Candidate{Contractor: c, Score: score(p, c)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > MaxRequests {
		out = out[:MaxRequests]
	}
	return out
}

func score(p *models.Project, c models.Contractor) float64 {
	s := c.Rating
	if equalFold(c.City, p.City) && c.City != "" {
		s += cityWeight
	} else if equalFold(c.State, p.State) && c.State != "" {
		s += stateWeight
	}
	if c.Verified {
		s += verifiedWeight
	}
	return s
}

// takesOn checks the contractor's specialties list. An empty or unreadable
// list means the contractor takes any project type.
func takesOn(c models.Contractor, t models.ProjectType) bool {
	if len(c.Specialties) == 0 {
		return true
	}
	var specs []string
	if err := json.Unmarshal(c.Specialties, &specs); err != nil || len(specs) == 0 {
		return true
	}
	for _, s := range specs {
		if equalFold(s, string(t)) {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
