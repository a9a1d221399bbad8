package recommend

import (
	"fmt"
	"strings"

	"github.com/spboyer/modeleval/internal/models"
)

// Role tags a model for preference and complexity bonuses.
type Role string

const (
	RoleFast       Role = "fast"
	RoleDetailed   Role = "detailed"
	RoleStructured Role = "structured"
)

// RequiredRoles must all be assigned in a Registry.
var RequiredRoles = []Role{RoleFast, RoleDetailed, RoleStructured}

// ModelProfile describes a candidate model.
type ModelProfile struct {
	Name           string
	AvgLengthWords int
	Speed          models.SpeedTier
	Style          string
	Strengths      []string
}

// Registry is the ordered set of candidate models plus the role map.
// Registration order is the tie-break order for ranking.
type Registry struct {
	profiles []ModelProfile
	index    map[string]int
	roles    map[Role]string
}

// NewRegistry validates profiles and roles. An empty registry, or a required
// role that is unassigned or names an unregistered model, is reported as
// ErrNoCandidateModels.
func NewRegistry(profiles []ModelProfile, roles map[Role]string) (*Registry, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("model registry is empty: %w", models.ErrNoCandidateModels)
	}

	r := &Registry{
		profiles: make([]ModelProfile, 0, len(profiles)),
		index:    make(map[string]int, len(profiles)),
		roles:    make(map[Role]string, len(roles)),
	}
	for _, p := range profiles {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("model with empty name: %w", models.ErrInvalidInput)
		}
		if _, dup := r.index[name]; dup {
			return nil, fmt.Errorf("model %q registered twice: %w", name, models.ErrInvalidInput)
		}
		p.Name = name
		if p.Speed == "" {
			p.Speed = models.SpeedMedium
		}
		p.Strengths = append([]string(nil), p.Strengths...)
		r.index[name] = len(r.profiles)
		r.profiles = append(r.profiles, p)
	}

	for role, model := range roles {
		if _, ok := r.index[model]; !ok {
			return nil, fmt.Errorf("role %q references unregistered model %q: %w", role, model, models.ErrNoCandidateModels)
		}
		r.roles[role] = model
	}
	for _, role := range RequiredRoles {
		if _, ok := r.roles[role]; !ok {
			return nil, fmt.Errorf("role %q has no assigned model: %w", role, models.ErrNoCandidateModels)
		}
	}
	return r, nil
}

// DefaultRegistry returns the four reference models and their roles.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultProfiles(), DefaultRoles())
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultProfiles lists the built-in model profiles.
func DefaultProfiles() []ModelProfile {
	return []ModelProfile{
		{
			Name: "GPT2", AvgLengthWords: 180, Speed: models.SpeedMedium,
			Style:     "Detailed and comprehensive",
			Strengths: []string{"comprehensive analysis", "detailed explanations", "versatile reasoning"},
		},
		{
			Name: "DistilGPT2", AvgLengthWords: 120, Speed: models.SpeedFast,
			Style:     "Concise and direct",
			Strengths: []string{"quick responses", "concise summaries", "efficient processing"},
		},
		{
			Name: "T5-Small", AvgLengthWords: 150, Speed: models.SpeedMedium,
			Style:     "Well-structured and organized",
			Strengths: []string{"structured output", "text transformation", "clear organization"},
		},
		{
			Name: "BERT-Base", AvgLengthWords: 140, Speed: models.SpeedSlow,
			Style:     "Context-aware and precise",
			Strengths: []string{"context understanding", "semantic analysis", "nuanced responses"},
		},
	}
}

// DefaultRoles assigns the built-in profiles to roles.
func DefaultRoles() map[Role]string {
	return map[Role]string{
		RoleFast:       "DistilGPT2",
		RoleDetailed:   "GPT2",
		RoleStructured: "T5-Small",
	}
}

// Names returns model names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		out[i] = p.Name
	}
	return out
}

// Len returns the number of registered models.
func (r *Registry) Len() int { return len(r.profiles) }

// Profile returns the profile registered under name.
func (r *Registry) Profile(name string) (ModelProfile, bool) {
	i, ok := r.index[name]
	if !ok {
		return ModelProfile{}, false
	}
	p := r.profiles[i]
	p.Strengths = append([]string(nil), p.Strengths...)
	return p, true
}

// RoleModel returns the model assigned to role.
func (r *Registry) RoleModel(role Role) string {
	return r.roles[role]
}

// RolesOf returns the required roles held by model, in RequiredRoles order.
func (r *Registry) RolesOf(model string) []Role {
	var out []Role
	for _, role := range RequiredRoles {
		if r.roles[role] == model {
			out = append(out, role)
		}
	}
	return out
}
