package domain

// User bundles everything the catalog knows about one simulated user.
type User struct {
	Profile  UserProfile    `json:"profile"`
	History  []HistoryItem  `json:"history"`
	Exposure []ExposureItem `json:"exposure"`

	// ModelOutputs holds pre-computed results keyed by backend cache key.
	ModelOutputs map[string]SimulationResult `json:"modelOutputs,omitempty"`

	// GroundTruth is the label the real user chose, if known.
	GroundTruth string `json:"groundTruth,omitempty"`
}

func (u *User) ID() string { return u.Profile.ID }

// CachedOutput returns the pre-computed result stored under key.
func (u *User) CachedOutput(key string) (SimulationResult, bool) {
	if u == nil || u.ModelOutputs == nil {
		return SimulationResult{}, false
	}
	r, ok := u.ModelOutputs[key]
	return r, ok
}

// ExposureLabels returns the labels assigned to the exposure list, in order.
func (u *User) ExposureLabels() []string {
	labels := make([]string, len(u.Exposure))
	for i := range u.Exposure {
		labels[i] = Label(i)
	}
	return labels
}
