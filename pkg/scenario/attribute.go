package scenario

// AttributeDef defines a bounded numeric player statistic.
type AttributeDef struct {
	Name    string `json:"name"`
	Min     int    `json:"min"`
	Max     int    `json:"max"`
	Default int    `json:"default,omitempty"`

	// Thresholds past which a status description is shown.
	OverMax      int    `json:"over_max,omitempty"`
	OverMaxDesc  string `json:"over_max_desc,omitempty"`
	UnderMin     int    `json:"under_min,omitempty"`
	UnderMinDesc string `json:"under_min_desc,omitempty"`

	Invisible bool `json:"invisible,omitempty"`
}

// Clamp limits v to [Min, Max].
func (d AttributeDef) Clamp(v int) int {
	return min(max(v, d.Min), d.Max)
}
