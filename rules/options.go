package rules

// Ordering decides what happens when a category cannot finish in one tick.
type Ordering string

const (
	// OrderingLegacy stops at the first category with unmet placements.
	OrderingLegacy Ordering = "legacy"
	// OrderingPriority keeps going with whatever budget is left.
	OrderingPriority Ordering = "priority"
)

// Options tune reconciliation. Loaded from the reconcile section of the
// config file.
type Options struct {
	Ordering             Ordering `yaml:"ordering"`
	IntervalTicks        int      `yaml:"interval_ticks"`
	MaxSitesPerTick      int      `yaml:"max_sites_per_tick"`
	SiteCapacity         int      `yaml:"site_capacity"`
	SiteCeilingRatio     float64  `yaml:"site_ceiling_ratio"`
	MaxDestroysPerTick   int      `yaml:"max_destroys_per_tick"`
	IntegrityHits        int      `yaml:"integrity_hits"`
	SpawnRebuildEnergy   int      `yaml:"spawn_rebuild_energy"`
	SpawnRebuildBuilders int      `yaml:"spawn_rebuild_builders"`
}

func DefaultOptions() Options {
	return Options{
		Ordering:             OrderingLegacy,
		IntervalTicks:        1,
		MaxSitesPerTick:      5,
		SiteCapacity:         100,
		SiteCeilingRatio:     0.9,
		MaxDestroysPerTick:   2,
		IntegrityHits:        300000,
		SpawnRebuildEnergy:   15000,
		SpawnRebuildBuilders: 2,
	}
}

// Validate clamps all options to their valid ranges.
func (o *Options) Validate() {
	if o.Ordering != OrderingPriority {
		o.Ordering = OrderingLegacy
	}
	o.IntervalTicks = clampInt(o.IntervalTicks, 1, 10000)
	o.MaxSitesPerTick = clampInt(o.MaxSitesPerTick, 0, 100)
	o.SiteCapacity = clampInt(o.SiteCapacity, 1, 1000)
	o.SiteCeilingRatio = clamp(o.SiteCeilingRatio, 0, 1)
	o.MaxDestroysPerTick = clampInt(o.MaxDestroysPerTick, 0, 50)
	o.IntegrityHits = max(o.IntegrityHits, 1)
	o.SpawnRebuildEnergy = max(o.SpawnRebuildEnergy, 0)
	o.SpawnRebuildBuilders = max(o.SpawnRebuildBuilders, 0)
}

// siteCeiling is the world-wide pending-site count placement must stay under.
func (o Options) siteCeiling() int {
	return int(float64(o.SiteCapacity) * o.SiteCeilingRatio)
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
