package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles for the conference hub.
// Supports gradual rollout by teacher, school targeting, and time windows.
//
// Guiding principle: the rule-based briefing is always available; everything
// layered on top of it (AI narration, caches, alerts) can be turned off
// without breaking meeting preparation.
type FeatureFlags struct {
	mu sync.RWMutex

	// Core features
	features map[string]*Feature

	// Override rules (for testing/debugging)
	teacherOverrides map[string]map[string]bool // teacherID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Teachers are assigned based on hash of their ID
	RolloutPercent int

	// School targeting (e.g., "north-campus")
	// Empty means all schools
	TargetSchools []string

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time

	// A/B test variant (for experiments)
	Variants []string
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	TeacherID string // Teacher identifier (TEACH_XXXXXX)

	School  string // School or campus identifier
	IsAdmin bool   // Is administrator
}

// Predefined feature flag names.
const (
	// === Briefing Features ===
	FeatureBriefingCache   = "briefing.cache"      // Cache generated briefings in Redis
	FeatureBriefingWarming = "briefing.warming"    // Background briefing regeneration
	FeatureAgendaDownload  = "briefing.agenda"     // Plain-text agenda download
	FeatureAISummary       = "briefing.ai_summary" // Gemini-written meeting summaries

	// === Alert Features ===
	FeatureAtRiskAlerts     = "alerts.at_risk"   // Nightly at-risk detection alerts
	FeatureLowScoreAlerts   = "alerts.low_score" // Alert on a failing assessment
	FeatureMeetingReminders = "alerts.reminders" // Meeting reminder notifications

	// === Overview Features ===
	FeatureGradeOverview = "overview.grade" // Grade overview endpoint
	FeatureOverviewCache = "overview.cache" // Cache grade snapshots in Redis

	// === Experimental Features ===
	FeatureExperimentalParentPortal = "experimental.parent_portal" // Parent-facing summaries
	FeatureExperimentalBulkPrep     = "experimental.bulk_prep"     // Prepare a whole grade at once
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:         make(map[string]*Feature),
		teacherOverrides: make(map[string]map[string]bool),
	}

	// Initialize all features with defaults
	ff.initializeDefaults()

	// Load overrides from environment
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	// Briefing features - core of the product, enabled by default
	ff.features[FeatureBriefingCache] = &Feature{
		Name:           FeatureBriefingCache,
		Description:    "Cache generated briefings in Redis",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureBriefingWarming] = &Feature{
		Name:           FeatureBriefingWarming,
		Description:    "Regenerate cached briefings in the background",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureAgendaDownload] = &Feature{
		Name:           FeatureAgendaDownload,
		Description:    "Plain-text meeting agenda download",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureAISummary] = &Feature{
		Name:           FeatureAISummary,
		Description:    "AI-written meeting summaries",
		Enabled:        true,
		RolloutPercent: 50, // Gradual rollout, quota-bound
	}

	// Alert features - tuned to inform without flooding inboxes
	ff.features[FeatureAtRiskAlerts] = &Feature{
		Name:           FeatureAtRiskAlerts,
		Description:    "Alert teachers about at-risk students",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureLowScoreAlerts] = &Feature{
		Name:           FeatureLowScoreAlerts,
		Description:    "Alert on a failing assessment score",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureMeetingReminders] = &Feature{
		Name:           FeatureMeetingReminders,
		Description:    "Remind teachers about upcoming meetings",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Overview features
	ff.features[FeatureGradeOverview] = &Feature{
		Name:           FeatureGradeOverview,
		Description:    "Grade-level overview endpoint",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureOverviewCache] = &Feature{
		Name:           FeatureOverviewCache,
		Description:    "Cache grade snapshots in Redis",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Experimental features - disabled by default
	ff.features[FeatureExperimentalParentPortal] = &Feature{
		Name:           FeatureExperimentalParentPortal,
		Description:    "Parent-facing meeting summaries",
		Enabled:        false,
		RolloutPercent: 0,
	}

	ff.features[FeatureExperimentalBulkPrep] = &Feature{
		Name:           FeatureExperimentalBulkPrep,
		Description:    "Prepare briefings for a whole grade at once",
		Enabled:        false,
		RolloutPercent: 0,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_BRIEFING_AI_SUMMARY=true
// Example: FEATURE_ALERTS_AT_RISK=50 (50% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			// Try parsing as boolean
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
				if b {
					feature.RolloutPercent = 100
				} else {
					feature.RolloutPercent = 0
				}
				continue
			}

			// Try parsing as percentage
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				feature.Enabled = p > 0
				feature.RolloutPercent = p
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "briefing.ai_summary" -> "FEATURE_BRIEFING_AI_SUMMARY"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check teacher overrides first
	if ctx != nil && ctx.TeacherID != "" {
		if overrides, ok := ff.teacherOverrides[ctx.TeacherID]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	// Admin users get all features
	if ctx != nil && ctx.IsAdmin {
		return true
	}

	// Check if feature is enabled at all
	if !feature.Enabled {
		return false
	}

	// Check time-based activation
	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	// Check school targeting
	if len(feature.TargetSchools) > 0 && ctx != nil && ctx.School != "" {
		schoolMatch := false
		for _, s := range feature.TargetSchools {
			if s == ctx.School {
				schoolMatch = true
				break
			}
		}
		if !schoolMatch {
			return false
		}
	}

	// Check rollout percentage
	if feature.RolloutPercent < 100 && ctx != nil && ctx.TeacherID != "" {
		return ff.isInRollout(ctx.TeacherID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if a teacher is in the rollout percentage.
// Uses consistent hashing so teachers stay in their bucket.
func (ff *FeatureFlags) isInRollout(teacherID, featureName string, percent int) bool {
	// Create a consistent hash for this teacher+feature combination
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(teacherID))
	hash := h.Sum32()

	// Map to 0-99 range
	bucket := int(hash % 100)

	return bucket < percent
}

// GetVariant returns the A/B test variant for a teacher.
// Returns empty string if no variants defined or feature disabled.
func (ff *FeatureFlags) GetVariant(featureName string, ctx *FeatureContext) string {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	feature, ok := ff.features[featureName]
	if !ok || !ff.IsEnabled(featureName, ctx) {
		return ""
	}

	if len(feature.Variants) == 0 {
		return ""
	}

	// Use consistent hashing to assign variant
	h := fnv.New32a()
	h.Write([]byte(featureName + "_variant"))
	h.Write([]byte(ctx.TeacherID))
	hash := h.Sum32()

	variantIndex := int(hash % uint32(len(feature.Variants)))
	return feature.Variants[variantIndex]
}

// SetTeacherOverride sets a feature override for a specific teacher.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetTeacherOverride(teacherID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.teacherOverrides[teacherID]; !ok {
		ff.teacherOverrides[teacherID] = make(map[string]bool)
	}
	ff.teacherOverrides[teacherID][featureName] = enabled
}

// ClearTeacherOverrides removes all overrides for a teacher.
func (ff *FeatureFlags) ClearTeacherOverrides(teacherID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.teacherOverrides, teacherID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		// Return a copy
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Convenience methods for common checks ---

// AlertsEnabled checks if any alert features are enabled.
func (ff *FeatureFlags) AlertsEnabled(ctx *FeatureContext) bool {
	return ff.IsEnabled(FeatureAtRiskAlerts, ctx) ||
		ff.IsEnabled(FeatureLowScoreAlerts, ctx) ||
		ff.IsEnabled(FeatureMeetingReminders, ctx)
}

// CachingEnabled checks if any caching features are enabled.
func (ff *FeatureFlags) CachingEnabled(ctx *FeatureContext) bool {
	return ff.IsEnabled(FeatureBriefingCache, ctx) ||
		ff.IsEnabled(FeatureOverviewCache, ctx)
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
